package app

import (
	"context"
	"io"

	"github.com/specialistvlad/trainctl/internal/cli"
	"github.com/specialistvlad/trainctl/internal/config"
	"github.com/specialistvlad/trainctl/internal/train"
)

// Hooks are optional functions called at fixed points of Run. A hook error
// aborts the run and is returned unchanged.
type Hooks struct {
	// AddArgumentsToParser may add options of its own, e.g. top-level ones.
	AddArgumentsToParser func(ctx context.Context, p *cli.Parser) error
	// BeforeParseArguments runs once every class argument is registered.
	BeforeParseArguments func(ctx context.Context, p *cli.Parser) error
	// BeforeInstantiateClasses sees the resolved configuration.
	BeforeInstantiateClasses func(ctx context.Context, a *App) error
	BeforeFit                func(ctx context.Context, a *App) error
	AfterFit                 func(ctx context.Context, a *App) error
}

// SaveConfigFactory builds the callback that records the configuration of a
// run.
type SaveConfigFactory func(p *cli.Parser, tree *config.Tree) train.Callback

// Option configures an App.
type Option func(*App)

// WithDataModule names the data module class. Empty means none.
func WithDataModule(class string) Option {
	return func(a *App) { a.dataClass = class }
}

// WithTrainerClass replaces the default "Trainer" class.
func WithTrainerClass(class string) Option {
	return func(a *App) { a.trainerClass = class }
}

// WithSaveConfigCallback replaces the callback that saves config.yaml.
func WithSaveConfigCallback(factory SaveConfigFactory) Option {
	return func(a *App) { a.saveConfig = factory }
}

// WithoutSaveConfig disables saving the configuration.
func WithoutSaveConfig() Option {
	return func(a *App) { a.saveConfig = nil }
}

// WithDescription sets the text shown at the top of --help.
func WithDescription(description string) Option {
	return func(a *App) { a.description = description }
}

// WithDefaultConfigFiles sets glob patterns of config files loaded before
// any --config file.
func WithDefaultConfigFiles(patterns ...string) Option {
	return func(a *App) { a.defaultConfigFiles = patterns }
}

// WithParseEnv enables PL_<NAMESPACE>_<OPTION> environment variables.
func WithParseEnv(enabled bool) Option {
	return func(a *App) { a.parseEnv = enabled }
}

// WithLookupEnv replaces os.LookupEnv for option environment variables.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(a *App) { a.lookupEnv = lookup }
}

// WithTrainerArgs supplies trainer arguments that take the place of the
// trainer's declared defaults. Values set explicitly in a file, the
// environment or on the command line still win.
func WithTrainerArgs(args map[string]any) Option {
	return func(a *App) { a.trainerArgs = args }
}

// WithHooks installs extension hooks.
func WithHooks(h Hooks) Option {
	return func(a *App) { a.hooks = h }
}

// WithLogging configures the App's logger. A nil w logs to the App's output.
func WithLogging(level, format string, w io.Writer) Option {
	return func(a *App) {
		a.logLevel = level
		a.logFormat = format
		a.logW = w
	}
}
