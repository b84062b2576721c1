package app

import (
	"context"
	"io"
	"log/slog"
	"reflect"

	"github.com/specialistvlad/trainctl/internal/cli"
	"github.com/specialistvlad/trainctl/internal/config"
	"github.com/specialistvlad/trainctl/internal/ctxlog"
	"github.com/specialistvlad/trainctl/internal/registry"
	"github.com/specialistvlad/trainctl/internal/train"
)

// DefaultTrainerClass is the trainer used unless WithTrainerClass says
// otherwise.
const DefaultTrainerClass = "Trainer"

// Namespace keys of the assembled classes.
const (
	TrainerKey = "trainer"
	ModelKey   = "model"
	DataKey    = "data"
)

// App encapsulates one training invocation: its registry, settings, parser
// and the objects it assembles.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry

	modelClass         string
	dataClass          string
	trainerClass       string
	description        string
	defaultConfigFiles []string
	parseEnv           bool
	lookupEnv          func(string) (string, bool)
	trainerArgs        map[string]any
	saveConfig         SaveConfigFactory
	hooks              Hooks

	logLevel  string
	logFormat string
	logW      io.Writer

	parser  *cli.Parser
	config  *config.Tree
	model   train.Model
	data    train.DataModule
	trainer train.Trainer
	result  *train.RunResult
}

// New is the constructor for the assembly pipeline. A nil reg uses a
// registry holding the core modules.
func New(outW io.Writer, reg *registry.Registry, modelClass string, opts ...Option) *App {
	a := &App{
		outW:         outW,
		registry:     reg,
		modelClass:   modelClass,
		trainerClass: DefaultTrainerClass,
		saveConfig:   NewSaveConfigCallback,
		logLevel:     "info",
		logFormat:    "text",
	}
	for _, opt := range opts {
		opt(a)
	}

	logW := a.logW
	if logW == nil {
		logW = outW
	}
	a.logger = newLogger(a.logLevel, a.logFormat, logW)
	if a.registry == nil {
		ctx := ctxlog.WithLogger(context.Background(), a.logger)
		a.registry = NewRegistry(ctx)
	}
	a.logger.Debug("App configured.", "model", a.modelClass, "data", a.dataClass, "trainer", a.trainerClass)
	return a
}

// NewRegistry creates a registry with the capability kinds and the given
// modules, or the core modules when none are given. A registry that fails
// validation is a programmer error, so it panics.
func NewRegistry(ctx context.Context, modules ...registry.Module) *registry.Registry {
	logger := ctxlog.FromContext(ctx)
	reg := registry.New()
	reg.RegisterKind(train.KindTrainer, reflect.TypeOf((*train.Trainer)(nil)).Elem())
	reg.RegisterKind(train.KindModel, reflect.TypeOf((*train.Model)(nil)).Elem())
	reg.RegisterKind(train.KindDataModule, reflect.TypeOf((*train.DataModule)(nil)).Elem())
	reg.RegisterKind(train.KindCallback, reflect.TypeOf((*train.Callback)(nil)).Elem())
	reg.RegisterKind(train.KindOptimizer, reflect.TypeOf((*train.Optimizer)(nil)).Elem())

	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	if err := reg.ValidateRegistry(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.")
	return reg
}

// Registry returns the application's registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Parser is available once Run has started.
func (a *App) Parser() *cli.Parser { return a.parser }

// Config is the resolved configuration, available after parsing.
func (a *App) Config() *config.Tree { return a.config }

func (a *App) Model() train.Model { return a.model }

// DataModule is nil when the App runs without one.
func (a *App) DataModule() train.DataModule { return a.data }

func (a *App) Trainer() train.Trainer { return a.trainer }

// Result is the outcome of Fit, available to the AfterFit hook and after Run.
func (a *App) Result() *train.RunResult { return a.result }
