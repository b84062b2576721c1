package app

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/specialistvlad/trainctl/internal/cli"
	"github.com/specialistvlad/trainctl/internal/config"
	"github.com/specialistvlad/trainctl/internal/ctxlog"
	"github.com/specialistvlad/trainctl/internal/errdefs"
	"github.com/specialistvlad/trainctl/internal/registry"
	"github.com/specialistvlad/trainctl/internal/schema"
	"github.com/specialistvlad/trainctl/internal/train"
)

// Run executes one invocation: build the parser, parse args, construct the
// model, data module and trainer, then fit. Help and --print_config return
// nil without constructing anything.
func (a *App) Run(ctx context.Context, args []string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.parser = cli.NewParser(a.registry, cli.ParserOptions{
		Description:        a.description,
		DefaultConfigFiles: a.defaultConfigFiles,
		ParseEnv:           a.parseEnv,
		EnvPrefix:          cli.DefaultEnvPrefix,
		Out:                a.outW,
		LookupEnv:          a.lookupEnv,
	})
	if h := a.hooks.AddArgumentsToParser; h != nil {
		if err := h(ctx, a.parser); err != nil {
			return err
		}
	}
	if err := a.addClassArguments(); err != nil {
		return err
	}
	if h := a.hooks.BeforeParseArguments; h != nil {
		if err := h(ctx, a.parser); err != nil {
			return err
		}
	}

	tree, shouldExit, err := a.parser.Parse(ctx, args)
	if err != nil {
		return err
	}
	if shouldExit {
		a.logger.Debug("Parser requested exit.")
		return nil
	}
	a.config = tree

	if h := a.hooks.BeforeInstantiateClasses; h != nil {
		if err := h(ctx, a); err != nil {
			return err
		}
	}
	if err := a.instantiateClasses(ctx); err != nil {
		return err
	}
	if h := a.hooks.BeforeFit; h != nil {
		if err := h(ctx, a); err != nil {
			return err
		}
	}

	a.logger.Info("Starting fit.", "model", a.modelClass, "data", a.dataClass, "log_dir", a.trainer.LogDir())
	result, err := a.trainer.Fit(ctx, a.model, a.data)
	if err != nil {
		return err
	}
	a.result = result
	a.logger.Info("Fit finished.", "run_id", result.RunID, "epochs", result.Epochs, "loss", result.Loss)

	if h := a.hooks.AfterFit; h != nil {
		if err := h(ctx, a); err != nil {
			return err
		}
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) lookup(name string) (*registry.Class, error) {
	class, ok := a.registry.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown class %q", errdefs.ErrParse, name)
	}
	return class, nil
}

func (a *App) addClassArguments() error {
	trainerClass, err := a.lookup(a.trainerClass)
	if err != nil {
		return err
	}
	if _, err := a.parser.AddTrainerArgs(trainerClass, TrainerKey); err != nil {
		return err
	}

	modelClass, err := a.lookup(a.modelClass)
	if err != nil {
		return err
	}
	if _, err := a.parser.AddModelArgs(modelClass, ModelKey); err != nil {
		return err
	}

	if a.dataClass == "" {
		return nil
	}
	dataClass, err := a.lookup(a.dataClass)
	if err != nil {
		return err
	}
	_, err = a.parser.AddDataModuleArgs(dataClass, DataKey)
	return err
}

func (a *App) instantiateClasses(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	trainerClass, _ := a.parser.Class(TrainerKey)

	tree := a.config.Clone()
	goArgs, err := a.applyTrainerArgs(tree, trainerClass)
	if err != nil {
		return err
	}

	args, err := a.parser.InstantiateSubclasses(ctx, tree)
	if err != nil {
		return err
	}
	for name, v := range goArgs {
		args[TrainerKey][name] = v
	}

	modelClass, _ := a.parser.Class(ModelKey)
	model, err := a.registry.Build(ctx, modelClass, args[ModelKey])
	if err != nil {
		return err
	}
	a.model = model.(train.Model)
	logger.Debug("Model constructed.", "class", modelClass.Name)

	if dataClass, ok := a.parser.Class(DataKey); ok {
		data, err := a.registry.Build(ctx, dataClass, args[DataKey])
		if err != nil {
			return err
		}
		a.data = data.(train.DataModule)
		logger.Debug("Data module constructed.", "class", dataClass.Name)
	}

	if a.saveConfig != nil {
		a.appendSaveConfigCallback(ctx, trainerClass, args[TrainerKey])
	}

	tr, err := a.registry.Build(ctx, trainerClass, args[TrainerKey])
	if err != nil {
		return err
	}
	a.trainer = tr.(train.Trainer)
	logger.Debug("Trainer constructed.", "class", trainerClass.Name, "callbacks", len(a.trainer.Callbacks()))
	return nil
}

// applyTrainerArgs merges the pipeline's trainer arguments into tree. Only
// options still at their declared default are replaced. Values that cannot be
// expressed in the configuration (Go objects such as callback instances) are
// returned to be passed to the constructor directly.
func (a *App) applyTrainerArgs(tree *config.Tree, trainerClass *registry.Class) (registry.Args, error) {
	goArgs := registry.Args{}
	keys := make([]string, 0, len(a.trainerArgs))
	for k := range a.trainerArgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, name := range keys {
		param, ok := trainerClass.Param(name)
		if !ok {
			return nil, &errdefs.ConstructionError{Class: trainerClass.Name, Err: fmt.Errorf("unknown trainer argument %q", name)}
		}
		key := config.JoinKey(TrainerKey, name)
		if e, ok := tree.Entry(key); ok && e.Source != config.SourceDefault {
			a.logger.Debug("Trainer argument overridden by configuration.", "key", key, "source", e.Source)
			continue
		}

		raw := a.trainerArgs[name]
		v, err := schema.FromNative(raw)
		if err != nil {
			goArgs[name] = raw
			continue
		}
		coerced, err := param.Coerce(v)
		if err != nil {
			return nil, &errdefs.ConstructionError{Class: trainerClass.Name, Err: fmt.Errorf("trainer argument %q: %w", name, err)}
		}
		tree.Set(key, coerced, config.SourceOverride)
	}
	return goArgs, nil
}

// appendSaveConfigCallback adds the save-config callback to the trainer's
// callback argument unless a callback of the same type is already present.
// Trainer classes without a callback list are left alone.
func (a *App) appendSaveConfigCallback(ctx context.Context, trainerClass *registry.Class, args registry.Args) {
	logger := ctxlog.FromContext(ctx)
	param, ok := trainerClass.Param("callbacks")
	if !ok || !param.Multiple {
		logger.Debug("Trainer takes no callback list; config will not be saved.", "class", trainerClass.Name)
		return
	}

	cb := a.saveConfig(a.parser, a.config)
	existing := toSlice(args["callbacks"])
	for _, c := range existing {
		if reflect.TypeOf(c) == reflect.TypeOf(cb) {
			logger.Debug("Save-config callback already present.", "type", fmt.Sprintf("%T", cb))
			return
		}
	}
	args["callbacks"] = append(existing, cb)
}

func toSlice(v any) []any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
