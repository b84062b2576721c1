package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/specialistvlad/trainctl/internal/config"
	"github.com/specialistvlad/trainctl/internal/ctxlog"
	"github.com/specialistvlad/trainctl/internal/errdefs"
	"github.com/specialistvlad/trainctl/internal/fsutil"
	"github.com/specialistvlad/trainctl/internal/registry"
	"github.com/specialistvlad/trainctl/internal/schema"
	"github.com/zclconf/go-cty/cty"
)

// Reserved flag names.
const (
	ConfigFlag      = "config"
	PrintConfigFlag = "print_config"
)

// DefaultEnvPrefix is used when ParserOptions.EnvPrefix is empty.
const DefaultEnvPrefix = "PL"

// ParserOptions configures a Parser.
type ParserOptions struct {
	// Name is the command name shown in usage. Defaults to "trainctl".
	Name        string
	Description string
	// DefaultConfigFiles are glob patterns of files loaded before any
	// --config file. Patterns may start with "~".
	DefaultConfigFiles []string
	ParseEnv           bool
	EnvPrefix          string
	// Out receives help and --print_config output. Defaults to os.Stdout.
	Out io.Writer
	// LookupEnv replaces os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

type option struct {
	key     string
	param   *schema.Param
	def     cty.Value
	value   *optionValue
	flag    *pflag.Flag
	envName string
}

// Parser resolves the configuration of one invocation. A Parser is meant to
// be used for a single Parse call.
type Parser struct {
	reg  *registry.Registry
	opts ParserOptions
	cmd  *cobra.Command

	options []*option
	byKey   map[string]*option
	classes map[string]*registry.Class

	configFiles []string
	printConfig bool
	ran         bool
}

// NewParser creates a parser holding only the reserved --config and
// --print_config options.
func NewParser(reg *registry.Registry, opts ParserOptions) *Parser {
	if opts.Name == "" {
		opts.Name = "trainctl"
	}
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = DefaultEnvPrefix
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.LookupEnv == nil {
		opts.LookupEnv = os.LookupEnv
	}

	p := &Parser{
		reg:     reg,
		opts:    opts,
		byKey:   make(map[string]*option),
		classes: make(map[string]*registry.Class),
	}
	p.cmd = &cobra.Command{
		Use:           opts.Name,
		Short:         firstLine(opts.Description),
		Long:          opts.Description,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			p.ran = true
			return nil
		},
	}
	p.cmd.SetOut(opts.Out)
	p.cmd.SetErr(opts.Out)

	fs := p.cmd.Flags()
	fs.SortFlags = false
	fs.StringArrayVar(&p.configFiles, ConfigFlag, nil, "Path to a configuration file (yaml, json or hcl). May be repeated; later files override earlier ones.")
	fs.BoolVar(&p.printConfig, PrintConfigFlag, false, "Print the resolved configuration as YAML and exit.")
	return p
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

// Command exposes the underlying cobra command, e.g. for help output.
func (p *Parser) Command() *cobra.Command { return p.cmd }

// Keys lists the registered option keys in registration order.
func (p *Parser) Keys() []string {
	out := make([]string, len(p.options))
	for i, o := range p.options {
		out[i] = o.key
	}
	return out
}

// Param returns the parameter behind option key.
func (p *Parser) Param(key string) (*schema.Param, bool) {
	o, ok := p.byKey[key]
	if !ok {
		return nil, false
	}
	return o.param, true
}

// Class returns the class whose arguments were added under nestedKey.
func (p *Parser) Class(nestedKey string) (*registry.Class, bool) {
	c, ok := p.classes[nestedKey]
	return c, ok
}

// EnvName is the environment variable read for option key.
func (p *Parser) EnvName(key string) string {
	name := p.opts.EnvPrefix + "_" + strings.ReplaceAll(key, ".", "_")
	return strings.ToUpper(name)
}

// AddOption registers a single option under key.
func (p *Parser) AddOption(key string, param *schema.Param) error {
	if key == "" || key == ConfigFlag || key == PrintConfigFlag || key == "help" {
		return fmt.Errorf("option name %q is reserved", key)
	}
	if _, exists := p.byKey[key]; exists {
		return fmt.Errorf("option %q already registered", key)
	}
	def, err := param.Coerce(param.DefaultValue())
	if err != nil {
		return fmt.Errorf("option %q: invalid default: %w", key, err)
	}

	o := &option{
		key:     key,
		param:   param,
		def:     def,
		value:   &optionValue{param: param, value: def},
		envName: p.EnvName(key),
	}
	o.flag = p.cmd.Flags().VarPF(o.value, key, "", p.usage(o))
	o.flag.DefValue = ""
	if !def.IsNull() {
		o.flag.DefValue = renderValue(def)
	}
	if param.Type.Equals(cty.Bool) && !param.IsSubclass() {
		o.flag.NoOptDefVal = "true"
	}

	p.options = append(p.options, o)
	p.byKey[key] = o
	return nil
}

func (p *Parser) usage(o *option) string {
	parts := []string{}
	if o.param.Description != "" {
		parts = append(parts, o.param.Description)
	}
	if o.param.Required() {
		parts = append(parts, "(required)")
	}
	if o.param.IsSubclass() {
		if names := p.reg.Names(o.param.Subclass); len(names) > 0 {
			parts = append(parts, "Available: "+strings.Join(names, ", ")+".")
		}
	}
	if p.opts.ParseEnv {
		parts = append(parts, "ENV: "+o.envName)
	}
	return strings.Join(parts, " ")
}

// AddClassArguments adds one option per manifest parameter of class, named
// <nestedKey>.<param>, and returns the option names in manifest order.
func (p *Parser) AddClassArguments(class *registry.Class, nestedKey string) ([]string, error) {
	if _, exists := p.classes[nestedKey]; exists {
		return nil, fmt.Errorf("arguments for %q already added", nestedKey)
	}
	added := make([]string, 0, len(class.Params))
	for _, param := range class.Params {
		key := config.JoinKey(nestedKey, param.Name)
		if err := p.AddOption(key, param); err != nil {
			return nil, fmt.Errorf("class %s: %w", class.Name, err)
		}
		added = append(added, key)
	}
	p.classes[nestedKey] = class
	return added, nil
}

// Parse resolves the configuration from args, files and the environment.
// The returned bool is true when the invocation only asked for help or for
// --print_config; the caller should then exit without running.
func (p *Parser) Parse(ctx context.Context, args []string) (*config.Tree, bool, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parser started.", "args", args)

	if args == nil {
		args = []string{}
	}
	p.cmd.SetArgs(args)
	if err := p.cmd.ExecuteContext(ctx); err != nil {
		return nil, false, fmt.Errorf("%w: %w", errdefs.ErrParse, err)
	}
	if !p.ran {
		logger.Debug("Help requested, exiting.")
		return nil, true, nil
	}

	tree := config.NewTree()
	for _, o := range p.options {
		tree.Set(o.key, o.def, config.SourceDefault)
	}

	files, err := fsutil.ExpandPatterns(p.opts.DefaultConfigFiles)
	if err != nil {
		return nil, false, fmt.Errorf("%w: default config files: %w", errdefs.ErrFile, err)
	}
	files = append(files, p.configFiles...)
	for _, path := range files {
		logger.Debug("Loading config file.", "path", path)
		doc, err := config.ReadFile(path)
		if err != nil {
			return nil, false, err
		}
		if err := p.applyFile(tree, doc, path); err != nil {
			return nil, false, err
		}
	}

	if p.opts.ParseEnv {
		for _, o := range p.options {
			raw, ok := p.opts.LookupEnv(o.envName)
			if !ok {
				continue
			}
			v, err := o.param.ParseString(raw)
			if err != nil {
				return nil, false, fmt.Errorf("%w: environment variable %s: %w", errdefs.ErrParse, o.envName, err)
			}
			tree.Set(o.key, v, config.SourceEnv)
		}
	}

	for _, o := range p.options {
		if o.flag.Changed {
			tree.Set(o.key, o.value.value, config.SourceCLI)
		}
	}

	for _, key := range tree.Keys() {
		e, _ := tree.Entry(key)
		logger.Debug("Resolved option.", "key", key, "value", renderValue(e.Value), "source", e.Source)
	}

	if p.printConfig {
		if err := config.EncodeYAML(p.opts.Out, tree, false); err != nil {
			return nil, false, fmt.Errorf("printing config: %w", err)
		}
		return tree, true, nil
	}
	return tree, false, nil
}

// applyFile merges a decoded config file into tree. Keys are either option
// keys ("seed", "model.lr") or namespaces holding a mapping of options.
func (p *Parser) applyFile(tree *config.Tree, doc cty.Value, path string) error {
	attrs := doc.AsValueMap()
	for _, key := range schema.SortedKeys(attrs) {
		v := attrs[key]
		if _, ok := p.byKey[key]; ok {
			if err := p.setFromFile(tree, key, v, path); err != nil {
				return err
			}
			continue
		}
		if !p.isNamespace(key) {
			return fmt.Errorf("%w: %s: unknown key %q", errdefs.ErrParse, path, key)
		}
		if v.IsNull() {
			continue
		}
		if !v.Type().IsObjectType() && !v.Type().IsMapType() {
			return fmt.Errorf("%w: %s: %q must be a mapping, got %s", errdefs.ErrParse, path, key, v.Type().FriendlyName())
		}
		inner := v.AsValueMap()
		for _, name := range schema.SortedKeys(inner) {
			full := config.JoinKey(key, name)
			if _, ok := p.byKey[full]; !ok {
				return fmt.Errorf("%w: %s: unknown key %q", errdefs.ErrParse, path, full)
			}
			if err := p.setFromFile(tree, full, inner[name], path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Parser) setFromFile(tree *config.Tree, key string, v cty.Value, path string) error {
	coerced, err := p.byKey[key].param.Coerce(v)
	if err != nil {
		return fmt.Errorf("%w: %s: %s: %w", errdefs.ErrParse, path, key, err)
	}
	tree.Set(key, coerced, config.SourceFile)
	return nil
}

func (p *Parser) isNamespace(name string) bool {
	for _, o := range p.options {
		if ns, _ := config.SplitKey(o.key); ns == name {
			return true
		}
	}
	return false
}

// InstantiateSubclasses expands every class selection in the tree into a
// constructed instance and groups the results per class namespace, ready to
// be passed to registry.Build. Other values pass through unchanged.
func (p *Parser) InstantiateSubclasses(ctx context.Context, tree *config.Tree) (map[string]registry.Args, error) {
	out := make(map[string]registry.Args, len(p.classes))
	for ns := range p.classes {
		out[ns] = registry.Args{}
	}
	for _, o := range p.options {
		ns, name := config.SplitKey(o.key)
		args, ok := out[ns]
		if !ok {
			continue
		}
		v, ok := tree.Get(o.key)
		if !ok {
			continue
		}
		if !o.param.IsSubclass() {
			args[name] = v
			continue
		}
		obj, err := p.reg.Expand(ctx, o.param, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", o.key, err)
		}
		args[name] = obj
	}
	return out, nil
}

// Save writes tree to path. The format follows the file extension. With
// skipNone set, null values are left out.
func (p *Parser) Save(tree *config.Tree, path string, skipNone bool) error {
	return config.WriteFile(path, tree, skipNone)
}
