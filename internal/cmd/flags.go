package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/cameronsjo/shipwright/internal/config"
	"github.com/cameronsjo/shipwright/internal/manifest"
	"github.com/cameronsjo/shipwright/internal/ui"
)

// envFlag collects repeatable NAME=VALUE flags in order. A repeated name
// replaces the earlier value in place.
type envFlag struct {
	vars manifest.EnvVars
}

func (f *envFlag) String() string {
	parts := make([]string, 0, len(f.vars))
	for _, v := range f.vars {
		parts = append(parts, v.String())
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (f *envFlag) Set(s string) error {
	return f.Append(s)
}

func (f *envFlag) Type() string {
	return "NAME=VALUE"
}

func (f *envFlag) Append(s string) error {
	v, err := manifest.ParseEnvVar(s)
	if err != nil {
		return err
	}
	f.vars.Set(v.Name, v.Value)
	return nil
}

func (f *envFlag) Replace(values []string) error {
	f.vars = nil
	for _, s := range values {
		if err := f.Append(s); err != nil {
			return err
		}
	}
	return nil
}

func (f *envFlag) GetSlice() []string {
	out := make([]string, 0, len(f.vars))
	for _, v := range f.vars {
		out = append(out, v.String())
	}
	return out
}

// stepsFlag collects repeatable step names in order. Unknown names are kept
// as StepUnknown so they can be reported.
type stepsFlag struct {
	steps []manifest.Step
}

func (f *stepsFlag) String() string {
	names := make([]string, 0, len(f.steps))
	for _, s := range f.steps {
		names = append(names, s.String())
	}
	return "[" + strings.Join(names, ",") + "]"
}

func (f *stepsFlag) Set(s string) error {
	return f.Append(s)
}

func (f *stepsFlag) Type() string {
	return "step"
}

func (f *stepsFlag) Append(s string) error {
	f.steps = append(f.steps, manifest.ParseStep(s))
	return nil
}

func (f *stepsFlag) Replace(values []string) error {
	f.steps = manifest.ParseSteps(values)
	return nil
}

func (f *stepsFlag) GetSlice() []string {
	out := make([]string, 0, len(f.steps))
	for _, s := range f.steps {
		out = append(out, s.String())
	}
	return out
}

var (
	_ pflag.SliceValue = (*envFlag)(nil)
	_ pflag.SliceValue = (*stepsFlag)(nil)
)

// recipeFlags are the recipe inputs shared by generate, build and lint.
type recipeFlags struct {
	file      string
	vars      []string
	baseImage string
	deps      []string
	port      string
	command   string
	env       envFlag
	steps     stepsFlag
}

func (f *recipeFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.file, "file", "f", "", "Recipe file (default: nearest "+config.RecipeFileName+")")
	flags.StringArrayVar(&f.vars, "var", nil, "Recipe template value as key=value (repeatable)")
	flags.StringVarP(&f.baseImage, "base-image", "b", "", "Base image for the FROM line")
	flags.StringArrayVarP(&f.deps, "dependency", "d", nil, "Dependency to pip install (repeatable, order kept)")
	flags.StringVarP(&f.port, "port", "p", manifest.DefaultPort.String(), "Port to expose")
	flags.StringVarP(&f.command, "command", "c", "", "Start command")
	flags.VarP(&f.env, "env", "e", "Environment variable as NAME=VALUE (repeatable, order kept)")
	flags.Var(&f.steps, "step", "Step to emit (repeatable, order kept; default: all six)")

	_ = cmd.RegisterFlagCompletionFunc("step", completeSteps)
	_ = cmd.MarkFlagFilename("file", "yaml", "yml")
}

// resolve loads the recipe file, if any, and applies explicitly set flags
// over it. Absent steps fall back to the default order and an absent port
// to the flag default.
func (f *recipeFlags) resolve(cmd *cobra.Command) (manifest.Recipe, error) {
	var recipe manifest.Recipe

	path, err := f.recipePath()
	if err != nil {
		return recipe, err
	}
	if path != "" {
		vars, err := parseVars(f.vars)
		if err != nil {
			return recipe, err
		}
		loaded, err := manifest.LoadRecipe(path, vars)
		if err != nil {
			return recipe, err
		}
		recipe = *loaded
		ui.Note("Using recipe %s", path)
	}

	flags := cmd.Flags()
	if flags.Changed("base-image") {
		recipe.BaseImage = f.baseImage
	}
	if flags.Changed("dependency") {
		recipe.Dependencies = append([]string(nil), f.deps...)
	}
	if flags.Changed("port") || recipe.Port == "" {
		recipe.Port = manifest.Port(f.port)
	}
	if flags.Changed("command") {
		recipe.Command = f.command
	}
	for _, v := range f.env.vars {
		recipe.Env.Set(v.Name, v.Value)
	}
	if flags.Changed("step") {
		recipe.Steps = append([]manifest.Step(nil), f.steps.steps...)
	} else if recipe.Steps == nil {
		recipe.Steps = append([]manifest.Step(nil), manifest.DefaultSteps...)
	}

	return recipe, nil
}

// recipePath returns the recipe to load: --file first, then discovery.
// An empty path means flags only.
func (f *recipeFlags) recipePath() (string, error) {
	if f.file != "" {
		return f.file, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.RecipeFile, nil
}

// parseVars turns key=value pairs into template values.
func parseVars(pairs []string) (map[string]any, error) {
	vars := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q: expected key=value", pair)
		}
		vars[key] = value
	}
	return vars, nil
}
