package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/shipwright/internal/config"
	"github.com/cameronsjo/shipwright/internal/docker"
	"github.com/cameronsjo/shipwright/internal/lock"
	"github.com/cameronsjo/shipwright/internal/manifest"
	"github.com/cameronsjo/shipwright/internal/preflight"
	"github.com/cameronsjo/shipwright/internal/ui"
)

const doctorTimeout = 10 * time.Second

// doctorCmd represents the doctor command.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that shipwright can do its work here",
	Long: `Check the environment shipwright runs in.

Looks for a recipe and lints it, makes sure the session state directory is
writable, and checks that the Docker engine is reachable for build.

Only a broken recipe or an unwritable state directory fail the command.
A missing recipe or Docker engine is reported as a warning.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
	defer cancel()

	results := preflight.RunAll(ctx, doctorChecks(cfg))
	for _, r := range results {
		switch {
		case r.OK():
			ui.Success("%s: %s", r.Check.Name, r.Detail)
		case r.Check.Required:
			ui.Error("%s: %v", r.Check.Name, r.Err)
		default:
			ui.Warning("%s: %v", r.Check.Name, r.Err)
		}
		if !r.OK() && r.Check.Hint != "" {
			ui.Note("    %s", r.Check.Hint)
		}
	}

	warnings, errs := preflight.Summarize(results)
	passed := len(results) - len(warnings) - len(errs)
	ui.Header("Summary: %d passed, %d warnings, %d failed", passed, len(warnings), len(errs))

	if len(errs) > 0 {
		return fmt.Errorf("%d check(s) failed", len(errs))
	}
	return nil
}

func doctorChecks(cfg *config.Config) []preflight.Check {
	checks := []preflight.Check{{
		Name: "recipe",
		Hint: "create " + config.RecipeFileName + " or pass flags",
		Run: func(ctx context.Context) (string, error) {
			if !cfg.HasRecipe() {
				return "", config.ErrRecipeNotFound
			}
			return cfg.RecipeFile, nil
		},
	}}

	if cfg.HasRecipe() {
		checks = append(checks, preflight.Check{
			Name:     "recipe syntax",
			Required: true,
			Hint:     "run shipwright lint for details",
			Run: func(ctx context.Context) (string, error) {
				recipe, err := manifest.LoadRecipe(cfg.RecipeFile, nil)
				if err != nil {
					return "", err
				}
				warnings := 0
				for _, f := range manifest.Lint(*recipe) {
					if f.Severity == manifest.SeverityWarning {
						warnings++
					}
				}
				return fmt.Sprintf("parsed, %d lint warning(s)", warnings), nil
			},
		})
	}

	checks = append(checks,
		preflight.Check{
			Name:     "state directory",
			Required: true,
			Run: func(ctx context.Context) (string, error) {
				l := lock.New(cfg.StateDir, "session")
				if err := l.Acquire(); err != nil {
					if errors.Is(err, lock.ErrLocked) {
						return cfg.StateDir + " (session in use)", nil
					}
					return "", err
				}
				if err := l.Release(); err != nil {
					return "", err
				}
				return cfg.StateDir, nil
			},
		},
		preflight.Check{
			Name: "docker engine",
			Hint: "needed by build; start Docker or set DOCKER_HOST",
			Run: func(ctx context.Context) (string, error) {
				var detail string
				err := withDockerClientContext(ctx, func(c *docker.Client) error {
					detail = "reachable"
					return nil
				})
				return detail, err
			},
		},
		preflight.Binary("docker", false, "Install Docker: https://docs.docker.com/get-docker/"),
	)

	return checks
}
