package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cameronsjo/shipwright/internal/config"
	"github.com/cameronsjo/shipwright/internal/manifest"
	"github.com/cameronsjo/shipwright/internal/session"
	"github.com/cameronsjo/shipwright/internal/ui"
)

// sessionLockTimeout bounds how long an edit waits for another one.
const sessionLockTimeout = 10 * time.Second

var (
	sessionEnvName      string
	sessionRmEnvName    string
	sessionBaseImage    string
	sessionPort         string
	sessionCommand      string
	sessionStepsDefault bool
	sessionOutput       string
)

// sessionCmd represents the session command group.
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Build a recipe up one edit at a time",
	Long: `Build a recipe up across several invocations.

The session lives in .shipwright/session.yaml next to the nearest
shipwright.yaml (or in the current directory), or in $SHIPWRIGHT_STATE_DIR.
New sessions start with port 5000 and all six steps in default order.
Concurrent edits are serialized with a file lock.

Examples:
  shipwright session set --base-image python:3.9-slim --command "python app.py"
  shipwright session add-dep flask
  shipwright session set-dep 1 flask==3.0.0
  shipwright session add-env prod          # ENV_VAR_1=prod
  shipwright session add-env --name DEBUG 0
  shipwright session steps "Set WORKDIR" "Install Dependencies" "Run Command"
  shipwright session render -o Dockerfile`,
}

var sessionAddDepCmd = &cobra.Command{
	Use:   "add-dep [name]",
	Short: "Append a dependency",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		sess, err := updateSession(cmd, func(s *session.Session) error {
			s.AddDependency(name)
			return nil
		})
		if err != nil {
			return err
		}
		ui.Success("Added dependency %q (%d total)", name, len(sess.Dependencies))
		return nil
	},
}

var sessionRmDepCmd = &cobra.Command{
	Use:   "rm-dep",
	Short: "Remove the last dependency",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var removed string
		var ok bool
		_, err := updateSession(cmd, func(s *session.Session) error {
			removed, ok = s.RemoveDependency()
			return nil
		})
		if err != nil {
			return err
		}
		if !ok {
			ui.Warning("No dependencies to remove")
			return nil
		}
		ui.Success("Removed dependency %q", removed)
		return nil
	},
}

var sessionSetDepCmd = &cobra.Command{
	Use:   "set-dep POSITION NAME",
	Short: "Replace the dependency at a position",
	Long: `Replace the dependency at POSITION, counting from 1 in the order
shown by 'shipwright session show'.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid position %q: expected a number", args[0])
		}
		var old string
		if _, err := updateSession(cmd, func(s *session.Session) error {
			old, err = s.SetDependency(pos, args[1])
			return err
		}); err != nil {
			return err
		}
		ui.Success("Replaced dependency %d: %q -> %q", pos, old, args[1])
		return nil
	},
}

var sessionAddEnvCmd = &cobra.Command{
	Use:   "add-env [value]",
	Short: "Append an environment variable",
	Long: `Append an environment variable. Without --name it is called ENV_VAR_<n>,
where n is one more than the number of variables already set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := ""
		if len(args) > 0 {
			value = args[0]
		}
		var name string
		_, err := updateSession(cmd, func(s *session.Session) error {
			name = s.AddEnvVar(sessionEnvName, value)
			return nil
		})
		if err != nil {
			return err
		}
		ui.Success("Set %s=%s", name, value)
		return nil
	},
}

var sessionRmEnvCmd = &cobra.Command{
	Use:   "rm-env",
	Short: "Remove the last environment variable",
	Long: `Remove the last environment variable, or the one given by --name.
The order of the remaining variables is kept.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if sessionRmEnvName != "" {
			return removeNamedEnvVar(cmd, sessionRmEnvName)
		}

		var removed manifest.EnvVar
		var ok bool
		_, err := updateSession(cmd, func(s *session.Session) error {
			removed, ok = s.RemoveEnvVar()
			return nil
		})
		if err != nil {
			return err
		}
		if !ok {
			ui.Warning("No environment variables to remove")
			return nil
		}
		ui.Success("Removed %s", removed)
		return nil
	},
}

func removeNamedEnvVar(cmd *cobra.Command, name string) error {
	_, err := updateSession(cmd, func(s *session.Session) error {
		if s.DeleteEnvVar(name) {
			return nil
		}
		if s.Env.Len() == 0 {
			return fmt.Errorf("no environment variable %q: none are set", name)
		}
		return fmt.Errorf("no environment variable %q (have %s)", name, strings.Join(s.Env.Names(), ", "))
	})
	if err != nil {
		return err
	}
	ui.Success("Removed %s", name)
	return nil
}

var sessionSetEnvCmd = &cobra.Command{
	Use:   "set-env NAME=VALUE",
	Short: "Set an environment variable in place",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := manifest.ParseEnvVar(args[0])
		if err != nil {
			return err
		}
		if _, err := updateSession(cmd, func(s *session.Session) error {
			s.SetEnvVar(v.Name, v.Value)
			return nil
		}); err != nil {
			return err
		}
		ui.Success("Set %s", v)
		return nil
	},
}

var sessionSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the base image, port or command",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("base-image") && !flags.Changed("port") && !flags.Changed("command") {
			return errors.New("nothing to set: use --base-image, --port or --command")
		}

		_, err := updateSession(cmd, func(s *session.Session) error {
			if flags.Changed("base-image") {
				s.BaseImage = sessionBaseImage
			}
			if flags.Changed("port") {
				s.Port = manifest.Port(sessionPort)
			}
			if flags.Changed("command") {
				s.Command = sessionCommand
			}
			return nil
		})
		if err != nil {
			return err
		}
		ui.Success("Session updated")
		return nil
	},
}

var sessionStepsCmd = &cobra.Command{
	Use:   "steps [step...]",
	Short: "Replace the step order",
	Long: `Replace the step order. Steps may repeat. Unknown steps are kept but
render nothing. Use --default to restore all six steps.`,
	ValidArgsFunction: completeSteps,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && !sessionStepsDefault {
			return errors.New("give at least one step, or --default")
		}

		steps := manifest.ParseSteps(args)
		if sessionStepsDefault {
			steps = manifest.DefaultSteps
		}

		if _, err := updateSession(cmd, func(s *session.Session) error {
			s.SetSteps(steps)
			return nil
		}); err != nil {
			return err
		}

		warnUnknownSteps(steps)
		ui.Success("Step order set (%d steps)", len(steps))
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the session recipe as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore()
		if err != nil {
			return err
		}
		sess, err := store.Load()
		if err != nil {
			return err
		}

		recipe := sess.Snapshot()
		data, err := manifest.MarshalRecipe(&recipe)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var sessionRenderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the session to a Dockerfile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore()
		if err != nil {
			return err
		}
		sess, err := store.Load()
		if err != nil {
			return err
		}

		recipe := sess.Snapshot()
		warnUnknownSteps(recipe.Steps)
		return writeManifest(cmd, recipe, sessionOutput)
	},
}

var sessionResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSessionStore()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), sessionLockTimeout)
		defer cancel()
		if err := store.Reset(ctx); err != nil {
			return err
		}
		ui.Success("Session reset")
		return nil
	},
}

func init() {
	sessionAddEnvCmd.Flags().StringVarP(&sessionEnvName, "name", "n", "", "Variable name (default: ENV_VAR_<n>)")
	sessionRmEnvCmd.Flags().StringVarP(&sessionRmEnvName, "name", "n", "", "Remove this variable instead of the last one")

	sessionSetCmd.Flags().StringVarP(&sessionBaseImage, "base-image", "b", "", "Base image for the FROM line")
	sessionSetCmd.Flags().StringVarP(&sessionPort, "port", "p", "", "Port to expose")
	sessionSetCmd.Flags().StringVarP(&sessionCommand, "command", "c", "", "Start command")

	sessionStepsCmd.Flags().BoolVar(&sessionStepsDefault, "default", false, "Restore the default step order")

	sessionRenderCmd.Flags().StringVarP(&sessionOutput, "output", "o", "", "Write to this file or directory instead of stdout")

	sessionCmd.AddCommand(
		sessionAddDepCmd,
		sessionRmDepCmd,
		sessionSetDepCmd,
		sessionAddEnvCmd,
		sessionRmEnvCmd,
		sessionSetEnvCmd,
		sessionSetCmd,
		sessionStepsCmd,
		sessionShowCmd,
		sessionRenderCmd,
		sessionResetCmd,
	)
	rootCmd.AddCommand(sessionCmd)
}

func openSessionStore() (*session.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return session.NewStore(cfg.StateDir), nil
}

func updateSession(cmd *cobra.Command, fn func(*session.Session) error) (*session.Session, error) {
	store, err := openSessionStore()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), sessionLockTimeout)
	defer cancel()
	return store.Update(ctx, fn)
}
