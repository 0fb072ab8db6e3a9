package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beanscan/model-updater/internal/model"
)

// NewCheckCommand creates the check command
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check whether a newer model version is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := BuildEnv(rootOpts)
			if err != nil {
				return err
			}

			state, err := runSessionCommand(env, func() error {
				return env.Session.CheckForUpdate()
			})
			if err != nil {
				return err
			}

			switch state.Phase {
			case model.PhaseUpToDate:
				fmt.Fprintf(cmd.OutOrStdout(), "Model %s is up to date\n", state.CurrentVersion)
			case model.PhaseUpdateAvailable:
				fmt.Fprintf(cmd.OutOrStdout(), "Update available: %s (installed: %s)\n",
					state.LatestVersion, state.CurrentVersion)
			case model.PhaseNetworkError:
				return fmt.Errorf("%s", state.ErrorMessage)
			}
			return nil
		},
	}
}

// NewDownloadCommand creates the download command
func NewDownloadCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "download [version]",
		Short: "Download and install a model version (latest when omitted)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := BuildEnv(rootOpts)
			if err != nil {
				return err
			}

			// An explicit version addresses the pipeline directly; the
			// session flow is for "bring me to the latest".
			if len(args) == 1 {
				version := args[0]
				if err := env.Pipeline.Download(context.Background(), version); err != nil {
					return fmt.Errorf("%s", model.MessageFor(err))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Installed model %s\n", version)
				return nil
			}

			state, err := runSessionCommand(env, func() error {
				return env.Session.CheckForUpdate()
			})
			if err != nil {
				return err
			}

			switch state.Phase {
			case model.PhaseUpToDate:
				fmt.Fprintf(cmd.OutOrStdout(), "Model %s is already up to date\n", state.CurrentVersion)
				return nil
			case model.PhaseNetworkError:
				return fmt.Errorf("%s", state.ErrorMessage)
			}

			target := state.TargetVersion()
			state, err = runSessionCommand(env, func() error {
				return env.Session.Download(target)
			})
			if err != nil {
				return err
			}

			switch state.Phase {
			case model.PhaseDownloadSuccess:
				fmt.Fprintf(cmd.OutOrStdout(), "Installed model %s (was %s)\n",
					state.NewVersion, state.CurrentVersion)
				return nil
			default:
				return fmt.Errorf("%s", state.ErrorMessage)
			}
		},
	}
}

// NewStatusCommand creates the status command
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the installed model version and artifact state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := BuildEnv(rootOpts)
			if err != nil {
				return err
			}

			info := env.Store.Info()
			fmt.Fprintf(cmd.OutOrStdout(), "Version:   %s\n", info.Version)
			if !info.Exists {
				fmt.Fprintln(cmd.OutOrStdout(), "Artifact:  not installed (bundled model in use)")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Artifact:  %s\n", env.Store.ArtifactPath())
			if info.SizeKnown {
				fmt.Fprintf(cmd.OutOrStdout(), "Size:      %d bytes\n", info.SizeBytes)
			}
			return nil
		},
	}
}

// NewEraseCommand creates the erase command
func NewEraseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "erase",
		Short: "Remove the downloaded model and fall back to the bundled one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := BuildEnv(rootOpts)
			if err != nil {
				return err
			}
			env.Store.Erase()
			fmt.Fprintln(cmd.OutOrStdout(), "Downloaded model removed")
			return nil
		},
	}
}

// runSessionCommand issues one session command and waits for the settled
// (non-busy) state it produces.
func runSessionCommand(env *Env, command func() error) (model.State, error) {
	settled := make(chan model.State, 1)
	env.Session.SetUpdateCallback(func(state model.State) {
		if !state.Phase.IsBusy() {
			select {
			case settled <- state:
			default:
			}
		}
	})
	if err := command(); err != nil {
		return model.State{}, err
	}
	return <-settled, nil
}
