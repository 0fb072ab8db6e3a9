package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/beanscan/model-updater/internal/config"
	"github.com/beanscan/model-updater/internal/download"
	"github.com/beanscan/model-updater/internal/platform"
	"github.com/beanscan/model-updater/internal/registry"
	"github.com/beanscan/model-updater/internal/store"
	"github.com/beanscan/model-updater/internal/update"
)

// RootOptions holds global flags for all commands
type RootOptions struct {
	ConfigPath string
}

// Env bundles the wired components a command runs against
type Env struct {
	Settings config.Settings
	Store    *store.Store
	Resolver *registry.Resolver
	Pipeline *download.Pipeline
	Session  *update.Session
}

// NewRootCommand creates the root command for the model updater CLI
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "model-updater",
		Short: "BeanScan model updater",
		Long:  "Checks for, downloads, and installs new versions of the on-device bean disease classification model.",
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to a settings.yaml (defaults apply when absent)")

	// Add subcommands
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewDownloadCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewEraseCommand(opts))

	return cmd
}

// BuildEnv loads settings and wires the store, resolver, pipeline, and session
func BuildEnv(opts *RootOptions) (*Env, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	dataDir := settings.DataDir
	if dataDir == "" {
		dataDir, err = platform.DefaultDataDir()
		if err != nil {
			return nil, err
		}
	}
	if err := platform.CreateDirectoryIfNotExists(dataDir); err != nil {
		return nil, fmt.Errorf("failed to ensure data dir %s: %w", dataDir, err)
	}

	st := store.New(dataDir)
	resolver := registry.NewWithClient(settings.RegistryURL, &http.Client{Timeout: settings.RequestTimeout()})
	pipeline := download.NewWithClient(settings.ArtifactURLTemplate, st,
		&http.Client{Timeout: settings.DownloadTimeout()}, settings.MinArtifactBytes)

	return &Env{
		Settings: settings,
		Store:    st,
		Resolver: resolver,
		Pipeline: pipeline,
		Session:  update.NewSession(resolver, pipeline, st),
	}, nil
}
