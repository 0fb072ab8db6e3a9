package main

import (
	"fmt"
	"net/http"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/beanscan/model-updater/internal/config"
	"github.com/beanscan/model-updater/internal/download"
	"github.com/beanscan/model-updater/internal/platform"
	"github.com/beanscan/model-updater/internal/registry"
	"github.com/beanscan/model-updater/internal/store"
	"github.com/beanscan/model-updater/internal/ui"
	"github.com/beanscan/model-updater/internal/update"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.beanscan.model-updater"
	AppName = "BeanScan Model Updater"

	WindowWidth  = 420
	WindowHeight = 200

	SettingsFileName = "settings.yaml"
)

func main() {
	fmt.Printf("%s v%s starting...\n", AppName, version)

	dataDir, err := platform.DefaultDataDir()
	if err != nil {
		fmt.Printf("failed to resolve data dir: %v\n", err)
		return
	}
	if err := platform.CreateDirectoryIfNotExists(dataDir); err != nil {
		fmt.Printf("failed to ensure data dir: %v\n", err)
		return
	}

	settings, err := config.Load(filepath.Join(dataDir, SettingsFileName))
	if err != nil {
		fmt.Printf("failed to load settings, using defaults: %v\n", err)
		settings = config.Default()
	}
	if settings.DataDir == "" {
		settings.DataDir = dataDir
	}

	// Initialize services
	modelStore := store.New(settings.DataDir)
	resolver := registry.NewWithClient(settings.RegistryURL,
		&http.Client{Timeout: settings.RequestTimeout()})
	pipeline := download.NewWithClient(settings.ArtifactURLTemplate, modelStore,
		&http.Client{Timeout: settings.DownloadTimeout()}, settings.MinArtifactBytes)
	session := update.NewSession(resolver, pipeline, modelStore)

	// Create new Fyne app
	myApp := app.NewWithID(AppID)

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	// Create and setup UI
	ui.NewStatusUI(myWindow, session)

	// Show and run
	myWindow.ShowAndRun()
}
