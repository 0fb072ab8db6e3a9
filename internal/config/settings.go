package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values
const (
	DefaultRegistryURL = "https://api.github.com/repos/martinrajniak/bean-disease-classification/releases/latest"

	// DefaultArtifactURLTemplate expands %s to the release tag
	DefaultArtifactURLTemplate = "https://github.com/martinrajniak/bean-disease-classification/releases/download/%s/bean_disease_model.tflite"

	DefaultRequestTimeoutSeconds  = 15
	DefaultDownloadTimeoutSeconds = 300
	DefaultMinArtifactBytes       = 64 * 1024

	SettingsFilePermissions = 0644
)

// Settings holds the updater configuration. Zero fields are replaced with
// defaults on load, so a partial settings file is valid.
type Settings struct {
	RegistryURL            string `yaml:"registry_url"`
	ArtifactURLTemplate    string `yaml:"artifact_url_template"`
	DataDir                string `yaml:"data_dir"`
	RequestTimeoutSeconds  int    `yaml:"request_timeout_seconds"`
	DownloadTimeoutSeconds int    `yaml:"download_timeout_seconds"`
	MinArtifactBytes       int64  `yaml:"min_artifact_bytes"`
}

// Default returns settings pointing at the public model release endpoints
func Default() Settings {
	return Settings{
		RegistryURL:            DefaultRegistryURL,
		ArtifactURLTemplate:    DefaultArtifactURLTemplate,
		RequestTimeoutSeconds:  DefaultRequestTimeoutSeconds,
		DownloadTimeoutSeconds: DefaultDownloadTimeoutSeconds,
		MinArtifactBytes:       DefaultMinArtifactBytes,
	}
}

// RequestTimeout returns the version check timeout
func (s Settings) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutSeconds) * time.Second
}

// DownloadTimeout returns the whole-transfer download timeout
func (s Settings) DownloadTimeout() time.Duration {
	return time.Duration(s.DownloadTimeoutSeconds) * time.Second
}

// Load reads settings from path. A missing file yields the defaults; present
// fields override them.
func Load(path string) (Settings, error) {
	settings := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return Default(), fmt.Errorf("parse settings %s: %w", path, err)
	}
	settings.applyDefaults()
	return settings, nil
}

// Save writes the settings to path
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, SettingsFilePermissions); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}

// applyDefaults fills fields the settings file left empty
func (s *Settings) applyDefaults() {
	defaults := Default()
	if s.RegistryURL == "" {
		s.RegistryURL = defaults.RegistryURL
	}
	if s.ArtifactURLTemplate == "" {
		s.ArtifactURLTemplate = defaults.ArtifactURLTemplate
	}
	if s.RequestTimeoutSeconds <= 0 {
		s.RequestTimeoutSeconds = defaults.RequestTimeoutSeconds
	}
	if s.DownloadTimeoutSeconds <= 0 {
		s.DownloadTimeoutSeconds = defaults.DownloadTimeoutSeconds
	}
	if s.MinArtifactBytes <= 0 {
		s.MinArtifactBytes = defaults.MinArtifactBytes
	}
}
