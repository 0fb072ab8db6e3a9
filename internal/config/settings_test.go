package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	settings, err := Load(filepath.Join(t.TempDir(), "settings.yaml"))
	if err != nil {
		t.Fatalf("Load() failed for missing file: %v", err)
	}

	if settings.RegistryURL != DefaultRegistryURL {
		t.Errorf("RegistryURL = %q, expected default", settings.RegistryURL)
	}
	if settings.MinArtifactBytes != DefaultMinArtifactBytes {
		t.Errorf("MinArtifactBytes = %d, expected %d", settings.MinArtifactBytes, DefaultMinArtifactBytes)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "registry_url: https://registry.example.com/latest\nrequest_timeout_seconds: 3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if settings.RegistryURL != "https://registry.example.com/latest" {
		t.Errorf("RegistryURL = %q, expected overridden value", settings.RegistryURL)
	}
	if settings.RequestTimeout() != 3*time.Second {
		t.Errorf("RequestTimeout() = %v, expected 3s", settings.RequestTimeout())
	}
	if settings.ArtifactURLTemplate != DefaultArtifactURLTemplate {
		t.Errorf("ArtifactURLTemplate = %q, expected default to survive", settings.ArtifactURLTemplate)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("{not yaml::"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for malformed settings file")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	settings := Default()
	settings.DataDir = "/data/beanscan"
	settings.MinArtifactBytes = 128 * 1024

	if err := settings.Save(path); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.DataDir != "/data/beanscan" {
		t.Errorf("DataDir = %q, expected %q", loaded.DataDir, "/data/beanscan")
	}
	if loaded.MinArtifactBytes != 128*1024 {
		t.Errorf("MinArtifactBytes = %d, expected %d", loaded.MinArtifactBytes, 128*1024)
	}
}
