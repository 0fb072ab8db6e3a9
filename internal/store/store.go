package store

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/beanscan/model-updater/internal/model"
)

// Artifact file names inside the data directory
const (
	ArtifactFileName = "bean_disease_model.tflite"
	MarkerFileName   = "model_version.txt"

	// PartialSuffix marks the in-progress download file next to the artifact
	PartialSuffix = ".partial"
)

// DefaultVersion is reported while no downloaded model has ever been
// installed; the app then runs on the model bundled with the binary.
const DefaultVersion = "bundled"

// File permissions
const (
	MarkerFilePermissions = 0644
)

// ArtifactInfo is a read-only snapshot of the installed artifact
type ArtifactInfo struct {
	Version   string
	Exists    bool
	SizeBytes int64 // valid only when SizeKnown is true
	SizeKnown bool
}

// Store owns the marker/binary file pair under the data directory. Reads are
// safe under concurrent use; Install and Erase serialize against them so a
// reader sees either the previous or the new artifact, never a torn one.
type Store struct {
	dir string
	mu  sync.RWMutex

	// rename is swappable in tests to simulate slow or failing renames
	rename func(oldpath, newpath string) error
}

// New creates a store rooted at dir
func New(dir string) *Store {
	return &Store{
		dir:    dir,
		rename: os.Rename,
	}
}

// ArtifactPath returns the canonical path of the installed model binary
func (s *Store) ArtifactPath() string {
	return filepath.Join(s.dir, ArtifactFileName)
}

// MarkerPath returns the path of the version marker file
func (s *Store) MarkerPath() string {
	return filepath.Join(s.dir, MarkerFileName)
}

// TempArtifactPath returns the temp file path the download pipeline streams into
func (s *Store) TempArtifactPath() string {
	return s.ArtifactPath() + PartialSuffix
}

// CurrentVersion returns the trimmed marker file contents, or DefaultVersion
// when the marker is absent or empty. Read errors degrade to whatever content
// was read; this call never fails.
func (s *Store) CurrentVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.MarkerPath())
	if err != nil && len(data) == 0 {
		if !os.IsNotExist(err) {
			log.Printf("version marker unreadable, falling back to default: %v", err)
		}
		return DefaultVersion
	}

	version := strings.TrimSpace(string(data))
	if version == "" {
		return DefaultVersion
	}
	return version
}

// InstalledArtifactPath returns the canonical binary path if the binary
// exists, otherwise ok=false and the caller falls back to the bundled model.
func (s *Store) InstalledArtifactPath() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.ArtifactPath()
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Info returns a snapshot of the installed artifact. Stat failures never
// propagate; they only leave the size unknown.
func (s *Store) Info() ArtifactInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := ArtifactInfo{Version: s.currentVersionLocked()}
	fi, err := os.Stat(s.ArtifactPath())
	if err != nil {
		return info
	}
	info.Exists = true
	info.SizeBytes = fi.Size()
	info.SizeKnown = true
	return info
}

// currentVersionLocked reads the marker without taking the lock again
func (s *Store) currentVersionLocked() string {
	data, err := os.ReadFile(s.MarkerPath())
	if err != nil && len(data) == 0 {
		return DefaultVersion
	}
	version := strings.TrimSpace(string(data))
	if version == "" {
		return DefaultVersion
	}
	return version
}

// Install promotes the validated temp binary at srcPath to the canonical
// artifact path and then records version in the marker file. The marker write
// happens strictly after the binary is in place: a crash in between leaves
// the binary ahead of the marker, which readers treat as stale label only.
// Invoked by the download pipeline, never by other callers.
func (s *Store) Install(version, srcPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	syncFile(srcPath)

	dst := s.ArtifactPath()
	if err := s.rename(srcPath, dst); err != nil {
		// Some filesystems refuse to rename over an existing file
		if removeErr := os.Remove(dst); removeErr != nil && !os.IsNotExist(removeErr) {
			return model.NewUpdateError(model.ErrStorage, err)
		}
		if err := s.rename(srcPath, dst); err != nil {
			return model.NewUpdateError(model.ErrStorage, err)
		}
	}

	if err := os.WriteFile(s.MarkerPath(), []byte(version), MarkerFilePermissions); err != nil {
		return model.NewUpdateError(model.ErrStorage, err)
	}
	return nil
}

// Erase removes the binary and the marker. Each file is attempted
// independently; missing files and per-file failures are not errors.
func (s *Store) Erase() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range []string{s.ArtifactPath(), s.MarkerPath()} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("failed to remove %s: %v", path, err)
		}
	}
}

// syncFile flushes the file contents to stable storage where the platform
// supports it; failures are logged and ignored.
func syncFile(path string) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		log.Printf("fsync skipped for %s: %v", path, err)
		return
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		log.Printf("fsync failed for %s: %v", path, err)
	}
}
