package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/beanscan/model-updater/internal/model"
)

// Transfer constants
const (
	// DefaultTimeout bounds the whole transfer, not a single read
	DefaultTimeout = 5 * time.Minute

	// DefaultMinArtifactBytes rejects results smaller than any real model
	// build; the largest plausible error page is well below this.
	DefaultMinArtifactBytes = 64 * 1024

	UserAgent = "beanscan-model-updater/1.0"

	TempFilePermissions = 0644
)

// ErrDownloadInProgress is returned when a second download targets the same
// temp file while one is still streaming.
var ErrDownloadInProgress = errors.New("another download is already in progress")

// Installer is the slice of the version store the pipeline drives: where to
// stream the temp file, and how to promote it once validated.
type Installer interface {
	TempArtifactPath() string
	Install(version, srcPath string) error
}

// Pipeline streams a model binary for one version tag into a temp file,
// validates it, and hands it to the store for atomic installation. The temp
// file is removed on every exit path.
type Pipeline struct {
	urlTemplate string // one %s, expands to the escaped version tag
	client      *http.Client
	installer   Installer
	minBytes    int64

	// guard is the in-process advisory lock on the temp file
	guard sync.Mutex
}

// New creates a pipeline with the default HTTP client and size threshold
func New(urlTemplate string, installer Installer) *Pipeline {
	return &Pipeline{
		urlTemplate: urlTemplate,
		client:      &http.Client{Timeout: DefaultTimeout},
		installer:   installer,
		minBytes:    DefaultMinArtifactBytes,
	}
}

// NewWithClient creates a pipeline with a caller-provided client and threshold
func NewWithClient(urlTemplate string, installer Installer, client *http.Client, minBytes int64) *Pipeline {
	return &Pipeline{
		urlTemplate: urlTemplate,
		client:      client,
		installer:   installer,
		minBytes:    minBytes,
	}
}

// ArtifactURL returns the download URL for the given version tag
func (p *Pipeline) ArtifactURL(version string) string {
	return fmt.Sprintf(p.urlTemplate, url.PathEscape(version))
}

// Download fetches and installs the artifact for version. Every failure is
// classified into the shared error taxonomy; on success the store's binary
// and marker both name the new version.
func (p *Pipeline) Download(ctx context.Context, version string) error {
	if !p.guard.TryLock() {
		return model.NewUpdateError(model.ErrUnknown, ErrDownloadInProgress)
	}
	defer p.guard.Unlock()

	attemptID := uuid.NewString()
	log.Printf("download %s: fetching version %s", attemptID, version)

	err := p.run(ctx, version)
	if err != nil {
		log.Printf("download %s: failed: %v", attemptID, err)
		return err
	}
	log.Printf("download %s: installed version %s", attemptID, version)
	return nil
}

func (p *Pipeline) run(ctx context.Context, version string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ArtifactURL(version), nil)
	if err != nil {
		return model.NewUpdateError(model.ErrUnknown, err)
	}
	req.Header.Set("Accept", "application/octet-stream")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return model.Classify(err)
	}
	defer resp.Body.Close()

	// Status is mapped before any local file is opened
	if resp.StatusCode != http.StatusOK {
		return model.ClassifyStatus(resp.StatusCode)
	}

	tmpPath := p.installer.TempArtifactPath()
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, TempFilePermissions)
	if err != nil {
		return model.NewUpdateError(model.ErrStorage, err)
	}
	// Install renames the temp file away on success; otherwise this removes it
	defer os.Remove(tmpPath)

	written, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return model.Classify(err)
	}
	if err := tmp.Close(); err != nil {
		return model.NewUpdateError(model.ErrStorage, err)
	}

	if resp.ContentLength > 0 && written != resp.ContentLength {
		return model.NewUpdateError(model.ErrCorrupted,
			fmt.Errorf("received %d of %d declared bytes", written, resp.ContentLength))
	}
	if written < p.minBytes {
		return model.NewUpdateError(model.ErrCorrupted,
			fmt.Errorf("artifact implausibly small: %d bytes", written))
	}

	return p.installer.Install(version, tmpPath)
}
