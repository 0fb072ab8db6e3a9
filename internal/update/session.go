package update

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/beanscan/model-updater/internal/model"
)

// Command errors. These signal misuse of the session API, not update
// failures; update failures surface as session states.
var (
	ErrBusy            = errors.New("an update operation is already in flight")
	ErrInvalidCommand  = errors.New("command is not valid in the current state")
	ErrVersionMismatch = errors.New("download version does not match the offered version")
)

// Resolver yields the latest remote version tag
type Resolver interface {
	LatestVersion(ctx context.Context) (string, error)
}

// Downloader fetches and installs the artifact for a version tag
type Downloader interface {
	Download(ctx context.Context, version string) error
}

// VersionReader reports the currently installed version
type VersionReader interface {
	CurrentVersion() string
}

// Session sequences the resolver and the download pipeline into the
// observable update states. It owns the state exclusively: one operation in
// flight at a time, completions for a superseded command are discarded.
type Session struct {
	resolver   Resolver
	downloader Downloader
	versions   VersionReader

	mu       sync.Mutex
	state    model.State
	epoch    int // bumped by every command and by Dismiss
	inFlight bool
	onUpdate func(model.State)
}

// NewSession creates a session over the given collaborators
func NewSession(resolver Resolver, downloader Downloader, versions VersionReader) *Session {
	return &Session{
		resolver:   resolver,
		downloader: downloader,
		versions:   versions,
	}
}

// SetUpdateCallback sets the callback invoked on every state transition
func (s *Session) SetUpdateCallback(callback func(model.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = callback
}

// State returns the current session state
func (s *Session) State() model.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CheckForUpdate enters Loading and resolves the latest remote version.
// The session transitions to UpToDate, UpdateAvailable, or NetworkError.
func (s *Session) CheckForUpdate() error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.state.Phase.IsTerminal() {
		s.mu.Unlock()
		return ErrInvalidCommand
	}
	notify := s.beginCheckLocked()
	s.mu.Unlock()
	notify()
	return nil
}

// Download starts fetching the offered version. Valid only from
// UpdateAvailable or DownloadFailed, and only for the version those states
// offered; the session never re-resolves mid-download.
func (s *Session) Download(version string) error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}
	if s.state.Phase != model.PhaseUpdateAvailable && s.state.Phase != model.PhaseDownloadFailed {
		s.mu.Unlock()
		return ErrInvalidCommand
	}
	if version != s.state.TargetVersion() {
		s.mu.Unlock()
		return ErrVersionMismatch
	}
	notify := s.beginDownloadLocked(version)
	s.mu.Unlock()
	notify()
	return nil
}

// Retry re-runs the failed step: from NetworkError it re-enters Loading with
// a full resolver call, from DownloadFailed it re-enters Downloading with the
// same target version.
func (s *Session) Retry() error {
	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return ErrBusy
	}

	var notify func()
	switch s.state.Phase {
	case model.PhaseNetworkError:
		notify = s.beginCheckLocked()
	case model.PhaseDownloadFailed:
		notify = s.beginDownloadLocked(s.state.TargetVersion())
	default:
		s.mu.Unlock()
		return ErrInvalidCommand
	}
	s.mu.Unlock()
	notify()
	return nil
}

// Dismiss tears the session down. Any in-flight completion is discarded when
// it arrives.
func (s *Session) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.inFlight = false
	s.state = model.State{}
}

// beginCheckLocked enters Loading and spawns the resolver call.
// Caller holds the lock and invokes the returned notify after unlocking.
func (s *Session) beginCheckLocked() func() {
	s.epoch++
	epoch := s.epoch
	s.inFlight = true

	current := s.versions.CurrentVersion()
	notify := s.publishLocked(model.State{
		Phase:          model.PhaseLoading,
		CurrentVersion: current,
	})

	go s.resolve(epoch, current)
	return notify
}

// beginDownloadLocked enters Downloading and spawns the pipeline call
func (s *Session) beginDownloadLocked(version string) func() {
	s.epoch++
	epoch := s.epoch
	s.inFlight = true

	current := s.state.CurrentVersion
	notify := s.publishLocked(model.State{
		Phase:          model.PhaseDownloading,
		CurrentVersion: current,
		LatestVersion:  version,
	})

	go s.download(epoch, current, version)
	return notify
}

func (s *Session) resolve(epoch int, current string) {
	latest, err := s.resolver.LatestVersion(context.Background())

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		log.Printf("discarding stale version check result (session moved on)")
		return
	}
	s.inFlight = false

	var next model.State
	switch {
	case err != nil:
		next = model.State{
			Phase:          model.PhaseNetworkError,
			CurrentVersion: current,
			ErrorMessage:   model.MessageFor(err),
		}
	case latest == current:
		next = model.State{
			Phase:          model.PhaseUpToDate,
			CurrentVersion: current,
			LatestVersion:  latest,
		}
	default:
		next = model.State{
			Phase:          model.PhaseUpdateAvailable,
			CurrentVersion: current,
			LatestVersion:  latest,
		}
	}
	notify := s.publishLocked(next)
	s.mu.Unlock()
	notify()
}

func (s *Session) download(epoch int, current, version string) {
	err := s.downloader.Download(context.Background(), version)

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		log.Printf("discarding stale download result for version %s (session moved on)", version)
		return
	}
	s.inFlight = false

	var next model.State
	if err != nil {
		next = model.State{
			Phase:          model.PhaseDownloadFailed,
			CurrentVersion: current,
			LatestVersion:  version,
			ErrorMessage:   model.MessageFor(err),
		}
	} else {
		next = model.State{
			Phase:          model.PhaseDownloadSuccess,
			CurrentVersion: current,
			NewVersion:     version,
		}
	}
	notify := s.publishLocked(next)
	s.mu.Unlock()
	notify()
}

// publishLocked records the new state and returns the callback invocation to
// run outside the lock, so a consumer may call back into the session.
func (s *Session) publishLocked(state model.State) func() {
	s.state = state
	callback := s.onUpdate
	return func() {
		if callback != nil {
			callback(state)
		}
	}
}
