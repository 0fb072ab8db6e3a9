package model

// Phase represents the phase of an update session
type Phase string

const (
	// PhaseLoading means the session is resolving the latest remote version
	PhaseLoading Phase = "Loading"

	// PhaseUpToDate means the installed version matches the remote version
	PhaseUpToDate Phase = "UpToDate"

	// PhaseUpdateAvailable means a different version is available remotely
	PhaseUpdateAvailable Phase = "UpdateAvailable"

	// PhaseDownloading means the artifact download is in progress
	PhaseDownloading Phase = "Downloading"

	// PhaseDownloadSuccess means the new artifact was installed; terminal
	PhaseDownloadSuccess Phase = "DownloadSuccess"

	// PhaseDownloadFailed means the download failed; retry re-enters Downloading
	PhaseDownloadFailed Phase = "DownloadFailed"

	// PhaseNetworkError means the version check failed; retry re-enters Loading
	PhaseNetworkError Phase = "NetworkError"
)

// String returns the string representation of Phase
func (p Phase) String() string {
	return string(p)
}

// IsBusy returns true if an operation is in flight for this phase
func (p Phase) IsBusy() bool {
	return p == PhaseLoading || p == PhaseDownloading
}

// IsTerminal returns true if the session has no outgoing transitions
func (p Phase) IsTerminal() bool {
	return p == PhaseDownloadSuccess
}

// State is the session state published to consumers. The phase decides which
// payload fields are meaningful; fields outside the phase's payload are empty.
type State struct {
	Phase          Phase
	CurrentVersion string // set for every phase
	LatestVersion  string // UpToDate, UpdateAvailable, Downloading, DownloadFailed
	NewVersion     string // DownloadSuccess
	ErrorMessage   string // DownloadFailed, NetworkError
}

// TargetVersion returns the version a download (or retry-download) command
// should address in this state, or "" when no download target is defined.
func (s State) TargetVersion() string {
	switch s.Phase {
	case PhaseUpdateAvailable, PhaseDownloading, PhaseDownloadFailed:
		return s.LatestVersion
	default:
		return ""
	}
}
