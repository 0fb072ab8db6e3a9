package model

import "testing"

func TestPhase_IsBusy(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected bool
	}{
		{PhaseLoading, true},
		{PhaseUpToDate, false},
		{PhaseUpdateAvailable, false},
		{PhaseDownloading, true},
		{PhaseDownloadSuccess, false},
		{PhaseDownloadFailed, false},
		{PhaseNetworkError, false},
	}

	for _, test := range tests {
		result := test.phase.IsBusy()
		if result != test.expected {
			t.Errorf("Phase(%s).IsBusy() = %v, expected %v", test.phase, result, test.expected)
		}
	}
}

func TestPhase_IsTerminal(t *testing.T) {
	tests := []struct {
		phase    Phase
		expected bool
	}{
		{PhaseLoading, false},
		{PhaseUpToDate, false},
		{PhaseUpdateAvailable, false},
		{PhaseDownloading, false},
		{PhaseDownloadSuccess, true},
		{PhaseDownloadFailed, false},
		{PhaseNetworkError, false},
	}

	for _, test := range tests {
		result := test.phase.IsTerminal()
		if result != test.expected {
			t.Errorf("Phase(%s).IsTerminal() = %v, expected %v", test.phase, result, test.expected)
		}
	}
}

func TestState_TargetVersion(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{State{Phase: PhaseLoading, CurrentVersion: "v1"}, ""},
		{State{Phase: PhaseUpToDate, CurrentVersion: "v1", LatestVersion: "v1"}, ""},
		{State{Phase: PhaseUpdateAvailable, CurrentVersion: "v1", LatestVersion: "v2"}, "v2"},
		{State{Phase: PhaseDownloading, CurrentVersion: "v1", LatestVersion: "v2"}, "v2"},
		{State{Phase: PhaseDownloadFailed, CurrentVersion: "v1", LatestVersion: "v2", ErrorMessage: "x"}, "v2"},
		{State{Phase: PhaseDownloadSuccess, CurrentVersion: "v1", NewVersion: "v2"}, ""},
		{State{Phase: PhaseNetworkError, CurrentVersion: "v1", ErrorMessage: "x"}, ""},
	}

	for _, test := range tests {
		result := test.state.TargetVersion()
		if result != test.expected {
			t.Errorf("State(%s).TargetVersion() = %q, expected %q", test.state.Phase, result, test.expected)
		}
	}
}
