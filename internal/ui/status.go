package ui

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/beanscan/model-updater/internal/model"
	"github.com/beanscan/model-updater/internal/update"
)

// Button labels
const (
	LabelCheck    = "Check for update"
	LabelDownload = "Download"
	LabelRetry    = "Retry"
	LabelDismiss  = "Dismiss"

	InitialStatusText = "No update check yet"
)

// StatusUI renders the update session state and forwards button presses as
// session commands. It holds no update logic of its own.
type StatusUI struct {
	window  fyne.Window
	session *update.Session

	statusLabel *widget.Label
	progressBar *widget.ProgressBarInfinite

	checkBtn    *widget.Button
	downloadBtn *widget.Button
	retryBtn    *widget.Button
	dismissBtn  *widget.Button
}

// NewStatusUI builds the status view and subscribes it to the session
func NewStatusUI(window fyne.Window, session *update.Session) *StatusUI {
	ui := &StatusUI{
		window:  window,
		session: session,
	}

	ui.statusLabel = widget.NewLabel(InitialStatusText)
	ui.statusLabel.Wrapping = fyne.TextWrapWord
	ui.progressBar = widget.NewProgressBarInfinite()
	ui.progressBar.Hide()

	ui.checkBtn = widget.NewButton(LabelCheck, ui.onCheck)
	ui.downloadBtn = widget.NewButton(LabelDownload, ui.onDownload)
	ui.retryBtn = widget.NewButton(LabelRetry, ui.onRetry)
	ui.dismissBtn = widget.NewButton(LabelDismiss, ui.onDismiss)
	ui.downloadBtn.Disable()
	ui.retryBtn.Disable()

	buttons := container.NewHBox(ui.checkBtn, ui.downloadBtn, ui.retryBtn, ui.dismissBtn)
	content := container.NewVBox(ui.statusLabel, ui.progressBar, buttons)
	window.SetContent(content)

	session.SetUpdateCallback(ui.handleState)
	return ui
}

func (ui *StatusUI) onCheck() {
	if err := ui.session.CheckForUpdate(); err != nil {
		ui.statusLabel.SetText(err.Error())
	}
}

func (ui *StatusUI) onDownload() {
	target := ui.session.State().TargetVersion()
	if target == "" {
		return
	}
	if err := ui.session.Download(target); err != nil {
		ui.statusLabel.SetText(err.Error())
	}
}

func (ui *StatusUI) onRetry() {
	if err := ui.session.Retry(); err != nil {
		ui.statusLabel.SetText(err.Error())
	}
}

func (ui *StatusUI) onDismiss() {
	ui.session.Dismiss()
	fyne.Do(func() {
		ui.statusLabel.SetText(InitialStatusText)
		ui.progressBar.Hide()
		ui.checkBtn.Enable()
		ui.downloadBtn.Disable()
		ui.retryBtn.Disable()
	})
}

// handleState re-renders on every session transition. Completions arrive on
// worker goroutines, so all widget access goes through fyne.Do.
func (ui *StatusUI) handleState(state model.State) {
	fyne.Do(func() {
		ui.statusLabel.SetText(StateText(state))

		if state.Phase.IsBusy() {
			ui.progressBar.Show()
		} else {
			ui.progressBar.Hide()
		}

		ui.setEnabled(ui.checkBtn, !state.Phase.IsBusy() && !state.Phase.IsTerminal())
		ui.setEnabled(ui.downloadBtn, state.Phase == model.PhaseUpdateAvailable)
		ui.setEnabled(ui.retryBtn,
			state.Phase == model.PhaseDownloadFailed || state.Phase == model.PhaseNetworkError)
	})
}

func (ui *StatusUI) setEnabled(btn *widget.Button, enabled bool) {
	if enabled {
		btn.Enable()
	} else {
		btn.Disable()
	}
}

// StateText returns the display text for a session state
func StateText(state model.State) string {
	switch state.Phase {
	case model.PhaseLoading:
		return "Checking for updates..."
	case model.PhaseUpToDate:
		return fmt.Sprintf("Model %s is up to date", state.CurrentVersion)
	case model.PhaseUpdateAvailable:
		return fmt.Sprintf("Version %s is available (installed: %s)", state.LatestVersion, state.CurrentVersion)
	case model.PhaseDownloading:
		return fmt.Sprintf("Downloading model %s...", state.LatestVersion)
	case model.PhaseDownloadSuccess:
		return fmt.Sprintf("Model %s installed. Restart the app to start using it.", state.NewVersion)
	case model.PhaseDownloadFailed:
		return state.ErrorMessage
	case model.PhaseNetworkError:
		return state.ErrorMessage
	default:
		return InitialStatusText
	}
}
