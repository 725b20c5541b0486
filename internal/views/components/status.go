package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar displays the status message and run progress
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	frameLabel  *widget.Label
	progressBar *widget.ProgressBar
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

// createComponents initializes status bar components
func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.statusLabel.Truncation = fyne.TextTruncateEllipsis
	sb.frameLabel = widget.NewLabel("0 / 0")
	sb.progressBar = widget.NewProgressBar()
}

// buildLayout constructs the status bar layout
func (sb *StatusBar) buildLayout() {
	sb.container = container.NewVBox(
		sb.progressBar,
		container.NewBorder(nil, nil, nil, sb.frameLabel, sb.statusLabel),
	)
}

// SetStatus updates the main status message
func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

// GetStatus returns the current status message
func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetProgress shows done of total frames captured
func (sb *StatusBar) SetProgress(done, total int) {
	sb.frameLabel.SetText(fmt.Sprintf("%d / %d", done, total))
	if total <= 0 {
		sb.progressBar.SetValue(0)
		return
	}
	sb.progressBar.SetValue(float64(done) / float64(total))
}

// GetProgress returns the progress bar value
func (sb *StatusBar) GetProgress() float64 {
	return sb.progressBar.Value
}

// Reset resets the status bar to initial state
func (sb *StatusBar) Reset() {
	sb.statusLabel.SetText("Ready")
	sb.frameLabel.SetText("0 / 0")
	sb.progressBar.SetValue(0)
}

// GetContainer returns the status bar container
func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
