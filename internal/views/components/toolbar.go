package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"bair-timelapse/internal/models"
)

// Toolbar holds the run buttons
type Toolbar struct {
	container   *fyne.Container
	startButton *widget.Button
	stopButton  *widget.Button
	phaseLabel  *widget.Label

	startHandler func()
	stopHandler  func()

	phase models.RunPhase
}

// NewToolbar creates a new toolbar component
func NewToolbar() *Toolbar {
	toolbar := &Toolbar{}
	toolbar.createComponents()
	toolbar.buildLayout()
	toolbar.setupEventHandlers()
	return toolbar
}

// createComponents initializes all toolbar components
func (t *Toolbar) createComponents() {
	t.startButton = widget.NewButtonWithIcon("Start", theme.MediaPlayIcon(), nil)
	t.startButton.Importance = widget.HighImportance

	t.stopButton = widget.NewButtonWithIcon("Stop", theme.MediaStopIcon(), nil)
	t.stopButton.Importance = widget.MediumImportance
	t.stopButton.Disable()

	t.phaseLabel = widget.NewLabel(models.Idle.String())
}

// buildLayout constructs the toolbar layout
func (t *Toolbar) buildLayout() {
	t.container = container.NewHBox(
		t.startButton,
		t.stopButton,
		widget.NewSeparator(),
		t.phaseLabel,
	)
}

// setupEventHandlers connects button events
func (t *Toolbar) setupEventHandlers() {
	t.startButton.OnTapped = func() {
		if t.startHandler != nil {
			t.startHandler()
		}
	}
	t.stopButton.OnTapped = func() {
		if t.stopHandler != nil {
			t.stopHandler()
		}
	}
}

// SetStartHandler sets the start handler
func (t *Toolbar) SetStartHandler(handler func()) {
	t.startHandler = handler
}

// SetStopHandler sets the stop handler
func (t *Toolbar) SetStopHandler(handler func()) {
	t.stopHandler = handler
}

// SetPhase enables Start when idle or previewing and Stop only while running
func (t *Toolbar) SetPhase(phase models.RunPhase) {
	t.phase = phase
	setEnabled(t.startButton, phase.Editable())
	setEnabled(t.stopButton, phase == models.Running)
	t.phaseLabel.SetText(phase.String())
}

// Phase returns the phase last shown
func (t *Toolbar) Phase() models.RunPhase {
	return t.phase
}

func (t *Toolbar) StartButton() *widget.Button {
	return t.startButton
}

func (t *Toolbar) StopButton() *widget.Button {
	return t.stopButton
}

func (t *Toolbar) PhaseLabel() *widget.Label {
	return t.phaseLabel
}

// GetContainer returns the toolbar container
func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
