package components

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"bair-timelapse/internal/models"
)

// CameraPanel holds the ISO, shutter speed and resolution controls plus the
// preview and snapshot buttons
type CameraPanel struct {
	container *fyne.Container

	isoAuto        *widget.Check
	isoSelect      *widget.Select
	shutterAuto    *widget.Check
	shutterSelect  *widget.Select
	resolution     *widget.Select
	previewButton  *widget.Button
	snapshotButton *widget.Button

	isoAutoHandler     func(bool)
	isoHandler         func(string)
	shutterAutoHandler func(bool)
	shutterHandler     func(string)
	resolutionHandler  func(string)
	previewHandler     func()
	snapshotHandler    func()
}

// NewCameraPanel creates the panel showing settings
func NewCameraPanel(settings models.CameraSettings) *CameraPanel {
	p := &CameraPanel{}
	p.createComponents(settings)
	p.buildLayout()
	p.setupEventHandlers()
	return p
}

func (p *CameraPanel) createComponents(settings models.CameraSettings) {
	p.isoAuto = widget.NewCheck("Auto", nil)
	p.isoAuto.SetChecked(settings.AutoISO)
	p.isoSelect = widget.NewSelect(models.ISOLabels(), nil)
	p.isoSelect.SetSelected(strconv.Itoa(settings.ISO))

	p.shutterAuto = widget.NewCheck("Auto", nil)
	p.shutterAuto.SetChecked(settings.AutoShutter)
	p.shutterSelect = widget.NewSelect(models.ShutterOptions, nil)
	p.shutterSelect.SetSelected(settings.Shutter)

	p.resolution = widget.NewSelect(models.ResolutionOptions, nil)
	p.resolution.SetSelected(settings.Resolution.String())

	p.previewButton = widget.NewButton("Preview", nil)
	p.snapshotButton = widget.NewButton("Snapshot", nil)

	p.SetISOSelectorEnabled(!settings.AutoISO)
	p.SetShutterSelectorEnabled(!settings.AutoShutter)
}

func (p *CameraPanel) buildLayout() {
	form := container.New(
		layout.NewFormLayout(),
		widget.NewLabel("ISO"), container.NewHBox(p.isoAuto, p.isoSelect),
		widget.NewLabel("Shutter speed"), container.NewHBox(p.shutterAuto, p.shutterSelect),
		widget.NewLabel("Resolution"), p.resolution,
	)

	p.container = container.NewVBox(
		widget.NewRichTextFromMarkdown("**Camera**"),
		form,
		container.NewHBox(p.previewButton, p.snapshotButton),
	)
}

func (p *CameraPanel) setupEventHandlers() {
	p.isoAuto.OnChanged = func(auto bool) {
		if p.isoAutoHandler != nil {
			p.isoAutoHandler(auto)
		}
	}
	p.isoSelect.OnChanged = func(label string) {
		if p.isoHandler != nil {
			p.isoHandler(label)
		}
	}
	p.shutterAuto.OnChanged = func(auto bool) {
		if p.shutterAutoHandler != nil {
			p.shutterAutoHandler(auto)
		}
	}
	p.shutterSelect.OnChanged = func(fraction string) {
		if p.shutterHandler != nil {
			p.shutterHandler(fraction)
		}
	}
	p.resolution.OnChanged = func(label string) {
		if p.resolutionHandler != nil {
			p.resolutionHandler(label)
		}
	}
	p.previewButton.OnTapped = func() {
		if p.previewHandler != nil {
			p.previewHandler()
		}
	}
	p.snapshotButton.OnTapped = func() {
		if p.snapshotHandler != nil {
			p.snapshotHandler()
		}
	}
}

// Event handler setters

func (p *CameraPanel) SetISOAutoHandler(handler func(bool)) {
	p.isoAutoHandler = handler
}

func (p *CameraPanel) SetISOHandler(handler func(string)) {
	p.isoHandler = handler
}

func (p *CameraPanel) SetShutterAutoHandler(handler func(bool)) {
	p.shutterAutoHandler = handler
}

func (p *CameraPanel) SetShutterHandler(handler func(string)) {
	p.shutterHandler = handler
}

func (p *CameraPanel) SetResolutionHandler(handler func(string)) {
	p.resolutionHandler = handler
}

func (p *CameraPanel) SetPreviewHandler(handler func()) {
	p.previewHandler = handler
}

func (p *CameraPanel) SetSnapshotHandler(handler func()) {
	p.snapshotHandler = handler
}

// SetISOSelectorEnabled enables the ISO selector in manual mode
func (p *CameraPanel) SetISOSelectorEnabled(enabled bool) {
	setEnabled(p.isoSelect, enabled)
}

// SetShutterSelectorEnabled enables the shutter selector in manual mode
func (p *CameraPanel) SetShutterSelectorEnabled(enabled bool) {
	setEnabled(p.shutterSelect, enabled)
}

// SetCameraBusy disables preview and snapshot while a run or snapshot holds the camera
func (p *CameraPanel) SetCameraBusy(busy bool) {
	setEnabled(p.previewButton, !busy)
	setEnabled(p.snapshotButton, !busy)
	setEnabled(p.resolution, !busy)
}

func (p *CameraPanel) ISOAuto() *widget.Check {
	return p.isoAuto
}

func (p *CameraPanel) ISOSelect() *widget.Select {
	return p.isoSelect
}

func (p *CameraPanel) ShutterAuto() *widget.Check {
	return p.shutterAuto
}

func (p *CameraPanel) ShutterSelect() *widget.Select {
	return p.shutterSelect
}

func (p *CameraPanel) ResolutionSelect() *widget.Select {
	return p.resolution
}

func (p *CameraPanel) PreviewButton() *widget.Button {
	return p.previewButton
}

func (p *CameraPanel) SnapshotButton() *widget.Button {
	return p.snapshotButton
}

func (p *CameraPanel) GetContainer() *fyne.Container {
	return p.container
}

func setEnabled(w fyne.Disableable, enabled bool) {
	if enabled {
		w.Enable()
	} else {
		w.Disable()
	}
}
