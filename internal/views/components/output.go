package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"bair-timelapse/internal/models"
)

// OutputPanel holds the output directory, file prefix and video toggle
type OutputPanel struct {
	container    *fyne.Container
	dirLabel     *widget.Label
	chooseButton *widget.Button
	prefixEntry  *widget.Entry
	videoCheck   *widget.Check

	chooseHandler func()
	prefixHandler func(string)
	videoHandler  func(bool)
}

// NewOutputPanel creates the panel showing output
func NewOutputPanel(output models.OutputSettings) *OutputPanel {
	p := &OutputPanel{}
	p.createComponents(output)
	p.buildLayout()
	p.setupEventHandlers()
	return p
}

func (p *OutputPanel) createComponents(output models.OutputSettings) {
	p.dirLabel = widget.NewLabel("")
	p.dirLabel.Truncation = fyne.TextTruncateEllipsis
	p.SetDirectory(output.Directory)

	p.chooseButton = widget.NewButton("Choose...", nil)

	p.prefixEntry = widget.NewEntry()
	p.prefixEntry.SetText(output.Prefix)

	p.videoCheck = widget.NewCheck("Make video", nil)
	p.videoCheck.SetChecked(output.MakeVideo)
}

func (p *OutputPanel) buildLayout() {
	p.container = container.NewVBox(
		widget.NewRichTextFromMarkdown("**Output**"),
		container.New(
			layout.NewFormLayout(),
			widget.NewLabel("Directory"), container.NewBorder(nil, nil, nil, p.chooseButton, p.dirLabel),
			widget.NewLabel("Prefix"), p.prefixEntry,
		),
		p.videoCheck,
	)
}

func (p *OutputPanel) setupEventHandlers() {
	p.chooseButton.OnTapped = func() {
		if p.chooseHandler != nil {
			p.chooseHandler()
		}
	}
	p.prefixEntry.OnChanged = func(prefix string) {
		if p.prefixHandler != nil {
			p.prefixHandler(prefix)
		}
	}
	p.videoCheck.OnChanged = func(enabled bool) {
		if p.videoHandler != nil {
			p.videoHandler(enabled)
		}
	}
}

// SetChooseHandler sets the handler for the directory button
func (p *OutputPanel) SetChooseHandler(handler func()) {
	p.chooseHandler = handler
}

// SetPrefixHandler sets the handler for prefix edits
func (p *OutputPanel) SetPrefixHandler(handler func(string)) {
	p.prefixHandler = handler
}

// SetVideoHandler sets the handler for the video toggle
func (p *OutputPanel) SetVideoHandler(handler func(bool)) {
	p.videoHandler = handler
}

// SetDirectory shows dir; empty reads as the working directory
func (p *OutputPanel) SetDirectory(dir string) {
	if dir == "" {
		dir = "(current directory)"
	}
	p.dirLabel.SetText(dir)
}

// SetEditable locks the controls while a run is active
func (p *OutputPanel) SetEditable(editable bool) {
	setEnabled(p.chooseButton, editable)
	setEnabled(p.prefixEntry, editable)
	setEnabled(p.videoCheck, editable)
}

func (p *OutputPanel) Directory() string {
	return p.dirLabel.Text
}

func (p *OutputPanel) PrefixEntry() *widget.Entry {
	return p.prefixEntry
}

func (p *OutputPanel) VideoCheck() *widget.Check {
	return p.videoCheck
}

func (p *OutputPanel) ChooseButton() *widget.Button {
	return p.chooseButton
}

func (p *OutputPanel) GetContainer() *fyne.Container {
	return p.container
}
