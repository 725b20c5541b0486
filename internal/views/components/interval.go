package components

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"bair-timelapse/internal/models"
)

// DurationRow is a labelled hours/minutes/seconds entry triple
type DurationRow struct {
	container *fyne.Container
	hours     *widget.Entry
	minutes   *widget.Entry
	seconds   *widget.Entry

	changeHandler func(hours, minutes, seconds string)
	suppress      bool
}

// NewDurationRow creates a row titled label
func NewDurationRow(label string) *DurationRow {
	r := &DurationRow{}
	r.hours = newNumberEntry("h")
	r.minutes = newNumberEntry("m")
	r.seconds = newNumberEntry("s")

	r.container = container.NewHBox(
		widget.NewLabel(label),
		r.hours, widget.NewLabel("h"),
		r.minutes, widget.NewLabel("m"),
		r.seconds, widget.NewLabel("s"),
	)

	onChanged := func(string) {
		if r.suppress || r.changeHandler == nil {
			return
		}
		r.changeHandler(r.hours.Text, r.minutes.Text, r.seconds.Text)
	}
	r.hours.OnChanged = onChanged
	r.minutes.OnChanged = onChanged
	r.seconds.OnChanged = onChanged
	return r
}

func newNumberEntry(placeholder string) *widget.Entry {
	e := widget.NewEntry()
	e.SetPlaceHolder(placeholder)
	e.Validator = func(text string) error {
		_, err := models.ParseHMSField(text)
		return err
	}
	return e
}

// SetChangeHandler sets the handler called with the raw field texts
func (r *DurationRow) SetChangeHandler(handler func(hours, minutes, seconds string)) {
	r.changeHandler = handler
}

// SetDuration shows d without notifying the change handler
func (r *DurationRow) SetDuration(d models.HMS) {
	r.suppress = true
	defer func() { r.suppress = false }()

	r.hours.SetText(strconv.Itoa(d.Hours))
	r.minutes.SetText(strconv.Itoa(d.Minutes))
	r.seconds.SetText(strconv.Itoa(d.Seconds))
}

// Texts returns the current field texts
func (r *DurationRow) Texts() (string, string, string) {
	return r.hours.Text, r.minutes.Text, r.seconds.Text
}

func (r *DurationRow) Entries() (*widget.Entry, *widget.Entry, *widget.Entry) {
	return r.hours, r.minutes, r.seconds
}

func (r *DurationRow) GetContainer() *fyne.Container {
	return r.container
}

// IntervalPanel holds the interval, total time and image number fields
type IntervalPanel struct {
	container  *fyne.Container
	interval   *DurationRow
	total      *DurationRow
	countEntry *widget.Entry

	countHandler func(string)
}

// NewIntervalPanel creates the interval panel
func NewIntervalPanel() *IntervalPanel {
	p := &IntervalPanel{}
	p.createComponents()
	p.buildLayout()
	p.setupEventHandlers()
	return p
}

func (p *IntervalPanel) createComponents() {
	p.interval = NewDurationRow("Interval")
	p.total = NewDurationRow("Total time")

	p.countEntry = widget.NewEntry()
	p.countEntry.SetText("0")
	p.countEntry.Validator = func(text string) error {
		_, err := models.ParseImageCount(text)
		return err
	}
}

func (p *IntervalPanel) buildLayout() {
	p.container = container.NewVBox(
		widget.NewRichTextFromMarkdown("**Timelapse**"),
		p.interval.GetContainer(),
		p.total.GetContainer(),
		container.NewBorder(nil, nil, widget.NewLabel("Image number"), nil, p.countEntry),
	)
}

func (p *IntervalPanel) setupEventHandlers() {
	p.countEntry.OnSubmitted = func(text string) {
		if p.countHandler != nil {
			p.countHandler(text)
		}
	}
}

// SetIntervalHandler sets the handler for interval edits
func (p *IntervalPanel) SetIntervalHandler(handler func(hours, minutes, seconds string)) {
	p.interval.SetChangeHandler(handler)
}

// SetTotalHandler sets the handler for total time edits
func (p *IntervalPanel) SetTotalHandler(handler func(hours, minutes, seconds string)) {
	p.total.SetChangeHandler(handler)
}

// SetImageCountHandler sets the handler for a submitted image number
func (p *IntervalPanel) SetImageCountHandler(handler func(string)) {
	p.countHandler = handler
}

// SetImageCount shows the recomputed image number
func (p *IntervalPanel) SetImageCount(count int) {
	p.countEntry.SetText(strconv.Itoa(count))
}

// SetTotalTime shows the recomputed total time
func (p *IntervalPanel) SetTotalTime(total models.HMS) {
	p.total.SetDuration(total)
}

// SetEditable locks the fields while a run is active
func (p *IntervalPanel) SetEditable(editable bool) {
	entries := []*widget.Entry{p.countEntry}
	for _, row := range []*DurationRow{p.interval, p.total} {
		h, m, s := row.Entries()
		entries = append(entries, h, m, s)
	}
	for _, e := range entries {
		if editable {
			e.Enable()
		} else {
			e.Disable()
		}
	}
}

func (p *IntervalPanel) ImageCountText() string {
	return p.countEntry.Text
}

func (p *IntervalPanel) Interval() *DurationRow {
	return p.interval
}

func (p *IntervalPanel) Total() *DurationRow {
	return p.total
}

func (p *IntervalPanel) CountEntry() *widget.Entry {
	return p.countEntry
}

func (p *IntervalPanel) GetContainer() *fyne.Container {
	return p.container
}
