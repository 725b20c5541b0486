package views

import (
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"

	"bair-timelapse/internal/models"
)

type recordingHandler struct {
	mu       sync.Mutex
	calls    []string
	interval [3]string
}

func (h *recordingHandler) record(call string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, call)
}

func (h *recordingHandler) recorded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.calls...)
}

func (h *recordingHandler) SetInterval(hours, minutes, seconds string) {
	h.mu.Lock()
	h.interval = [3]string{hours, minutes, seconds}
	h.mu.Unlock()
	h.record("interval")
}

func (h *recordingHandler) SetTotal(string, string, string) { h.record("total") }
func (h *recordingHandler) SetImageCountText(string)        { h.record("count") }
func (h *recordingHandler) SetISOAuto(bool)                 { h.record("iso-auto") }
func (h *recordingHandler) SelectISO(string)                { h.record("iso") }
func (h *recordingHandler) SetShutterAuto(bool)             { h.record("shutter-auto") }
func (h *recordingHandler) SelectShutter(string)            { h.record("shutter") }
func (h *recordingHandler) SelectResolution(string)         { h.record("resolution") }
func (h *recordingHandler) SetPrefix(string)                { h.record("prefix") }
func (h *recordingHandler) SetDirectory(string)             { h.record("directory") }
func (h *recordingHandler) SetMakeVideo(bool)               { h.record("video") }
func (h *recordingHandler) Start()                          { h.record("start") }
func (h *recordingHandler) Stop()                           { h.record("stop") }
func (h *recordingHandler) Preview()                        { h.record("preview") }
func (h *recordingHandler) TakeSnapshot()                   { h.record("snapshot") }

func newTestView(t *testing.T) (*MainView, *recordingHandler) {
	t.Helper()
	test.NewTempApp(t)
	window := test.NewTempWindow(t, nil)

	view := NewMainView(window, models.DefaultCameraSettings(), models.OutputSettings{Prefix: models.DefaultPrefix})
	handler := &recordingHandler{}
	view.SetHandler(handler)
	return view, handler
}

func TestMainView_ForwardsEdits(t *testing.T) {
	view, handler := newTestView(t)

	_, _, seconds := view.IntervalPanel().Interval().Entries()
	test.Type(seconds, "5")
	view.CameraPanel().ShutterAuto().SetChecked(false)
	test.Tap(view.Toolbar().StartButton())

	assert.Eventually(t, func() bool {
		calls := handler.recorded()
		return len(calls) == 3 && calls[2] == "start"
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, [3]string{"", "", "5"}, handler.interval)
	assert.Equal(t, []string{"interval", "shutter-auto", "start"}, handler.recorded())
}

func TestMainView_Updates(t *testing.T) {
	view, _ := newTestView(t)

	view.UpdateStatus("Running: 1 of 3")
	view.UpdateProgress(1, 3)
	view.SetImageCount(3)
	view.SetPhase(models.Running)

	assert.Eventually(t, func() bool {
		return view.StatusBar().GetStatus() == "Running: 1 of 3" &&
			view.IntervalPanel().ImageCountText() == "3" &&
			view.Toolbar().Phase() == models.Running
	}, time.Second, 10*time.Millisecond)

	assert.True(t, view.CameraPanel().PreviewButton().Disabled())
	assert.True(t, view.OutputPanel().PrefixEntry().Disabled())
}

func TestMainView_PreviewKeepsFormEditable(t *testing.T) {
	view, _ := newTestView(t)

	view.SetPhase(models.Running)
	view.SetPhase(models.Previewing)

	assert.Eventually(t, func() bool {
		return view.Toolbar().Phase() == models.Previewing
	}, time.Second, 10*time.Millisecond)

	assert.False(t, view.OutputPanel().PrefixEntry().Disabled())
	assert.False(t, view.CameraPanel().PreviewButton().Disabled())
	assert.False(t, view.Toolbar().StartButton().Disabled())
}

func TestMainView_SetTotalTimeDoesNotEcho(t *testing.T) {
	view, handler := newTestView(t)

	view.SetTotalTime(models.HMS{Seconds: 40})

	assert.Eventually(t, func() bool {
		_, _, s := view.IntervalPanel().Total().Texts()
		return s == "40"
	}, time.Second, 10*time.Millisecond)
	assert.Empty(t, handler.recorded())
}
