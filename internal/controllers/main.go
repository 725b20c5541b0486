package controllers

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/looplab/fsm"

	"bair-timelapse/internal/camera"
	"bair-timelapse/internal/logger"
	"bair-timelapse/internal/models"
	"bair-timelapse/internal/scheduler"
	"bair-timelapse/internal/services"
	"bair-timelapse/internal/views"
)

// ErrNothingToCapture is reported when Start is pressed with a zero interval
var ErrNothingToCapture = errors.New("nothing to capture: interval must be positive")

// DefaultPreviewDuration is how long Preview keeps the camera preview open
const DefaultPreviewDuration = 5 * time.Second

// View is the surface the controller drives. Implementations must be safe to
// call from the timer goroutine.
type View interface {
	SetHandler(handler views.Handler)
	UpdateStatus(message string)
	SetPhase(phase models.RunPhase)
	UpdateProgress(done, total int)
	SetImageCount(count int)
	SetTotalTime(total models.HMS)
	SetISOSelectorEnabled(enabled bool)
	SetShutterSelectorEnabled(enabled bool)
	SetThumbnail(img image.Image)
	ShowError(title string, err error)
	ChooseSnapshotDestination(callback func(io.WriteCloser, error))
}

// RunResult summarizes a finished, stopped or failed run
type RunResult struct {
	Frames  int
	Planned int
	Video   string
	Stopped bool
	Err     error
}

// MainController owns the timelapse form, the camera settings and the single
// run. All state changes are serialized by mu, including timer firings. Which
// of run, preview and snapshot holds the camera is tracked by fsm.
type MainController struct {
	driver       camera.Driver
	imageService *services.ImageService
	videoService *services.VideoService
	clock        scheduler.Clock
	log          logger.Logger

	mu       sync.Mutex
	form     *models.TimelapseForm
	settings models.CameraSettings
	output   models.OutputSettings
	fsm      *fsm.FSM
	run      models.RunState
	timer    scheduler.Timer
	// generation invalidates timer callbacks armed by an earlier run or
	// preview
	generation uint64

	previewDuration time.Duration
	previewTimer    scheduler.Timer

	view     View
	onFinish func(RunResult)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMainController creates a controller. videoService may be nil when no
// encoder is available; runs then never assemble a video.
func NewMainController(
	driver camera.Driver,
	imageService *services.ImageService,
	videoService *services.VideoService,
	settings models.CameraSettings,
	output models.OutputSettings,
	log logger.Logger,
) *MainController {
	ctx, cancel := context.WithCancel(context.Background())
	mc := &MainController{
		driver:          driver,
		imageService:    imageService,
		videoService:    videoService,
		clock:           scheduler.System(),
		log:             log,
		form:            models.NewTimelapseForm(),
		settings:        settings,
		output:          output,
		previewDuration: DefaultPreviewDuration,
		view:            nopView{},
		ctx:             ctx,
		cancel:          cancel,
	}
	mc.fsm = newLifecycleFSM(mc.enterPhase)
	return mc
}

var _ views.Handler = (*MainController)(nil)

// SetClock replaces the system clock; used by tests
func (mc *MainController) SetClock(clock scheduler.Clock) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.clock = clock
}

// SetPreviewDuration sets how long Preview runs
func (mc *MainController) SetPreviewDuration(d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if d > 0 {
		mc.previewDuration = d
	}
}

// SetRunFinishedHandler registers a callback invoked once per run when it
// completes, is stopped or fails
func (mc *MainController) SetRunFinishedHandler(handler func(RunResult)) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.onFinish = handler
}

// SetMainView associates the view with this controller and pushes the
// current state into it
func (mc *MainController) SetMainView(view View) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if view == nil {
		view = nopView{}
	}
	mc.view = view
	view.SetHandler(mc)
	view.SetImageCount(mc.form.Count)
	view.SetTotalTime(mc.form.Total)
	view.SetISOSelectorEnabled(!mc.settings.AutoISO)
	view.SetShutterSelectorEnabled(!mc.settings.AutoShutter)
	view.SetPhase(mc.phaseLocked())
	view.UpdateStatus("Ready")
}

// ApplyCameraSettings sends resolution, ISO and shutter speed to the driver
func (mc *MainController) ApplyCameraSettings() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	res := mc.settings.Resolution
	if err := mc.driver.SetResolution(res.Width, res.Height); err != nil {
		return fmt.Errorf("failed to set resolution: %w", err)
	}
	if err := mc.applyISOLocked(); err != nil {
		return err
	}
	return mc.applyShutterLocked()
}

// Form returns a copy of the timelapse form
func (mc *MainController) Form() models.TimelapseForm {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return *mc.form
}

// CameraSettings returns the current camera settings
func (mc *MainController) CameraSettings() models.CameraSettings {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.settings
}

// Output returns the output settings the next run uses
func (mc *MainController) Output() models.OutputSettings {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.output
}

// State returns a copy of the record of the current or last run
func (mc *MainController) State() models.RunState {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.run
}

// Interval and total time

// SetInterval handles an edit of the interval fields
func (mc *MainController) SetInterval(hours, minutes, seconds string) {
	hms, err := parseHMS(hours, minutes, seconds)
	if err != nil {
		mc.rejectInput("interval", err)
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.form.SetInterval(hms)
	mc.view.SetImageCount(mc.form.Count)
}

// SetTotal handles an edit of the total time fields
func (mc *MainController) SetTotal(hours, minutes, seconds string) {
	hms, err := parseHMS(hours, minutes, seconds)
	if err != nil {
		mc.rejectInput("total time", err)
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.form.SetTotal(hms)
	mc.view.SetImageCount(mc.form.Count)
}

// SetImageCountText handles a submitted image number entry
func (mc *MainController) SetImageCountText(text string) {
	count, err := models.ParseImageCount(text)
	if err != nil {
		mc.rejectInput("image number", err)
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.form.SetImageCount(count)
	mc.view.SetTotalTime(mc.form.Total)
}

func parseHMS(hours, minutes, seconds string) (models.HMS, error) {
	var hms models.HMS
	var err error
	if hms.Hours, err = models.ParseHMSField(hours); err != nil {
		return models.HMS{}, err
	}
	if hms.Minutes, err = models.ParseHMSField(minutes); err != nil {
		return models.HMS{}, err
	}
	if hms.Seconds, err = models.ParseHMSField(seconds); err != nil {
		return models.HMS{}, err
	}
	return hms, nil
}

func (mc *MainController) rejectInput(field string, err error) {
	mc.log.Warning("MainController", "input rejected", map[string]interface{}{
		"field": field,
		"error": err.Error(),
	})

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.view.UpdateStatus(fmt.Sprintf("Invalid %s", field))
}

// Camera settings

// SetISOAuto toggles automatic ISO. Auto sends 0 and disables the selector;
// manual re-sends the selected value and enables it.
func (mc *MainController) SetISOAuto(auto bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.settings.AutoISO = auto
	mc.view.SetISOSelectorEnabled(!auto)
	if err := mc.applyISOLocked(); err != nil {
		mc.handleErrorLocked("ISO change failed", err)
	}
}

// SelectISO handles a pick from the ISO selector
func (mc *MainController) SelectISO(label string) {
	iso, err := strconv.Atoi(strings.TrimSpace(label))
	if err == nil {
		err = models.ValidateISO(iso)
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if err != nil {
		mc.handleErrorLocked("ISO change failed", err)
		return
	}
	mc.settings.ISO = iso
	if err := mc.applyISOLocked(); err != nil {
		mc.handleErrorLocked("ISO change failed", err)
	}
}

// SetShutterAuto toggles automatic shutter speed
func (mc *MainController) SetShutterAuto(auto bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.settings.AutoShutter = auto
	mc.view.SetShutterSelectorEnabled(!auto)
	if err := mc.applyShutterLocked(); err != nil {
		mc.handleErrorLocked("Shutter change failed", err)
	}
}

// SelectShutter handles a pick from the shutter speed selector
func (mc *MainController) SelectShutter(fraction string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if _, err := models.ShutterMicros(fraction); err != nil {
		mc.handleErrorLocked("Shutter change failed", err)
		return
	}
	mc.settings.Shutter = fraction
	if err := mc.applyShutterLocked(); err != nil {
		mc.handleErrorLocked("Shutter change failed", err)
	}
}

// SelectResolution handles a pick from the resolution selector
func (mc *MainController) SelectResolution(label string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	res, err := models.ParseResolution(label)
	if err != nil {
		mc.handleErrorLocked("Resolution change failed", err)
		return
	}
	if err := mc.driver.SetResolution(res.Width, res.Height); err != nil {
		mc.handleErrorLocked("Resolution change failed", err)
		return
	}
	mc.settings.Resolution = res
	mc.log.Info("MainController", "resolution changed", map[string]interface{}{"resolution": res.String()})
}

func (mc *MainController) applyISOLocked() error {
	iso := mc.settings.EffectiveISO()
	if err := mc.driver.SetISO(iso); err != nil {
		return fmt.Errorf("failed to set iso %d: %w", iso, err)
	}
	mc.log.Debug("MainController", "iso applied", map[string]interface{}{"iso": iso})
	return nil
}

func (mc *MainController) applyShutterLocked() error {
	micros, err := mc.settings.EffectiveShutterMicros()
	if err != nil {
		return err
	}
	if err := mc.driver.SetShutterSpeed(micros); err != nil {
		return fmt.Errorf("failed to set shutter speed %dµs: %w", micros, err)
	}
	mc.log.Debug("MainController", "shutter applied", map[string]interface{}{"micros": micros})
	return nil
}

// Output settings. Changes apply to the next run.

// SetPrefix sets the frame file name prefix
func (mc *MainController) SetPrefix(prefix string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.output.Prefix = prefix
}

// SetDirectory sets the output directory; empty means the working directory
func (mc *MainController) SetDirectory(dir string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.output.Directory = dir
	mc.view.UpdateStatus(fmt.Sprintf("Output directory: %s", displayDir(dir)))
}

// SetMakeVideo toggles post-run video assembly
func (mc *MainController) SetMakeVideo(enabled bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.output.MakeVideo = enabled
}

func displayDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
