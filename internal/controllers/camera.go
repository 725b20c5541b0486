package controllers

import (
	"context"
	"errors"
	"image"
	"io"

	"bair-timelapse/internal/camera"
	"bair-timelapse/internal/models"
	"bair-timelapse/internal/views"
)

// ErrCameraBusy is reported when the camera is claimed by a run or a
// snapshot
var ErrCameraBusy = errors.New("camera is busy")

// Preview opens the camera preview and closes it after the preview
// duration. It returns immediately. Preview while previewing is a no-op.
func (mc *MainController) Preview() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.phaseLocked() == models.Previewing {
		return
	}
	if !mc.fsm.Can(eventPreview) {
		mc.handleErrorLocked("Preview unavailable", ErrCameraBusy)
		return
	}

	if err := mc.driver.StartPreview(); err != nil {
		mc.handleErrorLocked("Preview failed", err)
		return
	}
	mc.transitionLocked(eventPreview)

	mc.generation++
	generation := mc.generation
	mc.view.UpdateStatus("Preview")
	mc.previewTimer = mc.clock.AfterFunc(mc.previewDuration, func() { mc.previewExpired(generation) })
	mc.log.Debug("MainController", "preview started", map[string]interface{}{
		"duration": mc.previewDuration.String(),
	})
}

func (mc *MainController) previewExpired(generation uint64) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if generation != mc.generation || mc.phaseLocked() != models.Previewing {
		return
	}
	mc.previewTimer = nil
	mc.endPreviewLocked()
	mc.view.UpdateStatus("Ready")
}

// endPreviewLocked closes the preview window and returns to idle
func (mc *MainController) endPreviewLocked() {
	if mc.previewTimer != nil {
		mc.previewTimer.Stop()
		mc.previewTimer = nil
	}
	if err := mc.driver.StopPreview(); err != nil && !errors.Is(err, camera.ErrPreviewInactive) {
		mc.handleErrorLocked("Preview failed", err)
	}
	mc.transitionLocked(eventPreviewDone)
}

// TakeSnapshot captures a single frame off the UI thread, shows it and asks
// the view where to save it. A running preview is closed first.
func (mc *MainController) TakeSnapshot() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.phaseLocked() == models.Previewing {
		mc.endPreviewLocked()
	}
	if !mc.fsm.Can(eventSnapshot) {
		mc.handleErrorLocked("Snapshot unavailable", ErrCameraBusy)
		return
	}
	mc.transitionLocked(eventSnapshot)

	mc.view.UpdateStatus("Taking snapshot...")
	mc.wg.Add(1)
	go mc.snapshot()
}

func (mc *MainController) snapshot() {
	defer mc.wg.Done()

	data, err := mc.imageService.Snapshot(mc.ctx)

	mc.mu.Lock()
	mc.transitionLocked(eventSnapshotDone)
	view := mc.view
	if err != nil {
		mc.handleErrorLocked("Snapshot failed", err)
		view.UpdateStatus("Snapshot failed")
		mc.mu.Unlock()
		return
	}
	view.SetThumbnail(mc.imageService.Thumbnail(data.Image))
	view.UpdateStatus("Snapshot taken")
	mc.mu.Unlock()

	view.ChooseSnapshotDestination(mc.saveSnapshot)
}

// saveSnapshot receives the destination picked in the save dialog. A nil
// writer means the dialog was cancelled.
func (mc *MainController) saveSnapshot(writer io.WriteCloser, err error) {
	if err != nil {
		mc.handleError("Snapshot save failed", err)
		return
	}
	if writer == nil {
		return
	}

	if err := mc.imageService.SaveSnapshot(writer); err != nil {
		mc.handleError("Snapshot save failed", err)
		return
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.view.UpdateStatus("Snapshot saved")
}

// Close stops any run and preview and waits for background work, bounded
// by ctx
func (mc *MainController) Close(ctx context.Context) error {
	mc.Stop()

	mc.mu.Lock()
	if mc.phaseLocked() == models.Previewing {
		mc.endPreviewLocked()
	}
	mc.mu.Unlock()

	mc.cancel()

	done := make(chan struct{})
	go func() {
		mc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until background snapshot and assembly work has finished
func (mc *MainController) Wait() {
	mc.wg.Wait()
}

func (mc *MainController) handleError(title string, err error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.handleErrorLocked(title, err)
}

func (mc *MainController) handleErrorLocked(title string, err error) {
	mc.log.Error("MainController", err, map[string]interface{}{"context": title})
	mc.view.ShowError(title, err)
}

// nopView discards updates until a real view is attached
type nopView struct{}

func (nopView) SetHandler(views.Handler)       {}
func (nopView) UpdateStatus(string)            {}
func (nopView) SetPhase(models.RunPhase)       {}
func (nopView) UpdateProgress(int, int)        {}
func (nopView) SetImageCount(int)              {}
func (nopView) SetTotalTime(models.HMS)        {}
func (nopView) SetISOSelectorEnabled(bool)     {}
func (nopView) SetShutterSelectorEnabled(bool) {}
func (nopView) SetThumbnail(image.Image)       {}
func (nopView) ShowError(string, error)        {}

func (nopView) ChooseSnapshotDestination(callback func(io.WriteCloser, error)) {
	callback(nil, nil)
}
