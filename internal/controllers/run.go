package controllers

import (
	"fmt"

	"bair-timelapse/internal/models"
)

// Start begins a timelapse run from the current form. The first frame is
// captured immediately. A running preview is closed first; an in-flight
// snapshot refuses the start with ErrCameraBusy. Start while a run is
// active is a no-op.
func (mc *MainController) Start() {
	mc.mu.Lock()

	switch mc.phaseLocked() {
	case models.Running, models.Assembling:
		mc.mu.Unlock()
		return
	case models.Previewing:
		mc.endPreviewLocked()
	}

	if !mc.fsm.Can(eventStart) {
		mc.handleErrorLocked("Cannot start", ErrCameraBusy)
		mc.mu.Unlock()
		return
	}

	plan := mc.form.Plan()
	if plan.NumImages == 0 {
		mc.handleErrorLocked("Cannot start", ErrNothingToCapture)
		mc.mu.Unlock()
		return
	}

	mc.generation++
	mc.run = models.NewRun(mc.clock.Now(), plan, mc.output)
	mc.imageService.ResetFrames()
	mc.transitionLocked(eventStart)

	mc.log.Info("MainController", "run started", map[string]interface{}{
		"interval":  plan.Interval.String(),
		"total":     plan.Total.String(),
		"images":    plan.NumImages,
		"directory": displayDir(mc.output.Directory),
		"prefix":    mc.output.Prefix,
	})
	mc.view.UpdateProgress(0, plan.NumImages)
	mc.view.UpdateStatus(fmt.Sprintf("Running: 0 of %d", plan.NumImages))

	result := mc.captureLocked(mc.generation)
	mc.mu.Unlock()

	mc.notify(result)
}

// Stop cancels a running timelapse. It does nothing when idle or while the
// video is being assembled.
func (mc *MainController) Stop() {
	mc.mu.Lock()

	if !mc.fsm.Can(eventStop) {
		mc.mu.Unlock()
		return
	}

	mc.generation++
	if mc.timer != nil {
		mc.timer.Stop()
		mc.timer = nil
	}
	mc.transitionLocked(eventStop)

	done, planned := mc.run.Progress()
	mc.log.Info("MainController", "run stopped", map[string]interface{}{
		"captured": done,
		"planned":  planned,
	})
	mc.view.UpdateStatus(fmt.Sprintf("Stopped after %d of %d", done, planned))
	mc.mu.Unlock()

	mc.notify(&RunResult{Frames: done, Planned: planned, Stopped: true})
}

// fire is the timer callback for the run with the given generation
func (mc *MainController) fire(generation uint64) {
	mc.mu.Lock()
	if generation != mc.generation || mc.phaseLocked() != models.Running {
		mc.mu.Unlock()
		return
	}
	mc.timer = nil
	result := mc.captureLocked(generation)
	mc.mu.Unlock()

	mc.notify(result)
}

// captureLocked takes the current frame, advances the run and re-arms the
// timer. It returns a result when the run ended without video assembly.
func (mc *MainController) captureLocked(generation uint64) *RunResult {
	current := mc.run
	path := current.CurrentFramePath()

	if _, err := mc.imageService.CaptureFrame(mc.ctx, path, current.Counter); err != nil {
		mc.transitionLocked(eventFail)
		mc.handleErrorLocked("Capture failed", err)
		mc.view.UpdateStatus(fmt.Sprintf("Capture failed after %d of %d", current.Counter, current.NumImages))
		return &RunResult{Frames: current.Counter, Planned: current.NumImages, Err: err}
	}

	mc.showFrameLocked(path)

	next, wait := current.Advance(mc.clock.Now())
	mc.run = next
	mc.view.UpdateProgress(next.Counter, next.NumImages)

	if next.Finished() {
		return mc.completeLocked(next, generation)
	}

	mc.view.UpdateStatus(mc.progressStatusLocked(next))
	mc.timer = mc.clock.AfterFunc(wait, func() { mc.fire(generation) })
	return nil
}

// progressStatusLocked names the run position and the last frame written
func (mc *MainController) progressStatusLocked(run models.RunState) string {
	status := fmt.Sprintf("Running: %d of %d", run.Counter, run.NumImages)
	if last, ok := mc.imageService.LastFrame(); ok {
		status += ", last " + last.String()
	}
	return status
}

func (mc *MainController) showFrameLocked(path string) {
	thumb, err := mc.imageService.LoadThumbnail(path)
	if err != nil {
		mc.log.Debug("MainController", "thumbnail unavailable", map[string]interface{}{"error": err.Error()})
		return
	}
	mc.view.SetThumbnail(thumb)
}

// completeLocked ends a run whose last frame was captured. With video
// enabled it moves to Assembling and hands off to a goroutine.
func (mc *MainController) completeLocked(run models.RunState, generation uint64) *RunResult {
	frames := run.Counter
	mc.log.Info("MainController", "run complete", map[string]interface{}{
		"frames":   frames,
		"recorded": mc.imageService.FramesCaptured(),
	})

	if !run.Output.MakeVideo || mc.videoService == nil {
		mc.transitionLocked(eventComplete)
		mc.view.UpdateStatus(fmt.Sprintf("Done: %d images", frames))
		return &RunResult{Frames: frames, Planned: run.NumImages}
	}

	mc.transitionLocked(eventAssemble)
	mc.view.UpdateStatus("Assembling video")

	mc.wg.Add(1)
	go mc.assemble(run.Output, frames, run.NumImages, generation)
	return nil
}

func (mc *MainController) assemble(output models.OutputSettings, frames, planned int, generation uint64) {
	defer mc.wg.Done()

	video, err := mc.videoService.Assemble(mc.ctx, output)

	mc.mu.Lock()
	if generation == mc.generation {
		mc.transitionLocked(eventAssembled)
	}
	if err != nil {
		mc.handleErrorLocked("Video assembly failed", err)
		mc.view.UpdateStatus(fmt.Sprintf("Done: %d images, video failed", frames))
	} else {
		mc.view.UpdateStatus(fmt.Sprintf("Done: %d images, video %s", frames, video))
	}
	mc.mu.Unlock()

	mc.notify(&RunResult{Frames: frames, Planned: planned, Video: video, Err: err})
}

func (mc *MainController) notify(result *RunResult) {
	if result == nil {
		return
	}
	mc.mu.Lock()
	handler := mc.onFinish
	mc.mu.Unlock()

	if handler != nil {
		handler(*result)
	}
}
