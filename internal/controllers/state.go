package controllers

import (
	"context"

	"github.com/looplab/fsm"

	"bair-timelapse/internal/models"
)

// Lifecycle events. A run, a preview and a snapshot all claim the camera,
// so each may only begin from idle.
const (
	eventStart        = "start"
	eventStop         = "stop"
	eventFail         = "fail"
	eventComplete     = "complete"
	eventAssemble     = "assemble"
	eventAssembled    = "assembled"
	eventPreview      = "preview"
	eventPreviewDone  = "preview_done"
	eventSnapshot     = "snapshot"
	eventSnapshotDone = "snapshot_done"
)

func newLifecycleFSM(onEnter func(from, to models.RunPhase, event string)) *fsm.FSM {
	var (
		idle         = string(models.Idle)
		previewing   = string(models.Previewing)
		snapshotting = string(models.Snapshotting)
		running      = string(models.Running)
		assembling   = string(models.Assembling)
	)

	return fsm.NewFSM(
		idle,
		fsm.Events{
			{Name: eventStart, Src: []string{idle}, Dst: running},
			{Name: eventStop, Src: []string{running}, Dst: idle},
			{Name: eventFail, Src: []string{running}, Dst: idle},
			{Name: eventComplete, Src: []string{running}, Dst: idle},
			{Name: eventAssemble, Src: []string{running}, Dst: assembling},
			{Name: eventAssembled, Src: []string{assembling}, Dst: idle},
			{Name: eventPreview, Src: []string{idle}, Dst: previewing},
			{Name: eventPreviewDone, Src: []string{previewing}, Dst: idle},
			{Name: eventSnapshot, Src: []string{idle}, Dst: snapshotting},
			{Name: eventSnapshotDone, Src: []string{snapshotting}, Dst: idle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				onEnter(models.RunPhase(e.Src), models.RunPhase(e.Dst), e.Event)
			},
		},
	)
}

// Phase returns the current lifecycle state
func (mc *MainController) Phase() models.RunPhase {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	return mc.phaseLocked()
}

func (mc *MainController) phaseLocked() models.RunPhase {
	return models.RunPhase(mc.fsm.Current())
}

// transitionLocked fires event and logs a refused transition. Callers check
// fsm.Can first when a refusal needs a user-facing error.
func (mc *MainController) transitionLocked(event string) bool {
	if err := mc.fsm.Event(context.Background(), event); err != nil {
		mc.log.Warning("MainController", "transition refused", map[string]interface{}{
			"event": event,
			"state": mc.fsm.Current(),
			"error": err.Error(),
		})
		return false
	}
	return true
}

// enterPhase runs inside fsm.Event, with mu held by the caller
func (mc *MainController) enterPhase(from, to models.RunPhase, event string) {
	mc.log.Debug("MainController", "phase changed", map[string]interface{}{
		"from":  from.String(),
		"to":    to.String(),
		"event": event,
	})
	mc.view.SetPhase(to)
}
