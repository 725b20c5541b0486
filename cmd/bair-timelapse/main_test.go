package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bair-timelapse/internal/controllers"
	"bair-timelapse/internal/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("BAIR_CONFIG", "")
	t.Setenv("BAIR_CAMERA_BACKEND", "fake")
	t.Setenv("BAIR_RESOLUTION", "640x480")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "error"))

	err := cmd.Execute()
	return out.String(), err
}

func TestPlan_ByTotal(t *testing.T) {
	out, err := execute(t, "plan", "--interval", "10s", "--total", "1m")

	require.NoError(t, err)
	assert.Contains(t, out, "interval    0:00:10")
	assert.Contains(t, out, "total time  0:01:00")
	assert.Contains(t, out, "images      7")
	assert.Contains(t, out, "video       0.3s at 25 fps")
}

func TestPlan_ByCount(t *testing.T) {
	out, err := execute(t, "plan", "--interval", "30s", "--count", "121")

	require.NoError(t, err)
	assert.Contains(t, out, "total time  1:00:00")
	assert.Contains(t, out, "images      121")
}

func TestPlan_RejectsShortInterval(t *testing.T) {
	_, err := execute(t, "plan", "--interval", "500ms", "--total", "1m")
	assert.Error(t, err)
}

func TestPlan_TotalAndCountExclusive(t *testing.T) {
	_, err := execute(t, "plan", "--interval", "1s", "--total", "1m", "--count", "3")
	assert.Error(t, err)
}

func TestRun_Headless(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "run", "--interval", "1s", "--count", "2", "--dir", dir, "--prefix", "garden_", "--video=false")

	require.NoError(t, err)
	assert.Contains(t, out, "Done: 2 images")
	assert.Contains(t, out, "captured 2 of 2 frames")
	assert.FileExists(t, filepath.Join(dir, "garden_0000.jpg"))
	assert.FileExists(t, filepath.Join(dir, "garden_0001.jpg"))

	_, err = os.Stat(filepath.Join(dir, "garden_0002.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_NothingToCapture(t *testing.T) {
	_, err := execute(t, "run", "--interval", "10s", "--count", "0", "--dir", t.TempDir())
	assert.ErrorIs(t, err, controllers.ErrNothingToCapture)
}

func TestSummarize(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, summarize(&out, controllers.RunResult{Frames: 3, Planned: 7, Stopped: true}))
	require.NoError(t, summarize(&out, controllers.RunResult{Frames: 7, Planned: 7, Video: "image_.mp4"}))

	failure := errors.New("camera unplugged")
	err := summarize(&out, controllers.RunResult{Frames: 1, Planned: 7, Err: failure})

	assert.ErrorIs(t, err, failure)
	assert.Equal(t, "stopped after 3 of 7 frames\n"+
		"captured 7 frames, video image_.mp4\n"+
		"captured 1 of 7 frames\n", out.String())
}

func TestConsoleView_SkipsRepeatedStatus(t *testing.T) {
	var out bytes.Buffer
	view := newConsoleView(&out)

	view.UpdateStatus("Running: 1 of 3")
	view.UpdateStatus("Running: 1 of 3")
	view.UpdateStatus("Running: 2 of 3")
	view.SetPhase(models.Idle)

	assert.Equal(t, "Running: 1 of 3\nRunning: 2 of 3\n", out.String())
}
