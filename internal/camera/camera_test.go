package camera

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bair-timelapse/internal/config"
	"bair-timelapse/internal/logger"
)

type recordedRun struct {
	name string
	args []string
}

func stubRun(calls *[]recordedRun, out []byte, err error) runFunc {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, recordedRun{name: name, args: args})
		return out, err
	}
}

func TestRpicamDriver_StillArgs(t *testing.T) {
	d := NewRpicamDriver("", "", logger.Nop())

	assert.Equal(t, []string{"--nopreview", "--immediate", "--output", "a.jpg"}, d.stillArgs("a.jpg"))

	require.NoError(t, d.SetResolution(1296, 972))
	require.NoError(t, d.SetISO(320))
	require.NoError(t, d.SetShutterSpeed(8000))

	assert.Equal(t, []string{
		"--nopreview", "--immediate",
		"--width", "1296", "--height", "972",
		"--gain", "3.2",
		"--shutter", "8000",
		"--output", "b.jpg",
	}, d.stillArgs("b.jpg"))
}

func TestRpicamDriver_AutoOmitsExposure(t *testing.T) {
	d := NewRpicamDriver("", "", logger.Nop())
	require.NoError(t, d.SetISO(800))
	require.NoError(t, d.SetShutterSpeed(1000000))
	require.NoError(t, d.SetISO(0))
	require.NoError(t, d.SetShutterSpeed(0))

	assert.Equal(t, []string{"--timeout", "0"}, d.previewArgs())
}

func TestRpicamDriver_CaptureFile(t *testing.T) {
	var calls []recordedRun
	d := NewRpicamDriver("/usr/bin/rpicam-still", "", logger.Nop())
	d.run = stubRun(&calls, nil, nil)

	require.NoError(t, d.CaptureFile(context.Background(), "/tmp/image_0000.jpg"))

	require.Len(t, calls, 1)
	assert.Equal(t, "/usr/bin/rpicam-still", calls[0].name)
	assert.Equal(t, "/tmp/image_0000.jpg", calls[0].args[len(calls[0].args)-1])
}

func TestRpicamDriver_CaptureFileError(t *testing.T) {
	var calls []recordedRun
	exitErr := errors.New("exit status 255")
	d := NewRpicamDriver("", "", logger.Nop())
	d.run = stubRun(&calls, []byte("ERROR: no cameras available\n"), exitErr)

	err := d.CaptureFile(context.Background(), "x.jpg")

	require.Error(t, err)
	assert.ErrorIs(t, err, exitErr)
	assert.Contains(t, err.Error(), "no cameras available")
	assert.Contains(t, err.Error(), "rpicam-still")
}

func TestRpicamDriver_StopWithoutPreview(t *testing.T) {
	d := NewRpicamDriver("", "", logger.Nop())
	assert.ErrorIs(t, d.StopPreview(), ErrPreviewInactive)
	assert.NoError(t, d.Close())
}

func TestFakeDriver_RecordsSettings(t *testing.T) {
	f := NewFakeDriver()

	_, ok := f.LastISO()
	assert.False(t, ok)

	require.NoError(t, f.SetISO(0))
	require.NoError(t, f.SetISO(400))
	require.NoError(t, f.SetShutterSpeed(4000))

	iso, ok := f.LastISO()
	require.True(t, ok)
	assert.Equal(t, 400, iso)
	assert.Equal(t, []int{0, 400}, f.ISOCalls)

	shutter, ok := f.LastShutter()
	require.True(t, ok)
	assert.Equal(t, 4000, shutter)
}

func TestFakeDriver_CaptureWritesJPEG(t *testing.T) {
	f := NewFakeDriver()
	f.WriteFiles = true
	require.NoError(t, f.SetResolution(64, 48))

	path := filepath.Join(t.TempDir(), "image_0000.jpg")
	require.NoError(t, f.CaptureFile(context.Background(), path))

	img, err := imaging.Open(path)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
	assert.Equal(t, []string{path}, f.CapturedPaths())
}

func TestFakeDriver_FailNextCapture(t *testing.T) {
	f := NewFakeDriver()
	boom := errors.New("sensor timeout")
	f.FailNextCapture(boom)

	assert.ErrorIs(t, f.CaptureFile(context.Background(), "a.jpg"), boom)
	assert.NoError(t, f.CaptureFile(context.Background(), "b.jpg"))
	assert.Equal(t, 1, f.CaptureCount())
}

func TestFakeDriver_CanceledContext(t *testing.T) {
	f := NewFakeDriver()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.CaptureImage(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFakeDriver_Preview(t *testing.T) {
	f := NewFakeDriver()

	require.NoError(t, f.StartPreview())
	assert.ErrorIs(t, f.StartPreview(), ErrPreviewActive)
	assert.True(t, f.IsPreviewing())

	require.NoError(t, f.StopPreview())
	assert.ErrorIs(t, f.StopPreview(), ErrPreviewInactive)
	assert.Equal(t, 1, f.PreviewStarts)
}

func TestFakeDriver_CountsCapturesDuringPreview(t *testing.T) {
	f := NewFakeDriver()
	ctx := context.Background()

	_, err := f.CaptureImage(ctx)
	require.NoError(t, err)
	require.NoError(t, f.StartPreview())
	_, err = f.CaptureImage(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, f.PreviewCaptures)
}

func TestFakeDriver_HoldImages(t *testing.T) {
	f := NewFakeDriver()
	f.HoldImages = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.CaptureImage(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	close(f.HoldImages)
	_, err = f.CaptureImage(context.Background())
	assert.NoError(t, err)
}

func TestOpen_FakeBackend(t *testing.T) {
	driver, err := Open(config.CameraConfig{Backend: config.BackendFake}, logger.Nop())
	require.NoError(t, err)

	fake, ok := driver.(*FakeDriver)
	require.True(t, ok)
	assert.True(t, fake.WriteFiles)

	path := filepath.Join(t.TempDir(), "frame.jpg")
	require.NoError(t, driver.CaptureFile(context.Background(), path))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(config.CameraConfig{Backend: "v4l"}, logger.Nop())
	assert.Error(t, err)
}
