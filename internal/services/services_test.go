package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bair-timelapse/internal/camera"
	"bair-timelapse/internal/encoder"
	"bair-timelapse/internal/logger"
	"bair-timelapse/internal/models"
)

type nopWriteCloser struct {
	*bytes.Buffer
	closed bool
}

func (w *nopWriteCloser) Close() error {
	w.closed = true
	return nil
}

func newImageService(t *testing.T) (*ImageService, *camera.FakeDriver, *models.ImageRepository) {
	t.Helper()
	driver := camera.NewFakeDriver()
	driver.WriteFiles = true
	require.NoError(t, driver.SetResolution(64, 48))
	repo := models.NewImageRepository()
	return NewImageService(driver, repo, 90, logger.Nop()), driver, repo
}

func TestCaptureFrame_CreatesDirectory(t *testing.T) {
	svc, driver, repo := newImageService(t)
	path := filepath.Join(t.TempDir(), "nested", "run", "image_0000.jpg")

	info, err := svc.CaptureFrame(context.Background(), path, 0)
	require.NoError(t, err)

	assert.Equal(t, path, info.Path)
	assert.Equal(t, 0, info.Index)
	assert.Positive(t, info.Size)
	assert.False(t, info.HasExif())
	assert.Equal(t, []string{path}, driver.CapturedPaths())

	last, ok := repo.LastFrame()
	require.True(t, ok)
	assert.Equal(t, info, last)
	assert.Equal(t, 1, repo.FrameCount())
}

func TestImageService_ResetFrames(t *testing.T) {
	svc, _, _ := newImageService(t)
	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		_, err := svc.CaptureFrame(context.Background(), filepath.Join(dir, fmt.Sprintf("a_%04d.jpg", i)), i)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, svc.FramesCaptured())

	svc.ResetFrames()
	_, ok := svc.LastFrame()
	assert.False(t, ok)
	assert.Zero(t, svc.FramesCaptured())
}

func TestCaptureFrame_DriverError(t *testing.T) {
	svc, driver, repo := newImageService(t)
	driver.FailNextCapture(errors.New("sensor timeout"))

	_, err := svc.CaptureFrame(context.Background(), filepath.Join(t.TempDir(), "image_0000.jpg"), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image_0000.jpg")
	assert.Equal(t, 0, repo.FrameCount())
}

func TestCaptureFrame_CanceledContext(t *testing.T) {
	svc, driver, _ := newImageService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CaptureFrame(ctx, filepath.Join(t.TempDir(), "a.jpg"), 0)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, driver.CaptureCount())
}

func TestSnapshotAndSave(t *testing.T) {
	svc, _, repo := newImageService(t)

	data, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 64, data.Width)
	assert.Same(t, data, repo.Snapshot())

	w := &nopWriteCloser{Buffer: &bytes.Buffer{}}
	require.NoError(t, svc.SaveSnapshot(w))
	assert.True(t, w.closed)

	img, err := imaging.Decode(bytes.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), img.Bounds())
}

func TestSaveSnapshot_NothingCaptured(t *testing.T) {
	svc, _, _ := newImageService(t)
	w := &nopWriteCloser{Buffer: &bytes.Buffer{}}

	assert.Error(t, svc.SaveSnapshot(w))
	assert.True(t, w.closed)
}

func TestThumbnail_FitsBounds(t *testing.T) {
	svc, _, _ := newImageService(t)
	src := imaging.New(1296, 972, image.White.C)

	thumb := svc.Thumbnail(src)
	assert.Equal(t, ThumbnailSize, thumb.Bounds().Dx())
	assert.Equal(t, 240, thumb.Bounds().Dy())
}

func TestLoadThumbnail(t *testing.T) {
	svc, _, _ := newImageService(t)
	path := filepath.Join(t.TempDir(), "image_0000.jpg")
	_, err := svc.CaptureFrame(context.Background(), path, 0)
	require.NoError(t, err)

	thumb, err := svc.LoadThumbnail(path)
	require.NoError(t, err)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), ThumbnailSize)

	_, err = svc.LoadThumbnail(filepath.Join(t.TempDir(), "missing.jpg"))
	assert.Error(t, err)
}

type recordingEncoder struct {
	jobs []encoder.Job
	err  error
}

func (r *recordingEncoder) Encode(_ context.Context, job encoder.Job) error {
	r.jobs = append(r.jobs, job)
	return r.err
}

func (r *recordingEncoder) Name() string { return "recording" }

func TestAssemble(t *testing.T) {
	svc, _, _ := newImageService(t)
	output := models.OutputSettings{Directory: t.TempDir(), Prefix: "image_"}
	_, err := svc.CaptureFrame(context.Background(), output.FramePath(0), 0)
	require.NoError(t, err)

	enc := &recordingEncoder{}
	video := NewVideoService(enc, 25, logger.Nop())

	path, err := video.Assemble(context.Background(), output)
	require.NoError(t, err)
	assert.Equal(t, output.VideoPath(), path)
	require.Len(t, enc.jobs, 1)
	assert.Equal(t, encoder.Job{Output: output, FrameRate: 25}, enc.jobs[0])
}

func TestAssemble_NoFrames(t *testing.T) {
	enc := &recordingEncoder{}
	video := NewVideoService(enc, 25, logger.Nop())

	_, err := video.Assemble(context.Background(), models.OutputSettings{Directory: t.TempDir(), Prefix: "image_"})
	assert.Error(t, err)
	assert.Empty(t, enc.jobs)
}

func TestAssemble_EncoderError(t *testing.T) {
	svc, _, _ := newImageService(t)
	output := models.OutputSettings{Directory: t.TempDir(), Prefix: "x_"}
	_, err := svc.CaptureFrame(context.Background(), output.FramePath(0), 0)
	require.NoError(t, err)

	boom := errors.New("exit status 1")
	video := NewVideoService(&recordingEncoder{err: boom}, 25, logger.Nop())

	_, err = video.Assemble(context.Background(), output)
	assert.ErrorIs(t, err, boom)
}
