package encoder

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bair-timelapse/internal/config"
	"bair-timelapse/internal/logger"
	"bair-timelapse/internal/models"
)

func testJob() Job {
	return Job{
		Output:    models.OutputSettings{Directory: "/data/run", Prefix: "image_"},
		FrameRate: 25,
	}
}

func TestFFmpeg_Args(t *testing.T) {
	f := NewFFmpeg("", logger.Nop())

	want := []string{
		"-y",
		"-r", "25",
		"-i", filepath.Join("/data/run", "image_%04d.jpg"),
		"-g", "5",
		"-vcodec", "libx264",
		"-crf", "25",
		"-pix_fmt", "yuv420p",
		filepath.Join("/data/run", "image_video.mp4"),
	}
	assert.Equal(t, want, f.Args(testJob()))
}

func TestFFmpeg_Encode(t *testing.T) {
	var gotName string
	var gotArgs []string

	f := NewFFmpeg("/opt/ffmpeg/bin/ffmpeg", logger.Nop())
	f.run = func(_ context.Context, name string, args ...string) ([]byte, error) {
		gotName, gotArgs = name, args
		return []byte("frame=  3 fps=0.0"), nil
	}

	require.NoError(t, f.Encode(context.Background(), testJob()))
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", gotName)
	assert.Equal(t, f.Args(testJob()), gotArgs)
}

func TestFFmpeg_EncodeFailure(t *testing.T) {
	exitErr := errors.New("exit status 1")
	f := NewFFmpeg("", logger.Nop())
	f.run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("image_%04d.jpg: No such file or directory"), exitErr
	}

	err := f.Encode(context.Background(), testJob())
	assert.ErrorIs(t, err, exitErr)
}

func TestLastLines(t *testing.T) {
	assert.Equal(t, "c\nd", lastLines("a\nb\nc\nd\n", 2))
	assert.Equal(t, "a", lastLines("a", 5))
}

func TestNew(t *testing.T) {
	enc, err := New(config.EncoderConfig{Name: config.EncoderFFmpeg}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "ffmpeg", enc.Name())

	enc, err = New(config.EncoderConfig{Name: config.EncoderOpenCV}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, "opencv", enc.Name())

	_, err = New(config.EncoderConfig{Name: "gstreamer"}, logger.Nop())
	assert.Error(t, err)
}

func TestOpenCV_NoFrames(t *testing.T) {
	o := NewOpenCV(logger.Nop())
	job := Job{
		Output:    models.OutputSettings{Directory: t.TempDir(), Prefix: "image_"},
		FrameRate: 25,
	}
	assert.ErrorIs(t, o.Encode(context.Background(), job), ErrNoFrames)
}
