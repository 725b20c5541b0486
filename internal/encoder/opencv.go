package encoder

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gocv.io/x/gocv"

	"bair-timelapse/internal/logger"
	"bair-timelapse/internal/opencv/conversion"
)

// ErrNoFrames is returned when the sequence has no first frame
var ErrNoFrames = errors.New("no frames to assemble")

// OpenCV encodes through gocv's VideoWriter, for hosts without ffmpeg
type OpenCV struct {
	log logger.Logger
}

func NewOpenCV(log logger.Logger) *OpenCV {
	return &OpenCV{log: log}
}

func (o *OpenCV) Name() string {
	return "opencv"
}

// Encode reads frames from 0 until the first missing one and writes them
// with the avc1 codec
func (o *OpenCV) Encode(ctx context.Context, job Job) error {
	first := gocv.IMRead(job.Output.FramePath(0), gocv.IMReadColor)
	if first.Empty() {
		first.Close()
		return ErrNoFrames
	}
	if err := conversion.ValidateFrame(first, 0, 0, "VideoWriter"); err != nil {
		first.Close()
		return err
	}
	width, height := first.Cols(), first.Rows()

	writer, err := gocv.VideoWriterFile(job.Output.VideoPath(), "avc1",
		float64(job.FrameRate), width, height, true)
	if err != nil {
		first.Close()
		return fmt.Errorf("failed to open video writer: %w", err)
	}
	defer writer.Close()

	if err := writer.Write(first); err != nil {
		first.Close()
		return fmt.Errorf("failed to write frame 0: %w", err)
	}
	first.Close()

	frames := 1
	for ; ; frames++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := job.Output.FramePath(frames)
		if _, err := os.Stat(path); err != nil {
			break
		}

		mat := gocv.IMRead(path, gocv.IMReadColor)
		if err := conversion.ValidateFrame(mat, width, height, "VideoWriter"); err != nil {
			mat.Close()
			return fmt.Errorf("frame %s: %w", path, err)
		}
		err := writer.Write(mat)
		mat.Close()
		if err != nil {
			return fmt.Errorf("failed to write frame %d: %w", frames, err)
		}
	}

	o.log.Info("Encoder", "video assembled", map[string]interface{}{
		"video":  job.Output.VideoPath(),
		"frames": frames,
	})
	return nil
}
