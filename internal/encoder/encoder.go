// Package encoder assembles the numbered frames of a finished run into a
// video file.
package encoder

import (
	"context"
	"fmt"

	"bair-timelapse/internal/config"
	"bair-timelapse/internal/logger"
	"bair-timelapse/internal/models"
)

// Job describes one assembly: the frame sequence and where the video goes
type Job struct {
	Output    models.OutputSettings
	FrameRate int
}

// Encoder turns the frames named by a Job into a video
type Encoder interface {
	Encode(ctx context.Context, job Job) error
	Name() string
}

// New creates the encoder selected by cfg
func New(cfg config.EncoderConfig, log logger.Logger) (Encoder, error) {
	switch cfg.Name {
	case config.EncoderFFmpeg:
		return NewFFmpeg(cfg.FFmpegPath, log), nil
	case config.EncoderOpenCV:
		return NewOpenCV(log), nil
	default:
		return nil, fmt.Errorf("unknown encoder %q", cfg.Name)
	}
}
