package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"bair-timelapse/internal/encoder"
	"bair-timelapse/internal/logger"
	"bair-timelapse/internal/models"
)

// VideoService assembles the frames of a finished run into a video
type VideoService struct {
	encoder   encoder.Encoder
	frameRate int
	log       logger.Logger
}

func NewVideoService(enc encoder.Encoder, frameRate int, log logger.Logger) *VideoService {
	return &VideoService{encoder: enc, frameRate: frameRate, log: log}
}

// Assemble encodes output's frame sequence and returns the video path
func (vs *VideoService) Assemble(ctx context.Context, output models.OutputSettings) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	if _, err := os.Stat(output.FramePath(0)); err != nil {
		return "", fmt.Errorf("first frame missing: %w", err)
	}

	start := time.Now()
	job := encoder.Job{Output: output, FrameRate: vs.frameRate}
	if err := vs.encoder.Encode(ctx, job); err != nil {
		return "", fmt.Errorf("%s encoding failed: %w", vs.encoder.Name(), err)
	}

	vs.log.Info("VideoService", "video ready", map[string]interface{}{
		"path":     output.VideoPath(),
		"encoder":  vs.encoder.Name(),
		"duration": time.Since(start).String(),
	})
	return output.VideoPath(), nil
}
