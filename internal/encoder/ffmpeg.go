package encoder

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"bair-timelapse/internal/logger"
)

const (
	gopSize = "5"
	crf     = "25"
)

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// FFmpeg encodes H.264 MP4 through an external ffmpeg process
type FFmpeg struct {
	path string
	log  logger.Logger
	run  runFunc
}

// NewFFmpeg creates an encoder invoking the ffmpeg binary at path
func NewFFmpeg(path string, log logger.Logger) *FFmpeg {
	if path == "" {
		path = "ffmpeg"
	}
	return &FFmpeg{path: path, log: log, run: execRun}
}

func (f *FFmpeg) Name() string {
	return "ffmpeg"
}

// Args returns the ffmpeg command line for job
func (f *FFmpeg) Args(job Job) []string {
	return []string{
		"-y",
		"-r", strconv.Itoa(job.FrameRate),
		"-i", job.Output.FramePattern(),
		"-g", gopSize,
		"-vcodec", "libx264",
		"-crf", crf,
		"-pix_fmt", "yuv420p",
		job.Output.VideoPath(),
	}
}

// Encode runs ffmpeg to completion
func (f *FFmpeg) Encode(ctx context.Context, job Job) error {
	args := f.Args(job)
	start := time.Now()

	f.log.Info("Encoder", "assembling video", map[string]interface{}{
		"command": f.path,
		"args":    strings.Join(args, " "),
	})

	out, err := f.run(ctx, f.path, args...)
	if err != nil {
		f.log.Error("Encoder", err, map[string]interface{}{
			"output": lastLines(string(out), 5),
		})
		return fmt.Errorf("ffmpeg failed: %w", err)
	}

	f.log.Info("Encoder", "video assembled", map[string]interface{}{
		"video":    job.Output.VideoPath(),
		"duration": time.Since(start).String(),
	})
	return nil
}

// lastLines keeps the tail of ffmpeg's banner-heavy output
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
