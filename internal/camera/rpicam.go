package camera

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/disintegration/imaging"

	"bair-timelapse/internal/logger"
)

// runFunc executes a command to completion and returns its combined output
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// RpicamDriver drives a Raspberry Pi CSI camera through the libcamera
// rpicam-still and rpicam-hello tools, one process per capture.
type RpicamDriver struct {
	mu         sync.Mutex
	stillCmd   string
	previewCmd string
	width      int
	height     int
	iso        int
	shutter    int
	log        logger.Logger
	run        runFunc

	preview *exec.Cmd
}

// NewRpicamDriver creates a driver invoking the given still and preview tools
func NewRpicamDriver(stillCmd, previewCmd string, log logger.Logger) *RpicamDriver {
	if stillCmd == "" {
		stillCmd = "rpicam-still"
	}
	if previewCmd == "" {
		previewCmd = "rpicam-hello"
	}
	return &RpicamDriver{
		stillCmd:   stillCmd,
		previewCmd: previewCmd,
		log:        log,
		run:        execRun,
	}
}

func (d *RpicamDriver) SetResolution(width, height int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.width, d.height = width, height
	return nil
}

func (d *RpicamDriver) SetISO(iso int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.iso = iso
	return nil
}

func (d *RpicamDriver) SetShutterSpeed(micros int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.shutter = micros
	return nil
}

// exposureArgs renders the current settings; callers hold mu.
// libcamera has no ISO control, analogue gain 1.0 corresponds to ISO 100.
func (d *RpicamDriver) exposureArgs() []string {
	var args []string
	if d.width > 0 && d.height > 0 {
		args = append(args, "--width", strconv.Itoa(d.width), "--height", strconv.Itoa(d.height))
	}
	if d.iso > 0 {
		args = append(args, "--gain", strconv.FormatFloat(float64(d.iso)/100, 'f', -1, 64))
	}
	if d.shutter > 0 {
		args = append(args, "--shutter", strconv.Itoa(d.shutter))
	}
	return args
}

func (d *RpicamDriver) stillArgs(path string) []string {
	args := []string{"--nopreview", "--immediate"}
	args = append(args, d.exposureArgs()...)
	return append(args, "--output", path)
}

func (d *RpicamDriver) previewArgs() []string {
	args := []string{"--timeout", "0"}
	return append(args, d.exposureArgs()...)
}

// CaptureFile runs rpicam-still writing a JPEG to path
func (d *RpicamDriver) CaptureFile(ctx context.Context, path string) error {
	d.mu.Lock()
	args := d.stillArgs(path)
	d.mu.Unlock()

	d.log.Debug("Camera", "running still capture", map[string]interface{}{
		"command": d.stillCmd,
		"args":    strings.Join(args, " "),
	})

	out, err := d.run(ctx, d.stillCmd, args...)
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", d.stillCmd, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// CaptureImage captures to a temporary JPEG and decodes it
func (d *RpicamDriver) CaptureImage(ctx context.Context) (image.Image, error) {
	tmp, err := os.CreateTemp("", "bair-snapshot-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot file: %w", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	if err := d.CaptureFile(ctx, path); err != nil {
		return nil, err
	}

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return img, nil
}

// StartPreview launches rpicam-hello with an unbounded timeout
func (d *RpicamDriver) StartPreview() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.preview != nil {
		return ErrPreviewActive
	}

	cmd := exec.Command(d.previewCmd, d.previewArgs()...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", d.previewCmd, err)
	}
	d.preview = cmd
	return nil
}

// StopPreview kills the preview process
func (d *RpicamDriver) StopPreview() error {
	d.mu.Lock()
	cmd := d.preview
	d.preview = nil
	d.mu.Unlock()

	if cmd == nil {
		return ErrPreviewInactive
	}
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("failed to stop %s: %w", d.previewCmd, err)
	}
	_ = cmd.Wait()
	return nil
}

// Close stops any running preview
func (d *RpicamDriver) Close() error {
	if err := d.StopPreview(); err != nil && err != ErrPreviewInactive {
		return err
	}
	return nil
}
