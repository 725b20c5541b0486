// Package camera wraps the camera hardware behind the Driver interface the
// controller configures and captures through.
package camera

import (
	"context"
	"errors"
	"fmt"
	"image"

	"bair-timelapse/internal/config"
	"bair-timelapse/internal/logger"
)

// Driver is the camera collaborator. ISO and shutter speed take 0 to mean
// automatic; shutter speed is in microseconds.
type Driver interface {
	SetResolution(width, height int) error
	SetISO(iso int) error
	SetShutterSpeed(micros int) error

	// CaptureFile writes one JPEG frame to path
	CaptureFile(ctx context.Context, path string) error
	// CaptureImage captures one frame into memory
	CaptureImage(ctx context.Context) (image.Image, error)

	StartPreview() error
	StopPreview() error
	Close() error
}

var (
	ErrPreviewActive   = errors.New("preview already running")
	ErrPreviewInactive = errors.New("preview not running")
	ErrEmptyFrame      = errors.New("camera returned an empty frame")
)

// Open creates the driver selected by the camera configuration
func Open(cfg config.CameraConfig, log logger.Logger) (Driver, error) {
	switch cfg.Backend {
	case config.BackendGocv:
		return NewGocvDriver(cfg.Device, log)
	case config.BackendRpicam:
		return NewRpicamDriver(cfg.StillCommand, cfg.PreviewCommand, log), nil
	case config.BackendFake:
		fake := NewFakeDriver()
		fake.WriteFiles = true
		return fake, nil
	default:
		return nil, fmt.Errorf("unknown camera backend %q", cfg.Backend)
	}
}
