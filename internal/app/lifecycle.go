package app

import (
	"context"
	"fmt"
	"time"

	"bair-timelapse/internal/camera"
	"bair-timelapse/internal/config"
	"bair-timelapse/internal/controllers"
	"bair-timelapse/internal/encoder"
	"bair-timelapse/internal/logger"
	"bair-timelapse/internal/models"
	"bair-timelapse/internal/services"
	"bair-timelapse/internal/shutdown"
)

// Lifecycle owns the camera, services and controller shared by the GUI and
// the headless runner, and tears them down in reverse order
type Lifecycle struct {
	Config     *config.Config
	Logger     logger.Logger
	Driver     camera.Driver
	Controller *controllers.MainController

	shutdown *shutdown.Manager
}

// NewLifecycle opens the camera and wires the controller. The camera
// settings from cfg are applied before it returns.
func NewLifecycle(cfg *config.Config, log logger.Logger) (*Lifecycle, error) {
	settings, err := cfg.CameraSettings()
	if err != nil {
		return nil, err
	}

	driver, err := camera.Open(cfg.Camera, log)
	if err != nil {
		return nil, err
	}

	enc, err := encoder.New(cfg.Encoder, log)
	if err != nil {
		driver.Close()
		return nil, err
	}

	repo := models.NewImageRepository()
	imageService := services.NewImageService(driver, repo, cfg.UI.SnapshotQuality, log)
	videoService := services.NewVideoService(enc, cfg.Encoder.FrameRate, log)

	controller := controllers.NewMainController(driver, imageService, videoService, settings, cfg.OutputSettings(), log)
	controller.SetPreviewDuration(time.Duration(cfg.UI.PreviewSeconds) * time.Second)

	if err := controller.ApplyCameraSettings(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("failed to configure camera: %w", err)
	}

	l := &Lifecycle{
		Config:     cfg,
		Logger:     log,
		Driver:     driver,
		Controller: controller,
		shutdown:   shutdown.NewManager(log),
	}

	l.shutdown.Register("camera", shutdown.Func(func(context.Context) error {
		return driver.Close()
	}))
	l.shutdown.Register("controller", shutdown.Func(controller.Close))

	log.Info("Lifecycle", "components ready", map[string]interface{}{
		"backend":    cfg.Camera.Backend,
		"encoder":    enc.Name(),
		"resolution": settings.Resolution.String(),
	})
	return l, nil
}

// Listen shuts down on SIGINT/SIGTERM and then calls onSignal
func (l *Lifecycle) Listen(onSignal func()) {
	l.shutdown.Listen(onSignal)
}

// Shutdown stops the controller, then closes the camera. It is safe to
// call more than once.
func (l *Lifecycle) Shutdown() error {
	return l.shutdown.Shutdown()
}

// Done is closed once shutdown has begun
func (l *Lifecycle) Done() <-chan struct{} {
	return l.shutdown.Done()
}
