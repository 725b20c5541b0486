package camera

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"

	"gocv.io/x/gocv"

	"bair-timelapse/internal/logger"
	"bair-timelapse/internal/opencv/conversion"
)

// V4L2 auto exposure modes as exposed through CAP_PROP_AUTO_EXPOSURE
const (
	v4l2ExposureManual   = 1
	v4l2ExposureAperture = 3
)

// GocvDriver drives a V4L2/UVC camera through an OpenCV VideoCapture
type GocvDriver struct {
	mu      sync.Mutex
	device  int
	capture *gocv.VideoCapture
	log     logger.Logger

	previewStop chan struct{}
	previewDone chan struct{}
}

// NewGocvDriver opens the capture device with the given index
func NewGocvDriver(device int, log logger.Logger) (*GocvDriver, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera %d did not open", device)
	}

	log.Info("Camera", "camera opened", map[string]interface{}{
		"backend": "gocv",
		"device":  device,
	})

	return &GocvDriver{
		device:  device,
		capture: capture,
		log:     log,
	}, nil
}

// SetResolution requests a capture size from the device
func (d *GocvDriver) SetResolution(width, height int) error {
	if err := conversion.ValidateDimensions(width, height, "SetResolution"); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
	d.capture.Set(gocv.VideoCaptureFrameHeight, float64(height))

	actual := fmt.Sprintf("%.0fx%.0f",
		d.capture.Get(gocv.VideoCaptureFrameWidth),
		d.capture.Get(gocv.VideoCaptureFrameHeight))

	d.log.Debug("Camera", "resolution set", map[string]interface{}{
		"requested": fmt.Sprintf("%dx%d", width, height),
		"actual":    actual,
	})
	return nil
}

// SetISO sets the sensor ISO; 0 leaves it to the device
func (d *GocvDriver) SetISO(iso int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.capture.Set(gocv.VideoCaptureISOSpeed, float64(iso))
	d.log.Debug("Camera", "iso set", map[string]interface{}{"iso": iso})
	return nil
}

// SetShutterSpeed sets a manual exposure time, or auto exposure for 0.
// V4L2 exposure_absolute is expressed in units of 100µs.
func (d *GocvDriver) SetShutterSpeed(micros int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if micros == 0 {
		d.capture.Set(gocv.VideoCaptureAutoExposure, v4l2ExposureAperture)
	} else {
		d.capture.Set(gocv.VideoCaptureAutoExposure, v4l2ExposureManual)
		d.capture.Set(gocv.VideoCaptureExposure, float64(micros)/100)
	}

	d.log.Debug("Camera", "shutter speed set", map[string]interface{}{"micros": micros})
	return nil
}

// CaptureFile grabs a frame and encodes it to path
func (d *GocvDriver) CaptureFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	mat := gocv.NewMat()
	defer mat.Close()

	if err := d.read(&mat); err != nil {
		return err
	}
	if !gocv.IMWrite(path, mat) {
		return fmt.Errorf("failed to write frame to %s", path)
	}
	return nil
}

// CaptureImage grabs a frame as an RGB image
func (d *GocvDriver) CaptureImage(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	mat := gocv.NewMat()
	defer mat.Close()

	if err := d.read(&mat); err != nil {
		return nil, err
	}
	return conversion.MatToImage(mat)
}

// read grabs the next frame; callers hold mu
func (d *GocvDriver) read(mat *gocv.Mat) error {
	if ok := d.capture.Read(mat); !ok {
		return fmt.Errorf("failed to read frame from camera %d", d.device)
	}
	if mat.Empty() {
		return ErrEmptyFrame
	}
	return conversion.ValidateFrame(*mat, 0, 0, "Read")
}

// StartPreview opens a HighGUI window fed from the capture device until
// StopPreview is called. The window lives on its own locked OS thread, which
// GTK and Qt builds of HighGUI accept. Cocoa only draws windows from the
// process main thread, so on macOS the preview window may stay blank.
func (d *GocvDriver) StartPreview() error {
	d.mu.Lock()
	if d.previewStop != nil {
		d.mu.Unlock()
		return ErrPreviewActive
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	d.previewStop = stop
	d.previewDone = done
	d.mu.Unlock()

	go d.runPreview(stop, done)
	return nil
}

func (d *GocvDriver) runPreview(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	// HighGUI windows are bound to the thread that created them
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	window := gocv.NewWindow("Preview")
	defer window.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	for {
		select {
		case <-stop:
			return
		default:
		}

		d.mu.Lock()
		err := d.read(&mat)
		d.mu.Unlock()
		if err != nil {
			d.log.Warning("Camera", "preview frame dropped", map[string]interface{}{"error": err.Error()})
			window.WaitKey(10)
			continue
		}

		window.IMShow(mat)
		window.WaitKey(1)
	}
}

// StopPreview closes the preview window
func (d *GocvDriver) StopPreview() error {
	d.mu.Lock()
	stop, done := d.previewStop, d.previewDone
	d.previewStop, d.previewDone = nil, nil
	d.mu.Unlock()

	if stop == nil {
		return ErrPreviewInactive
	}
	close(stop)
	<-done
	return nil
}

// Close stops any preview and releases the device
func (d *GocvDriver) Close() error {
	_ = d.StopPreview()

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capture.Close()
}
