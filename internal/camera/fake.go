package camera

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
)

// FakeDriver records every call and captures solid grey frames. It stands in
// for hardware in tests and backs the "fake" camera backend.
type FakeDriver struct {
	mu sync.Mutex

	Width, Height   int
	ISOCalls        []int
	ShutterCalls    []int
	Captures        []string
	Previewing      bool
	PreviewStarts   int
	PreviewCaptures int
	Closed          bool

	// WriteFiles makes CaptureFile encode a real JPEG at the path
	WriteFiles bool
	// CaptureErr, when set, is returned by the next capture
	CaptureErr error
	// HoldImages, when set, blocks CaptureImage until it is closed
	HoldImages chan struct{}
}

// NewFakeDriver creates a FakeDriver at 640x480
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{Width: 640, Height: 480}
}

func (f *FakeDriver) SetResolution(width, height int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Width, f.Height = width, height
	return nil
}

func (f *FakeDriver) SetISO(iso int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ISOCalls = append(f.ISOCalls, iso)
	return nil
}

func (f *FakeDriver) SetShutterSpeed(micros int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ShutterCalls = append(f.ShutterCalls, micros)
	return nil
}

func (f *FakeDriver) CaptureFile(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.takeErr(ctx); err != nil {
		return err
	}
	f.Captures = append(f.Captures, path)
	f.countPreviewCapture()

	if f.WriteFiles {
		return imaging.Save(f.frame(), path)
	}
	return nil
}

func (f *FakeDriver) CaptureImage(ctx context.Context) (image.Image, error) {
	f.mu.Lock()
	hold := f.HoldImages
	f.mu.Unlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.takeErr(ctx); err != nil {
		return nil, err
	}
	f.countPreviewCapture()
	return f.frame(), nil
}

func (f *FakeDriver) countPreviewCapture() {
	if f.Previewing {
		f.PreviewCaptures++
	}
}

// takeErr returns and clears CaptureErr; callers hold mu
func (f *FakeDriver) takeErr(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := f.CaptureErr
	f.CaptureErr = nil
	return err
}

func (f *FakeDriver) frame() image.Image {
	return imaging.New(f.Width, f.Height, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
}

func (f *FakeDriver) StartPreview() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Previewing {
		return ErrPreviewActive
	}
	f.Previewing = true
	f.PreviewStarts++
	return nil
}

func (f *FakeDriver) StopPreview() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Previewing {
		return ErrPreviewInactive
	}
	f.Previewing = false
	return nil
}

func (f *FakeDriver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	f.Previewing = false
	return nil
}

// LastISO returns the most recent ISO sent to the driver
func (f *FakeDriver) LastISO() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ISOCalls) == 0 {
		return 0, false
	}
	return f.ISOCalls[len(f.ISOCalls)-1], true
}

// LastShutter returns the most recent shutter speed sent to the driver
func (f *FakeDriver) LastShutter() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ShutterCalls) == 0 {
		return 0, false
	}
	return f.ShutterCalls[len(f.ShutterCalls)-1], true
}

// CaptureCount returns the number of successful captures
func (f *FakeDriver) CaptureCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Captures)
}

// CapturedPaths returns a copy of the captured paths
func (f *FakeDriver) CapturedPaths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Captures...)
}

// IsPreviewing reports whether a preview is running
func (f *FakeDriver) IsPreviewing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Previewing
}

// FailNextCapture makes the next capture return err
func (f *FakeDriver) FailNextCapture(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CaptureErr = err
}
