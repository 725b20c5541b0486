package models

import (
	"fmt"
	"image"
	"sync"
	"time"
)

// ImageData is a frame or snapshot held in memory
type ImageData struct {
	Image      image.Image
	Width      int
	Height     int
	Source     string
	CapturedAt time.Time
}

// NewImageData wraps img captured at t from source
func NewImageData(img image.Image, source string, t time.Time) *ImageData {
	bounds := img.Bounds()
	return &ImageData{
		Image:      img,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Source:     source,
		CapturedAt: t,
	}
}

// FrameInfo describes a frame written to disk. ISO and Exposure come from
// the file's EXIF block and are empty when the camera wrote none.
type FrameInfo struct {
	Path       string
	Index      int
	Size       int64
	CapturedAt time.Time
	ISO        int
	Exposure   string
	Width      int
	Height     int
}

// HasExif reports whether any exposure metadata was found
func (f FrameInfo) HasExif() bool {
	return f.ISO > 0 || f.Exposure != ""
}

func (f FrameInfo) String() string {
	if !f.HasExif() {
		return fmt.Sprintf("%s (%d bytes)", f.Path, f.Size)
	}
	return fmt.Sprintf("%s (%d bytes, ISO %d, %s)", f.Path, f.Size, f.ISO, f.Exposure)
}

// ImageRepository keeps the most recent snapshot and frame for the view
type ImageRepository struct {
	mu        sync.RWMutex
	snapshot  *ImageData
	lastFrame FrameInfo
	frames    int
}

func NewImageRepository() *ImageRepository {
	return &ImageRepository{}
}

// SetSnapshot stores the latest in-memory capture
func (r *ImageRepository) SetSnapshot(img *ImageData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshot = img
}

// Snapshot returns the latest in-memory capture, or nil
func (r *ImageRepository) Snapshot() *ImageData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// RecordFrame stores info about a frame written during a run
func (r *ImageRepository) RecordFrame(info FrameInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFrame = info
	r.frames++
}

// LastFrame returns the most recent frame and whether any was recorded
func (r *ImageRepository) LastFrame() (FrameInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastFrame, r.frames > 0
}

// FrameCount returns the number of frames recorded since the last Reset
func (r *ImageRepository) FrameCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frames
}

// Reset forgets recorded frames; the snapshot is kept
func (r *ImageRepository) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFrame = FrameInfo{}
	r.frames = 0
}
