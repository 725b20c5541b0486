package services

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"

	"bair-timelapse/internal/camera"
	"bair-timelapse/internal/logger"
	"bair-timelapse/internal/models"
)

// ThumbnailSize bounds the preview image shown in the window
const ThumbnailSize = 320

// ImageService captures frames and snapshots through the camera driver
type ImageService struct {
	driver     camera.Driver
	repository *models.ImageRepository
	log        logger.Logger
	quality    int
	now        func() time.Time
}

// NewImageService creates an image service writing JPEGs at quality
func NewImageService(driver camera.Driver, repo *models.ImageRepository, quality int, log logger.Logger) *ImageService {
	return &ImageService{
		driver:     driver,
		repository: repo,
		log:        log,
		quality:    quality,
		now:        time.Now,
	}
}

// CaptureFrame writes frame index of a run to path and reads back its
// metadata. The output directory is created if missing.
func (is *ImageService) CaptureFrame(ctx context.Context, path string, index int) (models.FrameInfo, error) {
	select {
	case <-ctx.Done():
		return models.FrameInfo{}, ctx.Err()
	default:
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return models.FrameInfo{}, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	capturedAt := is.now()
	if err := is.driver.CaptureFile(ctx, path); err != nil {
		return models.FrameInfo{}, fmt.Errorf("failed to capture %s: %w", filepath.Base(path), err)
	}

	info := models.FrameInfo{Path: path, Index: index, CapturedAt: capturedAt}
	if stat, err := os.Stat(path); err == nil {
		info.Size = stat.Size()
	}
	if err := readExif(path, &info); err != nil {
		is.log.Debug("ImageService", "no exif in frame", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	is.repository.RecordFrame(info)
	is.log.Info("ImageService", "frame captured", map[string]interface{}{
		"frame":    index,
		"path":     path,
		"size":     info.Size,
		"iso":      info.ISO,
		"exposure": info.Exposure,
	})
	return info, nil
}

// LastFrame returns the most recent frame captured since ResetFrames
func (is *ImageService) LastFrame() (models.FrameInfo, bool) {
	return is.repository.LastFrame()
}

// FramesCaptured returns the number of frames captured since ResetFrames
func (is *ImageService) FramesCaptured() int {
	return is.repository.FrameCount()
}

// ResetFrames forgets the frames of the previous run
func (is *ImageService) ResetFrames() {
	is.repository.Reset()
}

// readExif fills the exposure fields of info from the JPEG's EXIF block
func readExif(path string, info *models.FrameInfo) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return err
	}

	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if val, err := tag.Int(0); err == nil {
			info.ISO = val
		}
	}
	if tag, err := x.Get(exif.ExposureTime); err == nil {
		if num, denom, err := tag.Rat2(0); err == nil && denom != 0 {
			if num == 1 {
				info.Exposure = fmt.Sprintf("1/%d s", denom)
			} else {
				info.Exposure = fmt.Sprintf("%.1f s", float64(num)/float64(denom))
			}
		}
	}
	if tag, err := x.Get(exif.PixelXDimension); err == nil {
		if val, err := tag.Int(0); err == nil {
			info.Width = val
		}
	}
	if tag, err := x.Get(exif.PixelYDimension); err == nil {
		if val, err := tag.Int(0); err == nil {
			info.Height = val
		}
	}
	return nil
}

// Snapshot captures a frame into memory and keeps it in the repository
func (is *ImageService) Snapshot(ctx context.Context) (*models.ImageData, error) {
	img, err := is.driver.CaptureImage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture snapshot: %w", err)
	}

	data := models.NewImageData(img, "snapshot", is.now())
	is.repository.SetSnapshot(data)

	is.log.Info("ImageService", "snapshot captured", map[string]interface{}{
		"width":  data.Width,
		"height": data.Height,
	})
	return data, nil
}

// SaveSnapshot encodes the latest snapshot as JPEG to writer and closes it
func (is *ImageService) SaveSnapshot(writer io.WriteCloser) error {
	defer writer.Close()

	data := is.repository.Snapshot()
	if data == nil || data.Image == nil {
		return fmt.Errorf("no snapshot to save")
	}

	if err := imaging.Encode(writer, data.Image, imaging.JPEG, imaging.JPEGQuality(is.quality)); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// Thumbnail scales img to fit the preview area
func (is *ImageService) Thumbnail(img image.Image) image.Image {
	return imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)
}

// LoadThumbnail decodes a frame from disk and scales it for the preview area
func (is *ImageService) LoadThumbnail(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	return is.Thumbnail(img), nil
}
