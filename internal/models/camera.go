package models

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Camera option lists offered by the settings panel
var (
	ISOOptions        = []int{100, 200, 320, 400, 500, 640, 800}
	ShutterOptions    = []string{"1", "1/2", "1/4", "1/8", "1/15", "1/30", "1/60", "1/125", "1/250", "1/500", "1/1000"}
	ResolutionOptions = []string{"2592 x 1944", "1296 x 972", "1296 x 730", "640 x 480", "1920 x 1080"}
)

const (
	DefaultISO        = 100
	DefaultShutter    = "1/125"
	DefaultResolution = "1296 x 972"

	// AutoValue is sent to the driver for ISO and shutter speed in auto mode
	AutoValue = 0
)

var (
	ErrISONotAllowed     = errors.New("iso value not allowed")
	ErrInvalidShutter    = errors.New("invalid shutter speed")
	ErrInvalidResolution = errors.New("invalid resolution")
	allowedISO           = mapset.NewThreadUnsafeSet(ISOOptions...)
)

// ValidateISO reports whether iso is one of the fixed ISO options
func ValidateISO(iso int) error {
	if !allowedISO.Contains(iso) {
		return fmt.Errorf("%w: %d", ErrISONotAllowed, iso)
	}
	return nil
}

// ISOLabels returns the ISO options as display strings
func ISOLabels() []string {
	labels := make([]string, len(ISOOptions))
	for i, iso := range ISOOptions {
		labels[i] = strconv.Itoa(iso)
	}
	return labels
}

// ShutterMicros converts a display fraction of a second such as "1/125" into
// microseconds, rounded to the nearest microsecond.
func ShutterMicros(fraction string) (int, error) {
	r, ok := new(big.Rat).SetString(strings.TrimSpace(fraction))
	if !ok || r.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidShutter, fraction)
	}
	seconds, _ := r.Float64()
	return int(math.Round(1_000_000 * seconds)), nil
}

// Resolution is a capture size in pixels
type Resolution struct {
	Width  int
	Height int
}

// ParseResolution parses "WIDTH x HEIGHT"
func ParseResolution(text string) (Resolution, error) {
	parts := strings.Split(strings.ToLower(text), "x")
	if len(parts) != 2 {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, text)
	}
	width, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, text)
	}
	height, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, text)
	}
	if width <= 0 || height <= 0 {
		return Resolution{}, fmt.Errorf("%w: %q", ErrInvalidResolution, text)
	}
	return Resolution{Width: width, Height: height}, nil
}

// String formats the resolution the way the option list does
func (r Resolution) String() string {
	return fmt.Sprintf("%d x %d", r.Width, r.Height)
}

// CameraSettings holds the exposure configuration. The manual values are kept
// while auto is on so switching auto off restores the last selection.
type CameraSettings struct {
	AutoISO     bool
	ISO         int
	AutoShutter bool
	Shutter     string
	Resolution  Resolution
}

// DefaultCameraSettings returns auto ISO and shutter with the default manual
// selections and the default resolution
func DefaultCameraSettings() CameraSettings {
	res, _ := ParseResolution(DefaultResolution)
	return CameraSettings{
		AutoISO:     true,
		ISO:         DefaultISO,
		AutoShutter: true,
		Shutter:     DefaultShutter,
		Resolution:  res,
	}
}

// EffectiveISO returns the value sent to the driver
func (c CameraSettings) EffectiveISO() int {
	if c.AutoISO {
		return AutoValue
	}
	return c.ISO
}

// EffectiveShutterMicros returns the shutter speed sent to the driver
func (c CameraSettings) EffectiveShutterMicros() (int, error) {
	if c.AutoShutter {
		return AutoValue, nil
	}
	return ShutterMicros(c.Shutter)
}

// Validate checks the manual selections
func (c CameraSettings) Validate() error {
	if err := ValidateISO(c.ISO); err != nil {
		return err
	}
	if _, err := ShutterMicros(c.Shutter); err != nil {
		return err
	}
	if c.Resolution.Width <= 0 || c.Resolution.Height <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidResolution, c.Resolution)
	}
	return nil
}
