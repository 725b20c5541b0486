// Package config loads application settings from defaults, an optional YAML
// file, a .env file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"bair-timelapse/internal/models"
)

const (
	BackendGocv   = "gocv"
	BackendRpicam = "rpicam"
	BackendFake   = "fake"

	EncoderFFmpeg = "ffmpeg"
	EncoderOpenCV = "opencv"
)

var (
	backends = mapset.NewThreadUnsafeSet(BackendGocv, BackendRpicam, BackendFake)
	encoders = mapset.NewThreadUnsafeSet(EncoderFFmpeg, EncoderOpenCV)
)

type Config struct {
	Camera   CameraConfig  `yaml:"camera"`
	Output   OutputConfig  `yaml:"output"`
	Encoder  EncoderConfig `yaml:"encoder"`
	UI       UIConfig      `yaml:"ui"`
	LogLevel string        `yaml:"log_level"`
}

type CameraConfig struct {
	Backend        string `yaml:"backend"`
	Device         int    `yaml:"device"`
	StillCommand   string `yaml:"still_command"`
	PreviewCommand string `yaml:"preview_command"`
	AutoISO        bool   `yaml:"auto_iso"`
	ISO            int    `yaml:"iso"`
	AutoShutter    bool   `yaml:"auto_shutter"`
	Shutter        string `yaml:"shutter"`
	Resolution     string `yaml:"resolution"`
}

type OutputConfig struct {
	Directory string `yaml:"directory"`
	Prefix    string `yaml:"prefix"`
	Video     bool   `yaml:"video"`
}

type EncoderConfig struct {
	Name       string `yaml:"name"`
	FFmpegPath string `yaml:"ffmpeg_path"`
	FrameRate  int    `yaml:"frame_rate"`
}

type UIConfig struct {
	PreviewSeconds  int `yaml:"preview_seconds"`
	SnapshotQuality int `yaml:"snapshot_quality"`
}

// Default returns the settings the panel starts with
func Default() *Config {
	return &Config{
		Camera: CameraConfig{
			Backend:        BackendGocv,
			Device:         0,
			StillCommand:   "rpicam-still",
			PreviewCommand: "rpicam-hello",
			AutoISO:        true,
			ISO:            models.DefaultISO,
			AutoShutter:    true,
			Shutter:        models.DefaultShutter,
			Resolution:     models.DefaultResolution,
		},
		Output: OutputConfig{
			Prefix: models.DefaultPrefix,
			Video:  true,
		},
		Encoder: EncoderConfig{
			Name:       EncoderFFmpeg,
			FFmpegPath: "ffmpeg",
			FrameRate:  25,
		},
		UI: UIConfig{
			PreviewSeconds:  5,
			SnapshotQuality: 95,
		},
		LogLevel: "info",
	}
}

// Load builds the configuration. path names an optional YAML file; when
// empty BAIR_CONFIG is consulted. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("BAIR_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	setBool := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	setString("BAIR_CAMERA_BACKEND", &c.Camera.Backend)
	setString("BAIR_STILL_COMMAND", &c.Camera.StillCommand)
	setString("BAIR_PREVIEW_COMMAND", &c.Camera.PreviewCommand)
	setString("BAIR_RESOLUTION", &c.Camera.Resolution)
	setString("BAIR_OUTPUT_DIR", &c.Output.Directory)
	setString("BAIR_PREFIX", &c.Output.Prefix)
	setString("BAIR_ENCODER", &c.Encoder.Name)
	setString("BAIR_FFMPEG", &c.Encoder.FFmpegPath)
	setString("LOG_LEVEL", &c.LogLevel)

	return errors.Join(
		setInt("BAIR_CAMERA_DEVICE", &c.Camera.Device),
		setInt("BAIR_FRAME_RATE", &c.Encoder.FrameRate),
		setInt("BAIR_PREVIEW_SECONDS", &c.UI.PreviewSeconds),
		setBool("BAIR_VIDEO", &c.Output.Video),
	)
}

// Validate rejects settings the camera or encoder cannot use
func (c *Config) Validate() error {
	var errs []error

	if !backends.Contains(c.Camera.Backend) {
		errs = append(errs, fmt.Errorf("unknown camera backend %q", c.Camera.Backend))
	}
	if !encoders.Contains(c.Encoder.Name) {
		errs = append(errs, fmt.Errorf("unknown encoder %q", c.Encoder.Name))
	}
	if c.Encoder.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame rate must be positive, got %d", c.Encoder.FrameRate))
	}
	if c.UI.PreviewSeconds <= 0 {
		errs = append(errs, fmt.Errorf("preview seconds must be positive, got %d", c.UI.PreviewSeconds))
	}
	if c.UI.SnapshotQuality < 1 || c.UI.SnapshotQuality > 100 {
		errs = append(errs, fmt.Errorf("snapshot quality must be within 1..100, got %d", c.UI.SnapshotQuality))
	}
	if _, err := c.CameraSettings(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// CameraSettings converts the camera section to the model the controller uses
func (c *Config) CameraSettings() (models.CameraSettings, error) {
	res, err := models.ParseResolution(c.Camera.Resolution)
	if err != nil {
		return models.CameraSettings{}, err
	}
	settings := models.CameraSettings{
		AutoISO:     c.Camera.AutoISO,
		ISO:         c.Camera.ISO,
		AutoShutter: c.Camera.AutoShutter,
		Shutter:     c.Camera.Shutter,
		Resolution:  res,
	}
	if err := settings.Validate(); err != nil {
		return models.CameraSettings{}, err
	}
	return settings, nil
}

// OutputSettings converts the output section to the model the controller uses
func (c *Config) OutputSettings() models.OutputSettings {
	return models.OutputSettings{
		Directory: c.Output.Directory,
		Prefix:    c.Output.Prefix,
		MakeVideo: c.Output.Video,
	}
}
