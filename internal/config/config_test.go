package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bair-timelapse/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, BackendGocv, cfg.Camera.Backend)
	assert.Equal(t, EncoderFFmpeg, cfg.Encoder.Name)
	assert.Equal(t, 25, cfg.Encoder.FrameRate)
	assert.Equal(t, 5, cfg.UI.PreviewSeconds)
	assert.Equal(t, "image_", cfg.Output.Prefix)
	assert.True(t, cfg.Output.Video)

	cs, err := cfg.CameraSettings()
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCameraSettings(), cs)
}

func TestLoad_YAMLFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, "bair.yaml", `
camera:
  backend: rpicam
  auto_iso: false
  iso: 400
  shutter: "1/60"
  resolution: "1920 x 1080"
output:
  directory: /srv/timelapse
  prefix: seedling_
  video: false
encoder:
  name: opencv
log_level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendRpicam, cfg.Camera.Backend)
	assert.Equal(t, EncoderOpenCV, cfg.Encoder.Name)
	assert.Equal(t, 25, cfg.Encoder.FrameRate, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.LogLevel)

	cs, err := cfg.CameraSettings()
	require.NoError(t, err)
	assert.False(t, cs.AutoISO)
	assert.Equal(t, 400, cs.ISO)
	assert.Equal(t, models.Resolution{Width: 1920, Height: 1080}, cs.Resolution)

	out := cfg.OutputSettings()
	assert.Equal(t, "/srv/timelapse", out.Directory)
	assert.Equal(t, "seedling_", out.Prefix)
	assert.False(t, out.MakeVideo)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, "bair.yaml", "output:\n  prefix: from_file_\n")
	t.Setenv("BAIR_PREFIX", "from_env_")
	t.Setenv("BAIR_VIDEO", "false")
	t.Setenv("BAIR_FRAME_RATE", "30")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env_", cfg.Output.Prefix)
	assert.False(t, cfg.Output.Video)
	assert.Equal(t, 30, cfg.Encoder.FrameRate)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, "bair.yaml", "ui:\n  preview_seconds: 12\n")
	t.Setenv("BAIR_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.UI.PreviewSeconds)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BAIR_OUTPUT_DIR=/mnt/usb\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("BAIR_OUTPUT_DIR") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/mnt/usb", cfg.Output.Directory)
}

func TestLoad_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "camera: [unterminated")
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("BAIR_CAMERA_DEVICE", "first")
	_, err = Load("")
	assert.ErrorContains(t, err, "BAIR_CAMERA_DEVICE")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"backend", func(c *Config) { c.Camera.Backend = "v4l" }, "unknown camera backend"},
		{"encoder", func(c *Config) { c.Encoder.Name = "gstreamer" }, "unknown encoder"},
		{"frame rate", func(c *Config) { c.Encoder.FrameRate = 0 }, "frame rate"},
		{"preview", func(c *Config) { c.UI.PreviewSeconds = -1 }, "preview seconds"},
		{"quality", func(c *Config) { c.UI.SnapshotQuality = 101 }, "snapshot quality"},
		{"iso", func(c *Config) { c.Camera.ISO = 1600 }, "iso value not allowed"},
		{"shutter", func(c *Config) { c.Camera.Shutter = "fast" }, "invalid shutter speed"},
		{"resolution", func(c *Config) { c.Camera.Resolution = "big" }, "invalid resolution"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
