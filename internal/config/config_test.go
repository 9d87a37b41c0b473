package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/abhinaya/internal/calibration"
	"github.com/ayusman/abhinaya/internal/engine"
)

func TestPreset(t *testing.T) {
	tests := []struct {
		name       string
		preset     string
		wantPolicy string
		wantMargin int
		wantCamera int
		wantErr    error
	}{
		{name: "empty is adaptive", preset: "", wantPolicy: "adaptive", wantMargin: 5, wantCamera: 1},
		{name: "adaptive", preset: "adaptive", wantPolicy: "adaptive", wantMargin: 5, wantCamera: 1},
		{name: "fixed region", preset: "Fixed-Region", wantPolicy: "fixed-region", wantMargin: 0, wantCamera: 0},
		{name: "unknown", preset: "turbo", wantErr: ErrUnknownPreset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Preset(tt.preset)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPolicy, cfg.Calibration.Policy)
			assert.Equal(t, tt.wantMargin, cfg.Screen.MarginPx)
			assert.Equal(t, tt.wantCamera, cfg.Camera.DeviceID)
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestParse_OverridesPreset(t *testing.T) {
	cfg, err := Parse([]byte(`{
		"preset": "fixed-region",
		"calibration": {"region": {"x_min": 0.3, "x_max": 0.7, "y_min": 0.25, "y_max": 0.75}},
		"blink": {"count_to_click": 3},
		"screen": {"width": 2560, "height": 1440}
	}`))
	require.NoError(t, err)

	assert.Equal(t, PresetFixedRegion, cfg.Preset)
	assert.Equal(t, "fixed-region", cfg.Calibration.Policy)
	assert.Equal(t, calibration.Bounds{XMin: 0.3, XMax: 0.7, YMin: 0.25, YMax: 0.75}, cfg.Calibration.Region)
	assert.Equal(t, 3, cfg.Blink.CountToClick)
	assert.Equal(t, 0.01, cfg.Blink.ClosedThreshold, "omitted fields keep preset values")
	assert.Equal(t, 0.5, cfg.Mouth.CooldownSeconds)

	ec, err := cfg.Engine(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2560, ec.Screen.Width)
	assert.Equal(t, 1440, ec.Screen.Height)
	assert.Equal(t, 500*time.Millisecond, ec.Mouth.Cooldown)
	assert.Equal(t, 2*time.Second, ec.Blink.Window)
}

func TestParse_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "bad json", doc: `{"blink":`},
		{name: "zero blink count", doc: `{"blink": {"count_to_click": 0}}`},
		{name: "unknown preset", doc: `{"preset": "nope"}`},
		{name: "unknown policy", doc: `{"calibration": {"policy": "gaze"}}`},
		{name: "unknown injector", doc: `{"injector": {"kind": "xdotool"}}`},
		{name: "plugin without name", doc: `{"injector": {"kind": "plugin"}}`},
		{name: "bad log level", doc: `{"logging": {"level": "trace"}}`},
		{name: "zero fps", doc: `{"camera": {"fps": 0}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestEngine_InvalidConfigSentinel(t *testing.T) {
	cfg := Default()
	cfg.Blink.CountToClick = 0

	_, err := cfg.Engine(800, 600)
	assert.True(t, errors.Is(err, engine.ErrInvalidConfig), "got %v", err)
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.json")

	cfg := FixedRegion()
	cfg.Logging.Level = "debug"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, loaded.Source)
	assert.Equal(t, "debug", loaded.Logging.Level)
	assert.Equal(t, cfg.Calibration, loaded.Calibration)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.json"))
		assert.True(t, errors.Is(err, fs.ErrNotExist), "got %v", err)
	})

	t.Run("wrong extension", func(t *testing.T) {
		p := filepath.Join(dir, "config.yaml")
		require.NoError(t, os.WriteFile(p, []byte("preset: adaptive"), 0644))
		_, err := Load(p)
		assert.Error(t, err)
	})
}

func TestNormalizeLogLevel(t *testing.T) {
	lvl, err := NormalizeLogLevel(" WARN ")
	require.NoError(t, err)
	assert.Equal(t, "warn", lvl)

	lvl, err = NormalizeLogLevel("")
	require.NoError(t, err)
	assert.Equal(t, "info", lvl)
}
