// Package config loads the user configuration and maps it onto the engine
// and the surrounding capture, injection and server components.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ayusman/abhinaya/internal/calibration"
	"github.com/ayusman/abhinaya/internal/engine"
	"github.com/ayusman/abhinaya/internal/gesture"
	"github.com/ayusman/abhinaya/internal/pointer"
)

// Preset names.
const (
	PresetAdaptive    = "adaptive"
	PresetFixedRegion = "fixed-region"
)

// Injector kinds.
const (
	InjectorRobotgo = "robotgo"
	InjectorPlugin  = "plugin"
	InjectorLog     = "log"
)

// DefaultFileName is the config file looked up in the data directory.
const DefaultFileName = "config.json"

// maxFileSize caps the size of a config file.
const maxFileSize = 1 << 20

// ErrUnknownPreset is returned for a preset name that does not exist.
var ErrUnknownPreset = errors.New("unknown preset")

// Config is the complete user configuration.
type Config struct {
	Preset      string            `json:"preset"`
	Calibration CalibrationConfig `json:"calibration"`
	Blink       BlinkConfig       `json:"blink"`
	Mouth       MouthConfig       `json:"mouth"`
	Screen      ScreenConfig      `json:"screen"`
	Camera      CameraConfig      `json:"camera"`
	Injector    InjectorConfig    `json:"injector"`
	Server      ServerConfig      `json:"server"`
	Logging     LoggingConfig     `json:"logging"`

	// Source records where the configuration came from.
	Source string `json:"-"`
}

// CalibrationConfig selects the calibration policy.
type CalibrationConfig struct {
	Policy string             `json:"policy"`
	Region calibration.Bounds `json:"region"`
}

// BlinkConfig tunes the double-blink left click.
type BlinkConfig struct {
	ClosedThreshold float64 `json:"closed_threshold"`
	WindowSeconds   float64 `json:"window_seconds"`
	CountToClick    int     `json:"count_to_click"`
}

// MouthConfig tunes the mouth-open right click.
type MouthConfig struct {
	OpenThreshold   float64 `json:"open_threshold"`
	CooldownSeconds float64 `json:"cooldown_seconds"`
}

// ScreenConfig describes the target display. A zero width or height is
// filled in from the injector at startup.
type ScreenConfig struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	MarginPx int `json:"margin_px"`
}

// CameraConfig selects and tunes the capture device.
type CameraConfig struct {
	DeviceID int  `json:"device_id"`
	FPS      int  `json:"fps"`
	Mirror   bool `json:"mirror"`
}

// InjectorConfig selects how commands reach the operating system.
type InjectorConfig struct {
	Kind      string `json:"kind"`
	PluginDir string `json:"plugin_dir,omitempty"`
	Plugin    string `json:"plugin,omitempty"`
	TimeoutMs int    `json:"timeout_ms,omitempty"`
}

// ServerConfig controls the local HTTP server.
type ServerConfig struct {
	Enabled   bool   `json:"enabled"`
	Addr      string `json:"addr"`
	StaticDir string `json:"static_dir,omitempty"`
}

// LoggingConfig defines log verbosity and formatting.
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// Default returns the adaptive preset.
func Default() Config {
	return Config{
		Preset: PresetAdaptive,
		Calibration: CalibrationConfig{
			Policy: string(calibration.PolicyAdaptive),
			Region: calibration.DefaultRegion(),
		},
		Blink: BlinkConfig{
			ClosedThreshold: 0.01,
			WindowSeconds:   2.0,
			CountToClick:    2,
		},
		Mouth: MouthConfig{
			OpenThreshold:   0.05,
			CooldownSeconds: 1.0,
		},
		Screen: ScreenConfig{
			MarginPx: pointer.DefaultMargin,
		},
		Camera: CameraConfig{
			DeviceID: 1,
			FPS:      30,
			Mirror:   true,
		},
		Injector: InjectorConfig{
			Kind:      InjectorRobotgo,
			TimeoutMs: 500,
		},
		Server: ServerConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Source: "<defaults>",
	}
}

// FixedRegion returns the preset that only tracks the central 60% of the
// frame, lets the cursor reach the screen edges and uses the built-in camera.
func FixedRegion() Config {
	cfg := Default()
	cfg.Preset = PresetFixedRegion
	cfg.Calibration.Policy = string(calibration.PolicyFixedRegion)
	cfg.Screen.MarginPx = 0
	cfg.Mouth.CooldownSeconds = 0.5
	cfg.Camera.DeviceID = 0
	return cfg
}

// Preset returns the named preset.
func Preset(name string) (Config, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PresetAdaptive:
		return Default(), nil
	case PresetFixedRegion:
		return FixedRegion(), nil
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
}

// Parse decodes a JSON document on top of the preset it names.
// Fields omitted from the document keep the preset values.
func Parse(data []byte) (Config, error) {
	var head struct {
		Preset string `json:"preset"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Config{}, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	cfg, err := Preset(head.Preset)
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.Source = "<json>"
	return cfg, nil
}

// Load reads and validates a config file.
func Load(path string) (Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return Config{}, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return Config{}, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return Config{}, err
	}
	cfg.Source = cleanPath
	return cfg, nil
}

// Save writes cfg as indented JSON.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := c.Engine(1920, 1080); err != nil {
		return err
	}

	if c.Camera.FPS <= 0 {
		return fmt.Errorf("camera fps must be positive, got %d", c.Camera.FPS)
	}

	switch c.Injector.Kind {
	case InjectorRobotgo, InjectorLog:
	case InjectorPlugin:
		if c.Injector.Plugin == "" {
			return errors.New("injector plugin name is required for the plugin injector")
		}
	default:
		return fmt.Errorf("unknown injector kind %q", c.Injector.Kind)
	}

	if _, err := NormalizeLogLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Logging.Format)
	}

	return nil
}

// Engine converts the configuration into an engine configuration. Zero screen
// dimensions are replaced by the given fallbacks.
func (c Config) Engine(fallbackWidth, fallbackHeight int) (engine.Config, error) {
	width, height := c.Screen.Width, c.Screen.Height
	if width == 0 {
		width = fallbackWidth
	}
	if height == 0 {
		height = fallbackHeight
	}

	ec := engine.Config{
		Policy: calibration.Policy(c.Calibration.Policy),
		Region: c.Calibration.Region,
		Blink: gesture.BlinkConfig{
			ClosedThreshold: c.Blink.ClosedThreshold,
			Window:          seconds(c.Blink.WindowSeconds),
			CountToClick:    c.Blink.CountToClick,
		},
		Mouth: gesture.MouthConfig{
			OpenThreshold: c.Mouth.OpenThreshold,
			Cooldown:      seconds(c.Mouth.CooldownSeconds),
		},
		Screen: pointer.Screen{
			Width:  width,
			Height: height,
			Margin: c.Screen.MarginPx,
		},
	}
	if err := ec.Validate(); err != nil {
		return engine.Config{}, err
	}
	return ec, nil
}

// NormalizeLogLevel lower-cases and checks a log level name.
func NormalizeLogLevel(level string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "":
		return "info", nil
	case "debug", "info", "warn", "error":
		return normalized, nil
	default:
		return "", fmt.Errorf("unsupported log level %q", level)
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
