// Package config loads the player configuration from a YAML file, an
// optional .env file and VALPLAYER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Env var names that override file settings.
const (
	EnvMusicDir    = "VALPLAYER_MUSIC_DIR"
	EnvFallbackDir = "VALPLAYER_FALLBACK_DIR"
	EnvLogLevel    = "VALPLAYER_LOG_LEVEL"
	EnvLogDir      = "VALPLAYER_LOG_DIR"
	EnvVolume      = "VALPLAYER_VOLUME"
	EnvSleepAfter  = "VALPLAYER_SLEEP_TIMEOUT"
)

// Config is the full player configuration.
type Config struct {
	MusicDir         string `yaml:"music_dir"`
	FallbackMusicDir string `yaml:"fallback_music_dir"`

	Display    Display    `yaml:"display"`
	Buttons    Buttons    `yaml:"buttons"`
	Assets     Assets     `yaml:"assets"`
	Timing     Timing     `yaml:"timing"`
	Visualizer Visualizer `yaml:"visualizer"`
	Audio      Audio      `yaml:"audio"`
	Log        Log        `yaml:"log"`
}

// Display describes the SPI panel.
type Display struct {
	Width        int    `yaml:"width"`
	Height       int    `yaml:"height"`
	Rotation     int    `yaml:"rotation"`
	SPIPort      string `yaml:"spi_port"`
	SPISpeedHz   int64  `yaml:"spi_speed_hz"`
	DCPin        string `yaml:"dc_pin"`
	BacklightPin string `yaml:"backlight_pin"`
	ResetPin     string `yaml:"reset_pin"`
	OffsetLeft   int    `yaml:"offset_left"`
	OffsetTop    int    `yaml:"offset_top"`
}

// Buttons maps the front-panel buttons to GPIO names.
type Buttons struct {
	A string `yaml:"a"`
	B string `yaml:"b"`
	X string `yaml:"x"`
	Y string `yaml:"y"`
}

// Assets lists the optional image and font files.
type Assets struct {
	Background string   `yaml:"background"`
	TitleFont  string   `yaml:"title_font"`
	InfoFont   string   `yaml:"info_font"`
	TitleSize  float64  `yaml:"title_size"`
	InfoSize   float64  `yaml:"info_size"`
	SleepSize  float64  `yaml:"sleep_size"`
	SleepTitle []string `yaml:"sleep_title"`
}

// Timing holds the loop pacing.
type Timing struct {
	SleepTimeout time.Duration `yaml:"sleep_timeout"`
	FastTick     time.Duration `yaml:"fast_tick"`
	IdleTick     time.Duration `yaml:"idle_tick"`
	Debounce     time.Duration `yaml:"debounce"`
	FinishCheck  time.Duration `yaml:"finish_check"`
}

// Visualizer configures the fire bars.
type Visualizer struct {
	Bars int   `yaml:"bars"`
	Seed int64 `yaml:"seed"`
}

// Audio configures the output device and volume behaviour.
type Audio struct {
	SampleRate int     `yaml:"sample_rate"`
	Volume     float64 `yaml:"volume"`
	VolumeStep float64 `yaml:"volume_step"`
	ReadTags   bool    `yaml:"read_tags"`
}

// Log configures logging.
type Log struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default returns the configuration of the stock Pirate Audio board.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		MusicDir:         "/media/usb/Music",
		FallbackMusicDir: filepath.Join(home, "Music"),
		Display: Display{
			Width:        240,
			Height:       240,
			Rotation:     90,
			SPIPort:      "SPI0.1",
			SPISpeedHz:   80_000_000,
			DCPin:        "GPIO9",
			BacklightPin: "GPIO13",
		},
		Buttons: Buttons{A: "GPIO5", B: "GPIO6", X: "GPIO16", Y: "GPIO24"},
		Assets: Assets{
			Background: "valpy.png",
			TitleFont:  "/usr/share/fonts/truetype/dejavu/DejaVuSerif-Bold.ttf",
			InfoFont:   "/usr/share/fonts/truetype/dejavu/DejaVuSerif.ttf",
			TitleSize:  22,
			InfoSize:   18,
			SleepSize:  32,
			SleepTitle: []string{"THE", "VALERIES"},
		},
		Timing: Timing{
			SleepTimeout: 300 * time.Second,
			FastTick:     50 * time.Millisecond,
			IdleTick:     100 * time.Millisecond,
			Debounce:     200 * time.Millisecond,
			FinishCheck:  time.Second,
		},
		Visualizer: Visualizer{Bars: 12},
		Audio: Audio{
			SampleRate: 44100,
			Volume:     0.5,
			VolumeStep: 0.05,
			ReadTags:   true,
		},
		Log: Log{Level: "normal", Dir: "."},
	}
}

// Load reads path over the defaults, then applies .env and environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	cfg.MusicDir = expandHome(cfg.MusicDir)
	cfg.FallbackMusicDir = expandHome(cfg.FallbackMusicDir)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvMusicDir); v != "" {
		c.MusicDir = v
	}
	if v := os.Getenv(EnvFallbackDir); v != "" {
		c.FallbackMusicDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvLogDir); v != "" {
		c.Log.Dir = v
	}
	if v := os.Getenv(EnvVolume); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvVolume, err)
		}
		c.Audio.Volume = f
	}
	if v := os.Getenv(EnvSleepAfter); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSleepAfter, err)
		}
		c.Timing.SleepTimeout = d
	}
	return nil
}

// Validate rejects settings the player cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.MusicDir == "" {
		errs = append(errs, errors.New("music_dir is required"))
	}
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size %dx%d is invalid", c.Display.Width, c.Display.Height))
	}
	switch c.Display.Rotation {
	case 0, 90, 180, 270:
	default:
		errs = append(errs, fmt.Errorf("display rotation %d is not a multiple of 90", c.Display.Rotation))
	}
	if c.Visualizer.Bars < 1 {
		errs = append(errs, fmt.Errorf("visualizer bars must be positive, got %d", c.Visualizer.Bars))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio volume %.2f outside [0,1]", c.Audio.Volume))
	}
	if c.Audio.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("audio sample rate %d is invalid", c.Audio.SampleRate))
	}
	for name, d := range map[string]time.Duration{
		"sleep_timeout": c.Timing.SleepTimeout,
		"fast_tick":     c.Timing.FastTick,
		"idle_tick":     c.Timing.IdleTick,
		"finish_check":  c.Timing.FinishCheck,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("timing.%s must be positive", name))
		}
	}
	if c.Timing.Debounce < 0 {
		errs = append(errs, errors.New("timing.debounce must not be negative"))
	}
	return errors.Join(errs...)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
