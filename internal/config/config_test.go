package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "valplayer.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	def := Default()
	if cfg.MusicDir != def.MusicDir || cfg.Timing.SleepTimeout != 300*time.Second {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Visualizer.Bars != 12 || cfg.Audio.VolumeStep != 0.05 {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
music_dir: /srv/music
timing:
  sleep_timeout: 90s
  debounce: 150ms
visualizer:
  bars: 8
buttons:
  a: GPIO17
assets:
  sleep_title: ["GOOD", "NIGHT"]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MusicDir != "/srv/music" {
		t.Fatalf("music dir = %s", cfg.MusicDir)
	}
	if cfg.Timing.SleepTimeout != 90*time.Second || cfg.Timing.Debounce != 150*time.Millisecond {
		t.Fatalf("timing = %+v", cfg.Timing)
	}
	if cfg.Timing.FastTick != 50*time.Millisecond {
		t.Fatal("unset timing fields should keep their defaults")
	}
	if cfg.Visualizer.Bars != 8 || cfg.Buttons.A != "GPIO17" || cfg.Buttons.B != "GPIO6" {
		t.Fatalf("unexpected values: %+v %+v", cfg.Visualizer, cfg.Buttons)
	}
	if strings.Join(cfg.Assets.SleepTitle, " ") != "GOOD NIGHT" {
		t.Fatalf("sleep title = %v", cfg.Assets.SleepTitle)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvMusicDir, "/mnt/stick")
	t.Setenv(EnvVolume, "0.8")
	t.Setenv(EnvSleepAfter, "2m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.MusicDir != "/mnt/stick" || cfg.Audio.Volume != 0.8 || cfg.Timing.SleepTimeout != 2*time.Minute {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestEnvOverrideInvalid(t *testing.T) {
	t.Setenv(EnvVolume, "loud")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid volume")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"ok", func(*Config) {}, ""},
		{"no bars", func(c *Config) { c.Visualizer.Bars = 0 }, "visualizer bars"},
		{"volume", func(c *Config) { c.Audio.Volume = 1.5 }, "audio volume"},
		{"rotation", func(c *Config) { c.Display.Rotation = 45 }, "rotation"},
		{"tick", func(c *Config) { c.Timing.FastTick = 0 }, "fast_tick"},
		{"music dir", func(c *Config) { c.MusicDir = "" }, "music_dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestBadYAML(t *testing.T) {
	path := writeConfig(t, "music_dir: [unterminated")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := expandHome("~/Music"); got != filepath.Join(home, "Music") {
		t.Fatalf("expandHome = %s", got)
	}
	if got := expandHome("/abs"); got != "/abs" {
		t.Fatalf("absolute path changed: %s", got)
	}
}
