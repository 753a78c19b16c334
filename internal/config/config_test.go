package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test graphics defaults
	if cfg.Graphics.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if cfg.Graphics.MSAASamples != 4 {
		t.Errorf("expected 4 msaa samples, got %d", cfg.Graphics.MSAASamples)
	}

	// Test render defaults
	if cfg.Render.DebugChannel != "none" {
		t.Errorf("expected debug channel 'none', got %s", cfg.Render.DebugChannel)
	}
	if !cfg.Render.Instancing {
		t.Error("expected instancing to be enabled by default")
	}

	// Test physics defaults
	if cfg.Physics.FixedStep != time.Second/60 {
		t.Errorf("expected fixed step 1/60s, got %v", cfg.Physics.FixedStep)
	}
	if cfg.Physics.WarmupFrames != 3 {
		t.Errorf("expected 3 warmup frames, got %d", cfg.Physics.WarmupFrames)
	}

	// Test data defaults
	if cfg.Data.Camera != -1 || cfg.Data.Scene != -1 {
		t.Errorf("expected scene/camera -1, got %d/%d", cfg.Data.Scene, cfg.Data.Camera)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  msaa_samples: 8

render:
  linear_output: true
  debug_channel: "normal"
  extensions:
    KHR_materials_transmission: false

animation:
  autoplay: false
  play: [1, 2]

physics:
  enabled: false
  fixed_step: 10ms
  warmup_frames: 5

data:
  scene_path: "models/box.glb"
  watch: true

logging:
  level: "debug"
  log_file: "viewer.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Graphics.Width)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.MSAASamples != 8 {
		t.Errorf("expected 8 msaa samples, got %d", cfg.Graphics.MSAASamples)
	}
	if !cfg.Render.LinearOutput {
		t.Error("expected linear output")
	}
	if cfg.Render.DebugChannel != "normal" {
		t.Errorf("expected debug channel 'normal', got %s", cfg.Render.DebugChannel)
	}
	if cfg.Render.ExtensionEnabled("KHR_materials_transmission") {
		t.Error("expected transmission to be disabled")
	}
	if !cfg.Render.ExtensionEnabled("KHR_materials_volume") {
		t.Error("unlisted extensions should stay enabled")
	}
	if cfg.Animation.Autoplay || len(cfg.Animation.Play) != 2 {
		t.Errorf("unexpected animation config %+v", cfg.Animation)
	}
	if cfg.Physics.FixedStep != 10*time.Millisecond {
		t.Errorf("expected fixed step 10ms, got %v", cfg.Physics.FixedStep)
	}
	if cfg.Data.ScenePath != "models/box.glb" || !cfg.Data.Watch {
		t.Errorf("unexpected data config %+v", cfg.Data)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "zero width",
			mutate:  func(c *Config) { c.Graphics.Width = 0 },
			wantErr: true,
		},
		{
			name:    "non-positive fixed step",
			mutate:  func(c *Config) { c.Physics.FixedStep = 0 },
			wantErr: true,
		},
		{
			name:   "odd msaa falls back",
			mutate: func(c *Config) { c.Graphics.MSAASamples = 3 },
			check: func(t *testing.T, c *Config) {
				if c.Graphics.MSAASamples != 4 {
					t.Errorf("expected msaa fallback 4, got %d", c.Graphics.MSAASamples)
				}
			},
		},
		{
			name:   "attribute budget floor",
			mutate: func(c *Config) { c.Render.MaxVertexAttributes = 2 },
			check: func(t *testing.T, c *Config) {
				if c.Render.MaxVertexAttributes != 8 {
					t.Errorf("expected attribute floor 8, got %d", c.Render.MaxVertexAttributes)
				}
			},
		},
		{
			name:    "unknown screenshot format",
			mutate:  func(c *Config) { c.Data.ScreenshotFormat = "gif" },
			wantErr: true,
		},
		{
			name:   "empty screenshot format",
			mutate: func(c *Config) { c.Data.ScreenshotFormat = "" },
			check: func(t *testing.T, c *Config) {
				if c.Data.ScreenshotFormat != "png" {
					t.Errorf("expected png, got %q", c.Data.ScreenshotFormat)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	path := findConfigFile()
	if path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	path = findConfigFile()
	if path == "" {
		t.Error("expected to find config.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Render.PhysicsDebug {
					t.Error("expected physics debug overlay with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "scene flag",
			setup: func() { *flagScene = "sponza.gltf" },
			verify: func(cfg *Config) {
				if cfg.Data.ScenePath != "sponza.gltf" {
					t.Errorf("expected scene sponza.gltf, got %s", cfg.Data.ScenePath)
				}
			},
			teardown: func() { *flagScene = "" },
		},
		{
			name:  "camera flag",
			setup: func() { *flagCamera = 2 },
			verify: func(cfg *Config) {
				if cfg.Data.Camera != 2 {
					t.Errorf("expected camera 2, got %d", cfg.Data.Camera)
				}
			},
			teardown: func() { *flagCamera = -2 },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name: "channel and physics flags",
			setup: func() {
				*flagChannel = "occlusion"
				*flagNoPhysics = true
			},
			verify: func(cfg *Config) {
				if cfg.Render.DebugChannel != "occlusion" {
					t.Errorf("expected channel occlusion, got %s", cfg.Render.DebugChannel)
				}
				if cfg.Physics.Enabled {
					t.Error("expected physics disabled")
				}
			},
			teardown: func() {
				*flagChannel = ""
				*flagNoPhysics = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width should be from flag (1920), not file (1600)
	if cfg.Graphics.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Graphics.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Graphics.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Graphics.Height)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Data.ScenePath = "scene.glb"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("reloading saved config: %v", err)
	}
	if loaded.Data.ScenePath != "scene.glb" {
		t.Errorf("expected scene.glb after reload, got %s", loaded.Data.ScenePath)
	}
	if loaded.Physics.FixedStep != cfg.Physics.FixedStep {
		t.Errorf("fixed step = %v after reload, want %v", loaded.Physics.FixedStep, cfg.Physics.FixedStep)
	}
}
