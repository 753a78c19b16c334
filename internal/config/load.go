package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and normalizes values that have a safe fallback.
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	switch c.Graphics.MSAASamples {
	case 0, 1, 2, 4, 8:
	default:
		c.Graphics.MSAASamples = 4
	}
	if c.Render.MaxVertexAttributes < 8 {
		c.Render.MaxVertexAttributes = 8
	}
	if c.Physics.FixedStep <= 0 {
		return fmt.Errorf("physics fixed_step must be positive, got %v", c.Physics.FixedStep)
	}
	if c.Physics.MaxSubSteps < 1 {
		c.Physics.MaxSubSteps = 1
	}
	if c.Animation.Speed == 0 {
		c.Animation.Speed = 1
	}
	switch c.Data.ScreenshotFormat {
	case "png", "webp":
	case "":
		c.Data.ScreenshotFormat = "png"
	default:
		return fmt.Errorf("unknown screenshot format %q", c.Data.ScreenshotFormat)
	}
	return nil
}

// ExtensionEnabled reports whether an extension is allowed to affect rendering.
func (r RenderConfig) ExtensionEnabled(name string) bool {
	enabled, ok := r.Extensions[name]
	return !ok || enabled
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "GLTFViewer")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "GLTFViewer")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "gltf-viewer")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "gltf-viewer")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
