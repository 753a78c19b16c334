// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Graphics  GraphicsConfig  `yaml:"graphics"`
	Render    RenderConfig    `yaml:"render"`
	Animation AnimationConfig `yaml:"animation"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Data      DataConfig      `yaml:"data"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DataConfig holds scene file settings.
type DataConfig struct {
	ScenePath string `yaml:"scene_path"` // glTF or GLB file to open
	Watch     bool   `yaml:"watch"`      // Reload the scene when the file changes
	Scene     int    `yaml:"scene"`      // Scene index, -1 for the document default
	Camera    int    `yaml:"camera"`     // Camera index, -1 for the orbit camera

	ScreenshotDir    string `yaml:"screenshot_dir"`
	ScreenshotFormat string `yaml:"screenshot_format"` // png or webp
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width       int  `yaml:"width"`
	Height      int  `yaml:"height"`
	Fullscreen  bool `yaml:"fullscreen"`
	VSync       bool `yaml:"vsync"`
	FPSLimit    int  `yaml:"fps_limit"`
	MSAASamples int  `yaml:"msaa_samples"`
}

// RenderConfig holds renderer settings.
type RenderConfig struct {
	LinearOutput        bool            `yaml:"linear_output"`
	DebugChannel        string          `yaml:"debug_channel"`
	Environment         bool            `yaml:"environment"`
	EnvironmentRotation float32         `yaml:"environment_rotation"`
	Instancing          bool            `yaml:"instancing"`
	MaxVertexAttributes int             `yaml:"max_vertex_attributes"`
	Extensions          map[string]bool `yaml:"extensions"` // Per-extension kill switches, missing means enabled
	PhysicsDebug        bool            `yaml:"physics_debug"`
}

// AnimationConfig holds playback settings.
type AnimationConfig struct {
	Autoplay bool    `yaml:"autoplay"`
	Play     []int   `yaml:"play"` // Animation indices to start, empty plays every compatible one
	Speed    float64 `yaml:"speed"`
}

// PhysicsConfig holds simulation settings.
type PhysicsConfig struct {
	Enabled      bool          `yaml:"enabled"`
	FixedStep    time.Duration `yaml:"fixed_step"`
	MaxSubSteps  int           `yaml:"max_sub_steps"`
	WarmupFrames int           `yaml:"warmup_frames"`
	Gravity      [3]float32    `yaml:"gravity"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:       1280,
			Height:      720,
			Fullscreen:  false,
			VSync:       true,
			FPSLimit:    0,
			MSAASamples: 4,
		},
		Render: RenderConfig{
			LinearOutput:        false,
			DebugChannel:        "none",
			Environment:         true,
			Instancing:          true,
			MaxVertexAttributes: 16,
			PhysicsDebug:        false,
		},
		Animation: AnimationConfig{
			Autoplay: true,
			Speed:    1.0,
		},
		Physics: PhysicsConfig{
			Enabled:      true,
			FixedStep:    time.Second / 60,
			MaxSubSteps:  4,
			WarmupFrames: 3,
			Gravity:      [3]float32{0, -9.81, 0},
		},
		Data: DataConfig{
			Watch:            false,
			Scene:            -1,
			Camera:           -1,
			ScreenshotDir:    "screenshots",
			ScreenshotFormat: "png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
