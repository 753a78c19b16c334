package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagScene      = flag.String("scene", "", "glTF/GLB file to open")
	flagWatch      = flag.Bool("watch", false, "Reload the scene file when it changes")
	flagCamera     = flag.Int("camera", -2, "Camera index (-1 for orbit camera)")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagChannel    = flag.String("debug-channel", "", "Debug visualization channel (e.g. normal, base_color)")
	flagNoPhysics  = flag.Bool("no-physics", false, "Disable rigid body simulation")
	flagShotFormat = flag.String("screenshot-format", "", "Screenshot encoding: png or webp")
	flagWrite      = flag.String("write-config", "", "Write the effective config to this path and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteConfigPath returns the --write-config destination, empty when unset.
func WriteConfigPath() string {
	return *flagWrite
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Render.PhysicsDebug = true
	}
	if *flagScene != "" {
		cfg.Data.ScenePath = *flagScene
	} else if flag.NArg() > 0 {
		cfg.Data.ScenePath = flag.Arg(0)
	}
	if *flagWatch {
		cfg.Data.Watch = true
	}
	if *flagCamera >= -1 {
		cfg.Data.Camera = *flagCamera
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagChannel != "" {
		cfg.Render.DebugChannel = *flagChannel
	}
	if *flagNoPhysics {
		cfg.Physics.Enabled = false
	}
	if *flagShotFormat != "" {
		cfg.Data.ScreenshotFormat = *flagShotFormat
	}
}
