package shader

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed glsl/*
var glsl embed.FS

// Source names of the embedded shaders.
const (
	PrimitiveVertex     = "primitive.vert"
	PrimitiveFragment   = "primitive.frag"
	LinesVertex         = "lines.vert"
	LinesFragment       = "lines.frag"
	EnvironmentVertex   = "environment.vert"
	EnvironmentFragment = "environment.frag"
)

// Sources returns the embedded GLSL sources by file name.
func Sources() map[string]string {
	sources := make(map[string]string)
	entries, _ := fs.ReadDir(glsl, "glsl")
	for _, e := range entries {
		data, err := glsl.ReadFile(path.Join("glsl", e.Name()))
		if err != nil {
			continue
		}
		sources[e.Name()] = strings.ReplaceAll(string(data), "\r\n", "\n")
	}
	return sources
}
