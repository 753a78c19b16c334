package render

import "github.com/Faultbox/gltf-viewer/pkg/math"

// PickResult is the outcome of a picking or hover pass.
type PickResult struct {
	// Node is the hit node index, scene.None when the pixel shows background.
	Node     int
	Position math.Vec3
	X, Y     int
}

// Hit reports whether a node was found under the pixel.
func (r PickResult) Hit() bool {
	return r.Node >= 0
}

// Graph receives picking results, typically an interactivity or scripting
// engine.
type Graph interface {
	ReceiveSelection(PickResult)
	ReceiveHover(PickResult)
	NeedsHover() bool
}

// NopGraph ignores every result and never asks for hover.
type NopGraph struct{}

func (NopGraph) ReceiveSelection(PickResult) {}
func (NopGraph) ReceiveHover(PickResult)     {}
func (NopGraph) NeedsHover() bool            { return false }
