package main

import (
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/engine/render"
	"github.com/Faultbox/gltf-viewer/internal/logger"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

// selectionGraph logs picked nodes and remembers the hovered one.
type selectionGraph struct {
	hover render.PickResult
}

func (g *selectionGraph) ReceiveSelection(r render.PickResult) {
	if !r.Hit() {
		logger.Info("selection cleared")
		return
	}
	pos := r.Position.Array()
	logger.Info("node selected",
		zap.Int("node", r.Node),
		zap.Float32s("position", pos[:]))
}

func (g *selectionGraph) ReceiveHover(r render.PickResult) {
	g.hover = r
}

func (g *selectionGraph) NeedsHover() bool {
	return true
}

func (g *selectionGraph) hovered(doc *scene.Document) string {
	if doc == nil || !g.hover.Hit() {
		return ""
	}
	if n := doc.Node(g.hover.Node); n != nil {
		return n.Name
	}
	return ""
}
