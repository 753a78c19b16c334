package animation

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/logger"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

var (
	// ErrNoAnimation is returned for an animation index outside the document.
	ErrNoAnimation = errors.New("no such animation")
	// ErrConflict is returned when an animation shares targets with an active one.
	ErrConflict = errors.New("animation targets overlap an active animation")
)

// Set is the collection of players of a document and the active selection.
// Only mutually disjoint animations can be active at the same time.
type Set struct {
	doc     *scene.Document
	players []*Player
	active  []int
}

// NewSet creates players for every animation of doc and fills in
// doc.DisjointAnimations when it has not been computed yet.
func NewSet(doc *scene.Document) *Set {
	if len(doc.DisjointAnimations) != len(doc.Animations) {
		doc.DisjointAnimations = Disjoint(doc.Animations)
	}
	s := &Set{doc: doc, players: make([]*Player, len(doc.Animations))}
	for i := range doc.Animations {
		s.players[i] = NewPlayer(doc, i)
	}
	return s
}

// Len returns the number of animations.
func (s *Set) Len() int {
	return len(s.players)
}

// Active returns the active animation indices in activation order.
func (s *Set) Active() []int {
	return slices.Clone(s.active)
}

// Activate adds animation i to the active selection.
func (s *Set) Activate(i int) error {
	if i < 0 || i >= len(s.players) {
		return fmt.Errorf("%w: %d", ErrNoAnimation, i)
	}
	if slices.Contains(s.active, i) {
		return nil
	}
	for _, a := range s.active {
		if !Compatible(s.doc.DisjointAnimations, i, a) {
			return fmt.Errorf("%w: %d and %d", ErrConflict, i, a)
		}
	}
	s.active = append(s.active, i)
	return nil
}

// Deactivate removes animation i and drops the overrides it wrote.
func (s *Set) Deactivate(i int) {
	idx := slices.Index(s.active, i)
	if idx < 0 {
		return
	}
	s.active = slices.Delete(s.active, idx, idx+1)
	s.players[i].Reset()
}

// Play activates the given animations, or all of them when indices is empty.
// Animations conflicting with an earlier one are skipped with a warning.
func (s *Set) Play(indices []int) {
	if len(indices) == 0 {
		indices = make([]int, len(s.players))
		for i := range indices {
			indices[i] = i
		}
	}
	for _, i := range indices {
		if err := s.Activate(i); err != nil {
			logger.Warn("animation not activated", zap.Int("animation", i), zap.Error(err))
		}
	}
}

// Stop deactivates every animation.
func (s *Set) Stop() {
	for len(s.active) > 0 {
		s.Deactivate(s.active[0])
	}
}

// Advance advances every active animation to totalTime.
func (s *Set) Advance(totalTime float32) {
	for _, i := range s.active {
		s.players[i].Advance(s.doc, totalTime)
	}
}
