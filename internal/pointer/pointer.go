// Package pointer compiles glTF animation pointers (KHR_animation_pointer JSON
// pointers) into typed targets that resolve against a scene document.
package pointer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/gltf-viewer/internal/property"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

var (
	// ErrMalformed is returned for paths that are not valid pointers.
	ErrMalformed = errors.New("malformed animation pointer")
	// ErrUnknownProperty is returned for properties outside the animatable set.
	ErrUnknownProperty = errors.New("unknown animatable property")
	// ErrUnresolvable is returned when the target entity or element does not exist.
	ErrUnresolvable = errors.New("unresolvable animation pointer")
)

// Collection is the top-level document array a pointer addresses.
type Collection int

const (
	Nodes Collection = iota
	Meshes
	Materials
	Cameras
	Lights
)

var collectionPrefix = [...]string{
	Nodes:     "/nodes/",
	Meshes:    "/meshes/",
	Materials: "/materials/",
	Cameras:   "/cameras/",
	Lights:    "/extensions/KHR_lights_punctual/lights/",
}

// Target is a compiled pointer.
type Target struct {
	Collection Collection
	Index      int
	// Property is the path relative to the entity, e.g. "translation" or
	// "pbrMetallicRoughness/baseColorFactor".
	Property string
	// Element addresses one component of an array value, -1 for the whole value.
	Element int
}

// Resolved is a target bound to a live property.
type Resolved struct {
	Property property.Property
	Element  int
}

// Compile parses path. The property name is checked against the animatable set of
// the addressed entity type; entity indices are only checked by Resolve.
func Compile(path string) (Target, error) {
	for c, prefix := range collectionPrefix {
		rest, ok := strings.CutPrefix(path, prefix)
		if !ok {
			continue
		}
		idx, prop, ok := strings.Cut(rest, "/")
		if !ok || prop == "" {
			return Target{}, fmt.Errorf("%w: %q", ErrMalformed, path)
		}
		index, err := strconv.Atoi(idx)
		if err != nil || index < 0 {
			return Target{}, fmt.Errorf("%w: bad index in %q", ErrMalformed, path)
		}

		t := Target{Collection: Collection(c), Index: index, Property: unescape(prop), Element: -1}
		if t.known() {
			return t, nil
		}
		if base, elem, ok := splitElement(t.Property); ok {
			t.Property, t.Element = base, elem
			if t.known() {
				return t, nil
			}
		}
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownProperty, path)
	}
	return Target{}, fmt.Errorf("%w: unsupported collection in %q", ErrMalformed, path)
}

// ForNode builds the pointer of a glTF TRS/weights channel target.
func ForNode(node int, path string) string {
	return collectionPrefix[Nodes] + strconv.Itoa(node) + "/" + path
}

// Key identifies the addressed property regardless of element, so that two
// channels writing different elements of one array value compare equal.
func (t Target) Key() string {
	return collectionPrefix[t.Collection] + strconv.Itoa(t.Index) + "/" + t.Property
}

func (t Target) String() string {
	if t.Element >= 0 {
		return t.Key() + "/" + strconv.Itoa(t.Element)
	}
	return t.Key()
}

// Resolve binds the target to a property of doc.
func (t Target) Resolve(doc *scene.Document) (Resolved, error) {
	p, err := t.lookup(doc)
	if err != nil {
		return Resolved{}, err
	}
	if t.Element >= 0 && (!p.IsSequence() || t.Element >= p.Stride()) {
		return Resolved{}, fmt.Errorf("%w: element %d out of range in %s", ErrUnresolvable, t.Element, t)
	}
	return Resolved{Property: p, Element: t.Element}, nil
}

func (t Target) lookup(doc *scene.Document) (property.Property, error) {
	missing := fmt.Errorf("%w: %s", ErrUnresolvable, t)

	switch t.Collection {
	case Nodes:
		if n := doc.Node(t.Index); n != nil {
			return scene.NodeProperties[t.Property](n), nil
		}
	case Meshes:
		if m := doc.Mesh(t.Index); m != nil {
			return scene.MeshProperties[t.Property](m), nil
		}
	case Materials:
		if m := doc.Material(t.Index); m != nil {
			if p, ok := m.Property(t.Property); ok {
				return p, nil
			}
		}
	case Cameras:
		if c := doc.Camera(t.Index); c != nil {
			return scene.CameraProperties[t.Property](c), nil
		}
	case Lights:
		if l := doc.Light(t.Index); l != nil {
			return scene.LightProperties[t.Property](l), nil
		}
	}
	return nil, missing
}

func (t Target) known() bool {
	var ok bool
	switch t.Collection {
	case Nodes:
		_, ok = scene.NodeProperties[t.Property]
	case Meshes:
		_, ok = scene.MeshProperties[t.Property]
	case Materials:
		ok = materialPath(t.Property)
	case Cameras:
		_, ok = scene.CameraProperties[t.Property]
	case Lights:
		_, ok = scene.LightProperties[t.Property]
	}
	return ok
}

func materialPath(path string) bool {
	if _, ok := scene.MaterialProperties[path]; ok {
		return true
	}
	slot, name, ok := strings.Cut(path, "/extensions/"+scene.ExtTextureTransform+"/")
	if !ok {
		return false
	}
	if _, ok := scene.TextureSlotPaths[slot]; !ok {
		return false
	}
	_, ok = scene.TextureTransformProperties[name]
	return ok
}

func splitElement(path string) (string, int, bool) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return "", 0, false
	}
	elem, err := strconv.Atoi(path[i+1:])
	if err != nil || elem < 0 {
		return "", 0, false
	}
	return path[:i], elem, true
}

// unescape decodes the JSON pointer escapes ~1 and ~0.
func unescape(s string) string {
	if !strings.Contains(s, "~") {
		return s
	}
	return strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
}
