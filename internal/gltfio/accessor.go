package gltfio

import (
	"fmt"
	"reflect"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/gltf-viewer/internal/scene"
)

// readStream reads accessor index into flat float32 form. Normalized integer
// accessors are mapped to [0, 1] or [-1, 1].
func readStream(doc *gltf.Document, index uint32) (scene.Stream, error) {
	if int(index) >= len(doc.Accessors) {
		return scene.Stream{}, fmt.Errorf("accessor %d out of range", index)
	}
	acr := doc.Accessors[index]
	data, err := modeler.ReadAccessor(doc, acr, nil)
	if err != nil {
		return scene.Stream{}, fmt.Errorf("reading accessor %d: %w", index, err)
	}
	components := int(acr.Type.Components())
	out := make([]float32, 0, int(acr.Count)*components)
	out = flatten(out, reflect.ValueOf(data), acr.Normalized)
	return scene.Stream{Components: components, Data: out}, nil
}

// readFloats reads a scalar or vector accessor as a flat slice.
func readFloats(doc *gltf.Document, index uint32) ([]float32, error) {
	s, err := readStream(doc, index)
	return s.Data, err
}

// flatten appends every number found in v, which is a slice of scalars or of
// (nested) fixed-size arrays as returned by modeler.ReadAccessor.
func flatten(dst []float32, v reflect.Value, normalized bool) []float32 {
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			dst = flatten(dst, v.Index(i), normalized)
		}
	case reflect.Float32, reflect.Float64:
		dst = append(dst, float32(v.Float()))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		f := float32(v.Uint())
		if normalized {
			f /= float32(uint64(1)<<(8*v.Type().Size()) - 1)
		}
		dst = append(dst, f)
	case reflect.Int8, reflect.Int16:
		f := float32(v.Int())
		if normalized {
			f = max(f/float32(int64(1)<<(8*v.Type().Size()-1)-1), -1)
		}
		dst = append(dst, f)
	}
	return dst
}

func readIndices(doc *gltf.Document, index uint32) ([]uint32, error) {
	if int(index) >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", index)
	}
	return modeler.ReadIndices(doc, doc.Accessors[index], nil)
}

func toIndex(p *uint32) int {
	if p == nil {
		return scene.None
	}
	return int(*p)
}
