package gltfio

import (
	"bytes"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/gltf-viewer/internal/pointer"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

// triangleDocument has one node carrying an indexed triangle mesh.
func triangleDocument() *gltf.Document {
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {2, 0, 0}, {0, 4, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Materials = []*gltf.Material{{Name: "red"}}
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: gltf.Attributes{gltf.POSITION: pos},
			Indices:    gltf.Index(idx),
			Material:   gltf.Index(0),
		}},
	}}
	doc.Nodes = []*gltf.Node{{Name: "root", Mesh: gltf.Index(0), Translation: [3]float32{1, 2, 3}}}
	doc.Scenes = []*gltf.Scene{{Name: "main", Nodes: []uint32{0}}}
	doc.Scene = gltf.Index(0)
	return doc
}

func TestFromDocumentMesh(t *testing.T) {
	doc, err := FromDocument(triangleDocument(), "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if len(doc.Meshes) != 1 || len(doc.Meshes[0].Primitives) != 1 {
		t.Fatalf("meshes = %d, want one mesh with one primitive", len(doc.Meshes))
	}
	p := doc.Meshes[0].Primitives[0]
	if p.Mode != scene.Triangles {
		t.Errorf("mode = %v, want triangles", p.Mode)
	}
	if p.VertexCount() != 3 {
		t.Errorf("vertex count = %d, want 3", p.VertexCount())
	}
	if !reflect.DeepEqual(p.Indices, []uint32{0, 1, 2}) {
		t.Errorf("indices = %v", p.Indices)
	}
	if p.Material != 0 {
		t.Errorf("material = %d, want 0", p.Material)
	}
	if p.Max.X != 2 || p.Max.Y != 4 || p.Centroid.X != 1 || p.Centroid.Y != 2 {
		t.Errorf("bounds = %v..%v centroid %v", p.Min, p.Max, p.Centroid)
	}

	n := doc.Nodes[0]
	if n.Translation.Value() != [3]float32{1, 2, 3} {
		t.Errorf("translation = %v", n.Translation.Value())
	}
	if n.Rotation.Value() != [4]float32{0, 0, 0, 1} || n.Scale.Value() != [3]float32{1, 1, 1} {
		t.Errorf("rotation/scale not defaulted: %v %v", n.Rotation.Value(), n.Scale.Value())
	}
	if doc.Scene != 0 || doc.ActiveScene(-1).Name != "main" {
		t.Errorf("active scene = %+v", doc.ActiveScene(-1))
	}
}

func TestRequiredExtensions(t *testing.T) {
	tests := []struct {
		name     string
		required []string
		wantErr  bool
	}{
		{"none", nil, false},
		{"supported", []string{ExtLightsPunctual, scene.ExtTransmission}, false},
		{"unsupported", []string{"KHR_draco_mesh_compression"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := triangleDocument()
			src.ExtensionsRequired = tt.required
			_, err := FromDocument(src, "")
			if got := errors.Is(err, ErrUnsupportedExtension); got != tt.wantErr {
				t.Errorf("err = %v, want unsupported %v", err, tt.wantErr)
			}
		})
	}
}

func TestMorphWeights(t *testing.T) {
	src := triangleDocument()
	delta := modeler.WritePosition(src, [][3]float32{{0, 1, 0}, {0, 1, 0}, {0, 1, 0}})
	src.Meshes[0].Primitives[0].Targets = []gltf.Attributes{{gltf.POSITION: delta}, {gltf.POSITION: delta}}
	src.Meshes[0].Weights = []float32{0.25}
	src.Nodes[0].Weights = []float32{0.5, 0.75}

	doc, err := FromDocument(src, "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if got := doc.Meshes[0].Weights.Value(); !reflect.DeepEqual(got, []float32{0.25, 0}) {
		t.Errorf("mesh weights = %v, want [0.25 0]", got)
	}
	if got := doc.Nodes[0].Weights.Value(); !reflect.DeepEqual(got, []float32{0.5, 0.75}) {
		t.Errorf("node weights = %v, want [0.5 0.75]", got)
	}
}

func TestAnimationChannels(t *testing.T) {
	src := triangleDocument()
	in := modeler.WriteAccessor(src, gltf.TargetNone, []float32{0, 1})
	out := modeler.WriteAccessor(src, gltf.TargetNone, [][3]float32{{0, 0, 0}, {1, 0, 0}})
	alpha := modeler.WriteAccessor(src, gltf.TargetNone, []float32{1, 0})
	src.Animations = []*gltf.Animation{{
		Name: "move",
		Samplers: []*gltf.AnimationSampler{
			{Input: in, Output: out, Interpolation: gltf.InterpolationStep},
			{Input: in, Output: alpha},
		},
		Channels: []*gltf.Channel{
			{Sampler: gltf.Index(0), Target: gltf.ChannelTarget{Node: gltf.Index(0), Path: gltf.TRSTranslation}},
			{Sampler: gltf.Index(1), Target: gltf.ChannelTarget{
				Extensions: gltf.Extensions{ExtAnimationPointer: json.RawMessage(`{"pointer":"/materials/0/alphaCutoff"}`)},
			}},
			{Sampler: gltf.Index(1), Target: gltf.ChannelTarget{}},
		},
	}}

	doc, err := FromDocument(src, "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	a := doc.Animations[0]
	want := []scene.Channel{
		{Sampler: 0, Pointer: pointer.ForNode(0, "translation")},
		{Sampler: 1, Pointer: "/materials/0/alphaCutoff"},
	}
	if !reflect.DeepEqual(a.Channels, want) {
		t.Errorf("channels = %+v, want %+v", a.Channels, want)
	}
	if a.Samplers[0].Interpolation != scene.Step || a.Samplers[1].Interpolation != scene.Linear {
		t.Errorf("interpolation = %v, %v", a.Samplers[0].Interpolation, a.Samplers[1].Interpolation)
	}
	if !reflect.DeepEqual(a.Samplers[0].Output, []float32{0, 0, 0, 1, 0, 0}) {
		t.Errorf("output = %v", a.Samplers[0].Output)
	}
}

func TestMaterialExtensions(t *testing.T) {
	src := triangleDocument()
	src.Textures = []*gltf.Texture{{}}
	src.Materials[0] = &gltf.Material{
		Name:      "glass",
		AlphaMode: gltf.AlphaBlend,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorTexture: &gltf.TextureInfo{
				Index:      0,
				Extensions: gltf.Extensions{scene.ExtTextureTransform: json.RawMessage(`{"offset":[0.5,0],"scale":[2,2]}`)},
			},
		},
		Extensions: gltf.Extensions{
			scene.ExtTransmission: json.RawMessage(`{"transmissionFactor":0.8,"transmissionTexture":{"index":0,"texCoord":1}}`),
			scene.ExtIOR:          json.RawMessage(`{"ior":1.33}`),
			scene.ExtUnlit:        json.RawMessage(`{}`),
		},
	}

	doc, err := FromDocument(src, "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	m := doc.Materials[0]
	if m.AlphaMode != scene.AlphaBlend {
		t.Errorf("alpha mode = %v, want blend", m.AlphaMode)
	}
	for _, ext := range []string{scene.ExtTransmission, scene.ExtIOR, scene.ExtUnlit, scene.ExtTextureTransform} {
		if !m.HasExtension(ext) {
			t.Errorf("missing extension %s", ext)
		}
	}
	if m.TransmissionFactor.Value() != 0.8 || m.IOR.Value() != 1.33 {
		t.Errorf("transmission = %v, ior = %v", m.TransmissionFactor.Value(), m.IOR.Value())
	}
	if slot := m.Textures[scene.TransmissionTexture]; slot == nil || slot.TexCoord != 1 {
		t.Errorf("transmission texture slot = %+v", slot)
	}
	base := m.Textures[scene.BaseColorTexture]
	if base == nil || !base.Transformed || base.Offset.Value() != [2]float32{0.5, 0} || base.Scale.Value() != [2]float32{2, 2} {
		t.Errorf("base color slot = %+v", base)
	}
}

func TestLightsAndVisibility(t *testing.T) {
	src := triangleDocument()
	src.Extensions = gltf.Extensions{
		ExtLightsPunctual: json.RawMessage(`{"lights":[
			{"type":"directional","intensity":3},
			{"type":"spot","color":[1,0,0],"range":10,"spot":{"outerConeAngle":0.5}}]}`),
	}
	src.Nodes[0].Extensions = gltf.Extensions{
		ExtLightsPunctual: json.RawMessage(`{"light":1}`),
		ExtNodeVisibility: json.RawMessage(`{"visible":false}`),
	}

	doc, err := FromDocument(src, "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if len(doc.Lights) != 2 {
		t.Fatalf("lights = %d, want 2", len(doc.Lights))
	}
	if doc.Lights[0].Type != scene.Directional || doc.Lights[0].Intensity.Value() != 3 || doc.Lights[0].Range.IsDefined() {
		t.Errorf("light 0 = %+v", doc.Lights[0])
	}
	spot := doc.Lights[1]
	if spot.Type != scene.Spot || spot.Color.Value() != [3]float32{1, 0, 0} || spot.Range.Value() != 10 || spot.OuterConeAngle.Value() != 0.5 {
		t.Errorf("light 1 = %+v", spot)
	}
	n := doc.Nodes[0]
	if n.Light != 1 || n.IsVisible() {
		t.Errorf("node light = %d visible = %v", n.Light, n.IsVisible())
	}
}

func TestInstancing(t *testing.T) {
	src := triangleDocument()
	tr := modeler.WriteAccessor(src, gltf.TargetNone, [][3]float32{{1, 0, 0}, {2, 0, 0}})
	src.Nodes[0].Extensions = gltf.Extensions{
		ExtMeshInstancing: json.RawMessage(`{"attributes":{"TRANSLATION":` + jsonIndex(tr) + `}}`),
	}
	doc, err := FromDocument(src, "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	want := []scene.Instance{
		{Translation: [3]float32{1, 0, 0}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
		{Translation: [3]float32{2, 0, 0}, Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}},
	}
	if !reflect.DeepEqual(doc.Nodes[0].Instances, want) {
		t.Errorf("instances = %+v", doc.Nodes[0].Instances)
	}
}

func TestRigidBodies(t *testing.T) {
	src := triangleDocument()
	src.Nodes = append(src.Nodes, &gltf.Node{Name: "floor"}, &gltf.Node{Name: "hull", Mesh: gltf.Index(0)})
	src.Extensions = gltf.Extensions{
		ExtImplicitShapes: json.RawMessage(`{"shapes":[{"type":"box","box":{"size":[2,1,2]}},
			{"type":"capsule","capsule":{"height":1,"radiusTop":0.25,"radiusBottom":0.5}}]}`),
		ExtPhysicsBodies: json.RawMessage(`{"collisionFilters":[{"collisionSystems":["world"]}]}`),
	}
	src.Nodes[0].Extensions = gltf.Extensions{ExtPhysicsBodies: json.RawMessage(
		`{"motion":{"mass":2,"linearVelocity":[0,1,0]},"collider":{"geometry":{"shape":1}}}`)}
	src.Nodes[1].Extensions = gltf.Extensions{ExtPhysicsBodies: json.RawMessage(
		`{"collider":{"geometry":{"shape":0},"collisionFilter":0}}`)}
	src.Nodes[2].Extensions = gltf.Extensions{ExtPhysicsBodies: json.RawMessage(
		`{"motion":{"isKinematic":true},"trigger":{"geometry":{"node":2,"convexHull":true}}}`)}

	doc, err := FromDocument(src, "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	tests := []struct {
		node   int
		motion scene.MotionType
		shape  scene.ShapeType
	}{
		{0, scene.Dynamic, scene.ShapeCapsule},
		{1, scene.Static, scene.ShapeBox},
		{2, scene.Kinematic, scene.ShapeMesh},
	}
	for _, tt := range tests {
		b := doc.Nodes[tt.node].Physics
		if b == nil || b.Collider == nil {
			t.Fatalf("node %d: missing body", tt.node)
		}
		if b.Motion != tt.motion || b.Collider.Shape != tt.shape {
			t.Errorf("node %d: motion %v shape %v, want %v %v", tt.node, b.Motion, b.Collider.Shape, tt.motion, tt.shape)
		}
	}
	if b := doc.Nodes[0].Physics; b.Mass != 2 || b.LinearVelocity != [3]float32{0, 1, 0} || b.Collider.Radius != 0.5 {
		t.Errorf("dynamic body = %+v collider %+v", b, b.Collider)
	}
	if c := doc.Nodes[1].Physics.Collider; c.Size != [3]float32{2, 1, 2} || c.Filter != 0 {
		t.Errorf("box collider = %+v", c)
	}
	if b := doc.Nodes[2].Physics; !b.Trigger || b.Collider.Mesh != 0 {
		t.Errorf("trigger = %+v", b)
	}
	if len(doc.CollisionFilters) != 1 || doc.CollisionFilters[0].CollisionSystems[0] != "world" {
		t.Errorf("filters = %+v", doc.CollisionFilters)
	}
}

func TestEmbeddedImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	src := triangleDocument()
	idx, err := modeler.WriteImage(src, "checker", "image/png", &buf)
	if err != nil {
		t.Fatalf("WriteImage: %v", err)
	}
	src.Samplers = []*gltf.Sampler{{MagFilter: gltf.MagNearest, WrapS: gltf.WrapClampToEdge}}
	src.Textures = []*gltf.Texture{{Source: gltf.Index(idx), Sampler: gltf.Index(0)}}

	doc, err := FromDocument(src, "")
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	got := doc.Images[0]
	if got.Width != 2 || got.Height != 1 {
		t.Fatalf("size = %dx%d, want 2x1", got.Width, got.Height)
	}
	if !bytes.Equal(got.Pixels, []byte{255, 0, 0, 255, 0, 0, 255, 255}) {
		t.Errorf("pixels = %v", got.Pixels)
	}
	s := doc.Textures[0].Sampler
	if s.MagFilter != glNearest || s.WrapS != glClampToEdge || s.WrapT != glRepeat {
		t.Errorf("sampler = %+v", s)
	}
}

func TestImageURITarga(t *testing.T) {
	dir := t.TempDir()
	// Uncompressed true-color 2x1, 32 bpp, top-left origin. Pixels are BGRA.
	header := []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 1, 0, 32, 0x28}
	pixels := []byte{0, 0, 255, 255, 255, 0, 0, 255}
	if err := os.WriteFile(filepath.Join(dir, "red blue.tga"), append(header, pixels...), 0o644); err != nil {
		t.Fatal(err)
	}

	src := triangleDocument()
	src.Images = []*gltf.Image{{URI: "red%20blue.tga"}}
	doc, err := FromDocument(src, dir)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	got := doc.Images[0]
	if got.Width != 2 || got.Height != 1 {
		t.Fatalf("size = %dx%d, want 2x1", got.Width, got.Height)
	}
	if !bytes.Equal(got.Pixels, []byte{255, 0, 0, 255, 0, 0, 255, 255}) {
		t.Errorf("pixels = %v", got.Pixels)
	}
}

func TestMissingImageKeepsIndex(t *testing.T) {
	src := triangleDocument()
	src.Images = []*gltf.Image{{URI: "missing.png"}}
	doc, err := FromDocument(src, t.TempDir())
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if len(doc.Images) != 1 || doc.Images[0].Pixels != nil {
		t.Errorf("images = %+v", doc.Images)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.glb")
	if err := gltf.SaveBinary(triangleDocument(), path); err != nil {
		t.Fatalf("SaveBinary: %v", err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if doc.Name != "tri.glb" || len(doc.Nodes) != 1 {
		t.Errorf("doc = %q with %d nodes", doc.Name, len(doc.Nodes))
	}
}

func TestFlattenNormalized(t *testing.T) {
	tests := []struct {
		name       string
		data       any
		normalized bool
		want       []float32
	}{
		{"float vectors", [][2]float32{{1, 2}, {3, 4}}, false, []float32{1, 2, 3, 4}},
		{"uint8 normalized", [][4]uint8{{0, 255, 51, 255}}, true, []float32{0, 1, 0.2, 1}},
		{"uint16 raw", []uint16{7, 9}, false, []float32{7, 9}},
		{"int16 normalized", [][2]int16{{32767, -32768}}, true, []float32{1, -1}},
		{"int8 normalized", []int8{-127}, true, []float32{-1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flatten(nil, reflect.ValueOf(tt.data), tt.normalized)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("flatten = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInvalidReferences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*gltf.Document)
	}{
		{"scene node", func(d *gltf.Document) { d.Scenes[0].Nodes = []uint32{5} }},
		{"child", func(d *gltf.Document) { d.Nodes[0].Children = []uint32{3} }},
		{"material", func(d *gltf.Document) { d.Meshes[0].Primitives[0].Material = gltf.Index(4) }},
		{"channel sampler", func(d *gltf.Document) {
			d.Animations = []*gltf.Animation{{Channels: []*gltf.Channel{{Sampler: gltf.Index(0)}}}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := triangleDocument()
			tt.mutate(src)
			if _, err := FromDocument(src, ""); !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func jsonIndex(i uint32) string {
	b, _ := json.Marshal(i)
	return string(b)
}
