// Package gltfio converts glTF 2.0 assets into scene documents.
package gltfio

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/logger"
	"github.com/Faultbox/gltf-viewer/internal/scene"
	"github.com/Faultbox/gltf-viewer/pkg/math"
)

var (
	// ErrUnsupportedExtension is returned when the asset requires an extension
	// the viewer cannot honor.
	ErrUnsupportedExtension = errors.New("unsupported required extension")
	// ErrInvalid is returned for structurally broken assets.
	ErrInvalid = errors.New("invalid glTF document")
)

// SupportedExtensions lists the extensions an asset may require.
var SupportedExtensions = []string{
	scene.ExtEmissiveStrength,
	scene.ExtIOR,
	scene.ExtTransmission,
	scene.ExtVolume,
	scene.ExtVolumeScatter,
	scene.ExtClearcoat,
	scene.ExtSheen,
	scene.ExtSpecular,
	scene.ExtIridescence,
	scene.ExtAnisotropy,
	scene.ExtDispersion,
	scene.ExtDiffuseTransmission,
	scene.ExtUnlit,
	scene.ExtTextureTransform,
	ExtLightsPunctual,
	ExtAnimationPointer,
	ExtNodeVisibility,
	ExtMeshInstancing,
	ExtPhysicsBodies,
	ExtImplicitShapes,
	ExtMeshQuantization,
	ExtTextureWebP,
}

// Load opens a .gltf or .glb file and converts it.
func Load(path string) (*scene.Document, error) {
	src, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	doc, err := FromDocument(src, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	doc.Name = filepath.Base(path)
	return doc, nil
}

// FromDocument converts a decoded glTF document. baseDir resolves relative
// image URIs; it may be empty when every image is embedded.
func FromDocument(src *gltf.Document, baseDir string) (*scene.Document, error) {
	for _, ext := range src.ExtensionsRequired {
		if !slices.Contains(SupportedExtensions, ext) {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, ext)
		}
	}

	l := &loader{src: src, doc: scene.NewDocument(), baseDir: baseDir}
	doc := l.doc
	doc.ExtensionsUsed = slices.Clone(src.ExtensionsUsed)
	doc.ExtensionsRequired = slices.Clone(src.ExtensionsRequired)
	doc.Scene = toIndex(src.Scene)

	l.images()
	l.textures()
	for _, m := range src.Materials {
		l.material(m)
	}
	for i, m := range src.Meshes {
		if err := l.mesh(i, m); err != nil {
			return nil, err
		}
	}
	l.cameras()
	l.lights()
	l.collisionFilters()
	for i, n := range src.Nodes {
		if err := l.node(i, n); err != nil {
			return nil, err
		}
	}
	for i, s := range src.Skins {
		if err := l.skin(i, s); err != nil {
			return nil, err
		}
	}
	for _, s := range src.Scenes {
		sc := &scene.Scene{Name: s.Name}
		for _, n := range s.Nodes {
			if int(n) >= len(doc.Nodes) {
				return nil, fmt.Errorf("%w: scene %q references node %d", ErrInvalid, s.Name, n)
			}
			sc.Nodes = append(sc.Nodes, int(n))
		}
		doc.Scenes = append(doc.Scenes, sc)
	}
	for i, a := range src.Animations {
		if err := l.animation(i, a); err != nil {
			return nil, err
		}
	}

	logger.Debug("glTF document converted",
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("materials", len(doc.Materials)),
		zap.Int("animations", len(doc.Animations)),
		zap.Int("images", len(doc.Images)))
	return doc, nil
}

type loader struct {
	src     *gltf.Document
	doc     *scene.Document
	baseDir string
}

func (l *loader) warn(msg string, fields ...zap.Field) {
	logger.Warn(msg, fields...)
}

func (l *loader) mesh(index int, src *gltf.Mesh) error {
	m := l.doc.NewMesh(src.Name)
	targets := 0
	for i, sp := range src.Primitives {
		p, err := l.primitive(sp)
		if err != nil {
			return fmt.Errorf("mesh %d primitive %d: %w", index, i, err)
		}
		targets = max(targets, len(p.Targets))
		m.Primitives = append(m.Primitives, p)
	}
	weights := make([]float32, targets)
	copy(weights, src.Weights)
	m.Weights.RestAt(weights)
	return nil
}

func (l *loader) primitive(src *gltf.Primitive) (*scene.Primitive, error) {
	p := &scene.Primitive{
		Mode:       drawMode(src.Mode),
		Material:   toIndex(src.Material),
		Attributes: make(map[string]scene.Stream, len(src.Attributes)),
	}
	if p.Material >= len(l.doc.Materials) {
		return nil, fmt.Errorf("%w: material %d out of range", ErrInvalid, p.Material)
	}
	for name, acr := range src.Attributes {
		s, err := readStream(l.src, acr)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		p.Attributes[name] = s
	}
	if src.Indices != nil {
		idx, err := readIndices(l.src, *src.Indices)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		p.Indices = idx
	}
	for t, target := range src.Targets {
		streams := make(map[string]scene.Stream, len(target))
		for name, acr := range target {
			s, err := readStream(l.src, acr)
			if err != nil {
				return nil, fmt.Errorf("target %d %s: %w", t, name, err)
			}
			streams[name] = s
		}
		p.Targets = append(p.Targets, streams)
	}

	pos, ok := src.Attributes[gltf.POSITION]
	if !ok {
		return p, nil
	}
	acr := l.src.Accessors[pos]
	if len(acr.Min) >= 3 && len(acr.Max) >= 3 && !acr.Normalized {
		p.Min = math.Vec3{X: acr.Min[0], Y: acr.Min[1], Z: acr.Min[2]}
		p.Max = math.Vec3{X: acr.Max[0], Y: acr.Max[1], Z: acr.Max[2]}
		p.Centroid = p.Min.Add(p.Max).Scale(0.5)
	} else {
		p.ComputeBounds()
	}
	return p, nil
}

func drawMode(m gltf.PrimitiveMode) scene.DrawMode {
	switch m {
	case gltf.PrimitivePoints:
		return scene.Points
	case gltf.PrimitiveLines:
		return scene.Lines
	case gltf.PrimitiveLineLoop:
		return scene.LineLoop
	case gltf.PrimitiveLineStrip:
		return scene.LineStrip
	case gltf.PrimitiveTriangleStrip:
		return scene.TriangleStrip
	case gltf.PrimitiveTriangleFan:
		return scene.TriangleFan
	default:
		return scene.Triangles
	}
}

func (l *loader) node(index int, src *gltf.Node) error {
	n := l.doc.NewNode(src.Name)
	n.Mesh = toIndex(src.Mesh)
	n.Skin = toIndex(src.Skin)
	n.Camera = toIndex(src.Camera)
	for _, c := range src.Children {
		if int(c) >= len(l.src.Nodes) {
			return fmt.Errorf("%w: node %d child %d out of range", ErrInvalid, index, c)
		}
		n.Children = append(n.Children, int(c))
	}
	if n.Mesh >= len(l.doc.Meshes) {
		return fmt.Errorf("%w: node %d mesh %d out of range", ErrInvalid, index, n.Mesh)
	}

	if mat := src.MatrixOrDefault(); mat != gltf.DefaultMatrix {
		m := math.Mat4(mat)
		n.Matrix = &m
	} else {
		n.Translation.RestAt(src.Translation)
		n.Rotation.RestAt(src.RotationOrDefault())
		n.Scale.RestAt(src.ScaleOrDefault())
	}

	if mesh := l.doc.Mesh(n.Mesh); mesh != nil {
		weights := slices.Clone(mesh.Weights.Value())
		copy(weights, src.Weights)
		n.Weights.RestAt(weights)
	}

	var light lightNodeExt
	if decodeExt(src.Extensions, ExtLightsPunctual, &light) && light.Light != nil {
		n.Light = *light.Light
	}
	var vis visibilityExt
	if decodeExt(src.Extensions, ExtNodeVisibility, &vis) && vis.Visible != nil && !*vis.Visible {
		n.Visible.RestAt(0)
	}
	if err := l.instances(n, src.Extensions); err != nil {
		return fmt.Errorf("node %d: %w", index, err)
	}
	l.rigidBody(n, src.Extensions)
	return nil
}

// instances reads EXT_mesh_gpu_instancing attribute accessors.
func (l *loader) instances(n *scene.Node, exts gltf.Extensions) error {
	var ext instancingExt
	if !decodeExt(exts, ExtMeshInstancing, &ext) || len(ext.Attributes) == 0 {
		return nil
	}
	streams := make(map[string][]float32, 3)
	count := -1
	for _, name := range []string{"TRANSLATION", "ROTATION", "SCALE"} {
		acr, ok := ext.Attributes[name]
		if !ok {
			continue
		}
		s, err := readStream(l.src, acr)
		if err != nil {
			return fmt.Errorf("instancing %s: %w", name, err)
		}
		streams[name] = s.Data
		if count < 0 || s.Count() < count {
			count = s.Count()
		}
	}
	for i := 0; i < count; i++ {
		inst := scene.Instance{Rotation: [4]float32{0, 0, 0, 1}, Scale: [3]float32{1, 1, 1}}
		if t := streams["TRANSLATION"]; t != nil {
			copy(inst.Translation[:], t[i*3:])
		}
		if r := streams["ROTATION"]; r != nil {
			copy(inst.Rotation[:], r[i*4:])
		}
		if s := streams["SCALE"]; s != nil {
			copy(inst.Scale[:], s[i*3:])
		}
		n.Instances = append(n.Instances, inst)
	}
	return nil
}

func (l *loader) skin(index int, src *gltf.Skin) error {
	sk := &scene.Skin{Name: src.Name, Skeleton: toIndex(src.Skeleton)}
	for _, j := range src.Joints {
		if int(j) >= len(l.doc.Nodes) {
			return fmt.Errorf("%w: skin %d joint %d out of range", ErrInvalid, index, j)
		}
		sk.Joints = append(sk.Joints, int(j))
	}
	sk.InverseBindMatrices = make([][16]float32, len(sk.Joints))
	for i := range sk.InverseBindMatrices {
		sk.InverseBindMatrices[i] = math.Identity()
	}
	if src.InverseBindMatrices != nil {
		data, err := readFloats(l.src, *src.InverseBindMatrices)
		if err != nil {
			return fmt.Errorf("skin %d: %w", index, err)
		}
		for i := range sk.InverseBindMatrices {
			if len(data) < (i+1)*16 {
				break
			}
			copy(sk.InverseBindMatrices[i][:], data[i*16:])
		}
	}
	l.doc.Skins = append(l.doc.Skins, sk)
	return nil
}

func (l *loader) cameras() {
	for _, c := range l.src.Cameras {
		if o := c.Orthographic; o != nil {
			cam := l.doc.NewCamera(c.Name, scene.Orthographic)
			cam.XMag.RestAt(o.Xmag)
			cam.YMag.RestAt(o.Ymag)
			cam.ZNear.RestAt(o.Znear)
			cam.ZFar.RestAt(o.Zfar)
			continue
		}
		cam := l.doc.NewCamera(c.Name, scene.Perspective)
		p := c.Perspective
		if p == nil {
			continue
		}
		cam.YFov.RestAt(p.Yfov)
		cam.ZNear.RestAt(p.Znear)
		if p.AspectRatio != nil {
			cam.AspectRatio.RestAt(*p.AspectRatio)
		}
		if p.Zfar != nil {
			cam.ZFar.RestAt(*p.Zfar)
		}
	}
}

func (l *loader) lights() {
	var ext lightsDocExt
	if !decodeExt(l.src.Extensions, ExtLightsPunctual, &ext) {
		return
	}
	for _, src := range ext.Lights {
		typ := scene.Point
		switch src.Type {
		case "directional":
			typ = scene.Directional
		case "spot":
			typ = scene.Spot
		}
		light := l.doc.NewLight(src.Name, typ)
		if src.Color != nil {
			light.Color.RestAt(*src.Color)
		}
		if src.Intensity != nil {
			light.Intensity.RestAt(*src.Intensity)
		}
		if src.Range != nil && *src.Range > 0 {
			light.Range.RestAt(*src.Range)
		}
		if s := src.Spot; s != nil {
			if s.InnerConeAngle != nil {
				light.InnerConeAngle.RestAt(*s.InnerConeAngle)
			}
			if s.OuterConeAngle != nil {
				light.OuterConeAngle.RestAt(*s.OuterConeAngle)
			}
		}
	}
}
