package scene

import (
	"strings"

	"github.com/chewxy/math32"

	"github.com/Faultbox/gltf-viewer/internal/property"
)

// AlphaMode is the material alpha mode.
type AlphaMode int

const (
	AlphaOpaque AlphaMode = iota
	AlphaMask
	AlphaBlend
)

// Material extension names the renderer understands.
const (
	ExtEmissiveStrength    = "KHR_materials_emissive_strength"
	ExtIOR                 = "KHR_materials_ior"
	ExtTransmission        = "KHR_materials_transmission"
	ExtVolume              = "KHR_materials_volume"
	ExtVolumeScatter       = "KHR_materials_volume_scatter"
	ExtClearcoat           = "KHR_materials_clearcoat"
	ExtSheen               = "KHR_materials_sheen"
	ExtSpecular            = "KHR_materials_specular"
	ExtIridescence         = "KHR_materials_iridescence"
	ExtAnisotropy          = "KHR_materials_anisotropy"
	ExtDispersion          = "KHR_materials_dispersion"
	ExtDiffuseTransmission = "KHR_materials_diffuse_transmission"
	ExtUnlit               = "KHR_materials_unlit"
	ExtTextureTransform    = "KHR_texture_transform"
)

// TextureKind identifies a texture slot of a material.
type TextureKind int

const (
	BaseColorTexture TextureKind = iota
	MetallicRoughnessTexture
	NormalTexture
	OcclusionTexture
	EmissiveTexture
	TransmissionTexture
	ThicknessTexture
	ClearcoatTexture
	ClearcoatRoughnessTexture
	ClearcoatNormalTexture
	SheenColorTexture
	SheenRoughnessTexture
	SpecularTexture
	SpecularColorTexture
	IridescenceTexture
	IridescenceThicknessTexture
	AnisotropyTexture
	DiffuseTransmissionTexture
	DiffuseTransmissionColorTexture
)

// TextureSlotPaths maps the pointer path of each texture slot, relative to the
// material, to its kind.
var TextureSlotPaths = map[string]TextureKind{
	"pbrMetallicRoughness/baseColorTexture":         BaseColorTexture,
	"pbrMetallicRoughness/metallicRoughnessTexture": MetallicRoughnessTexture,
	"normalTexture":    NormalTexture,
	"occlusionTexture": OcclusionTexture,
	"emissiveTexture":  EmissiveTexture,
	"extensions/" + ExtTransmission + "/transmissionTexture":                    TransmissionTexture,
	"extensions/" + ExtVolume + "/thicknessTexture":                             ThicknessTexture,
	"extensions/" + ExtClearcoat + "/clearcoatTexture":                          ClearcoatTexture,
	"extensions/" + ExtClearcoat + "/clearcoatRoughnessTexture":                 ClearcoatRoughnessTexture,
	"extensions/" + ExtClearcoat + "/clearcoatNormalTexture":                    ClearcoatNormalTexture,
	"extensions/" + ExtSheen + "/sheenColorTexture":                             SheenColorTexture,
	"extensions/" + ExtSheen + "/sheenRoughnessTexture":                         SheenRoughnessTexture,
	"extensions/" + ExtSpecular + "/specularTexture":                            SpecularTexture,
	"extensions/" + ExtSpecular + "/specularColorTexture":                       SpecularColorTexture,
	"extensions/" + ExtIridescence + "/iridescenceTexture":                      IridescenceTexture,
	"extensions/" + ExtIridescence + "/iridescenceThicknessTexture":             IridescenceThicknessTexture,
	"extensions/" + ExtAnisotropy + "/anisotropyTexture":                        AnisotropyTexture,
	"extensions/" + ExtDiffuseTransmission + "/diffuseTransmissionTexture":      DiffuseTransmissionTexture,
	"extensions/" + ExtDiffuseTransmission + "/diffuseTransmissionColorTexture": DiffuseTransmissionColorTexture,
}

// TextureSlot references a glTF texture with its KHR_texture_transform.
type TextureSlot struct {
	Index    int
	TexCoord int
	Offset   property.Animatable[[2]float32]
	Rotation property.Animatable[float32]
	Scale    property.Animatable[[2]float32]
	// Transformed is set when the asset declares KHR_texture_transform on the slot.
	Transformed bool
}

// UVMatrix returns the KHR_texture_transform matrix (translation * rotation *
// scale) as a column-major 3×3.
func (s *TextureSlot) UVMatrix() [9]float32 {
	off, sc := s.Offset.Value(), s.Scale.Value()
	r := s.Rotation.Value()
	sin, cos := math32.Sin(r), math32.Cos(r)
	return [9]float32{
		cos * sc[0], -sin * sc[0], 0,
		sin * sc[1], cos * sc[1], 0,
		off[0], off[1], 1,
	}
}

// TextureTransformProperties is the fixed set of animatable texture transform
// properties, keyed by the path after <slot>/extensions/KHR_texture_transform/.
var TextureTransformProperties = map[string]func(*TextureSlot) property.Property{
	"offset":   func(s *TextureSlot) property.Property { return &s.Offset },
	"rotation": func(s *TextureSlot) property.Property { return &s.Rotation },
	"scale":    func(s *TextureSlot) property.Property { return &s.Scale },
}

// Material is a glTF PBR material with the supported extensions.
type Material struct {
	Name        string
	AlphaMode   AlphaMode
	DoubleSided bool

	BaseColorFactor   property.Animatable[[4]float32]
	MetallicFactor    property.Animatable[float32]
	RoughnessFactor   property.Animatable[float32]
	EmissiveFactor    property.Animatable[[3]float32]
	AlphaCutoff       property.Animatable[float32]
	NormalScale       property.Animatable[float32]
	OcclusionStrength property.Animatable[float32]

	EmissiveStrength               property.Animatable[float32]
	IOR                            property.Animatable[float32]
	TransmissionFactor             property.Animatable[float32]
	ThicknessFactor                property.Animatable[float32]
	AttenuationDistance            property.Animatable[float32]
	AttenuationColor               property.Animatable[[3]float32]
	MultiscatterColor              property.Animatable[[3]float32]
	ScatterAnisotropy              property.Animatable[float32]
	ClearcoatFactor                property.Animatable[float32]
	ClearcoatRoughness             property.Animatable[float32]
	SheenColorFactor               property.Animatable[[3]float32]
	SheenRoughnessFactor           property.Animatable[float32]
	SpecularFactor                 property.Animatable[float32]
	SpecularColorFactor            property.Animatable[[3]float32]
	IridescenceFactor              property.Animatable[float32]
	IridescenceIOR                 property.Animatable[float32]
	IridescenceThicknessMin        property.Animatable[float32]
	IridescenceThicknessMax        property.Animatable[float32]
	AnisotropyStrength             property.Animatable[float32]
	AnisotropyRotation             property.Animatable[float32]
	Dispersion                     property.Animatable[float32]
	DiffuseTransmissionFactor      property.Animatable[float32]
	DiffuseTransmissionColorFactor property.Animatable[[3]float32]

	Textures map[TextureKind]*TextureSlot

	// Extensions lists the material extensions the asset declares on this material.
	Extensions map[string]bool

	tracker *property.Tracker
}

// NewMaterial appends a material with glTF default factors.
func (d *Document) NewMaterial(name string) *Material {
	tr := d.tracker
	m := &Material{
		Name:              name,
		BaseColorFactor:   property.New(tr, [4]float32{1, 1, 1, 1}),
		MetallicFactor:    property.New(tr, float32(1)),
		RoughnessFactor:   property.New(tr, float32(1)),
		EmissiveFactor:    property.New(tr, [3]float32{0, 0, 0}),
		AlphaCutoff:       property.New(tr, float32(0.5)),
		NormalScale:       property.New(tr, float32(1)),
		OcclusionStrength: property.New(tr, float32(1)),

		EmissiveStrength:               property.New(tr, float32(1)),
		IOR:                            property.New(tr, float32(1.5)),
		TransmissionFactor:             property.New(tr, float32(0)),
		ThicknessFactor:                property.New(tr, float32(0)),
		AttenuationDistance:            property.NewUnset[float32](tr),
		AttenuationColor:               property.New(tr, [3]float32{1, 1, 1}),
		MultiscatterColor:              property.New(tr, [3]float32{0, 0, 0}),
		ScatterAnisotropy:              property.New(tr, float32(0)),
		ClearcoatFactor:                property.New(tr, float32(0)),
		ClearcoatRoughness:             property.New(tr, float32(0)),
		SheenColorFactor:               property.New(tr, [3]float32{0, 0, 0}),
		SheenRoughnessFactor:           property.New(tr, float32(0)),
		SpecularFactor:                 property.New(tr, float32(1)),
		SpecularColorFactor:            property.New(tr, [3]float32{1, 1, 1}),
		IridescenceFactor:              property.New(tr, float32(0)),
		IridescenceIOR:                 property.New(tr, float32(1.3)),
		IridescenceThicknessMin:        property.New(tr, float32(100)),
		IridescenceThicknessMax:        property.New(tr, float32(400)),
		AnisotropyStrength:             property.New(tr, float32(0)),
		AnisotropyRotation:             property.New(tr, float32(0)),
		Dispersion:                     property.New(tr, float32(0)),
		DiffuseTransmissionFactor:      property.New(tr, float32(0)),
		DiffuseTransmissionColorFactor: property.New(tr, [3]float32{1, 1, 1}),

		Textures:   make(map[TextureKind]*TextureSlot),
		Extensions: make(map[string]bool),
		tracker:    tr,
	}
	d.Materials = append(d.Materials, m)
	return m
}

// SetTexture attaches a texture to a slot and returns the slot.
func (m *Material) SetTexture(kind TextureKind, index, texCoord int) *TextureSlot {
	slot := &TextureSlot{
		Index:    index,
		TexCoord: texCoord,
		Offset:   property.New(m.tracker, [2]float32{0, 0}),
		Rotation: property.New(m.tracker, float32(0)),
		Scale:    property.New(m.tracker, [2]float32{1, 1}),
	}
	m.Textures[kind] = slot
	return slot
}

// HasTexture reports whether a slot is bound.
func (m *Material) HasTexture(kind TextureKind) bool {
	slot, ok := m.Textures[kind]
	return ok && slot.Index >= 0
}

// HasExtension reports whether the material declares the extension.
func (m *Material) HasExtension(name string) bool {
	return m.Extensions[name]
}

// IsUnlit reports KHR_materials_unlit.
func (m *Material) IsUnlit() bool {
	return m.HasExtension(ExtUnlit)
}

// IsTransmissive reports whether the material needs the transmission background.
func (m *Material) IsTransmissive() bool {
	return m.HasExtension(ExtTransmission) || m.HasExtension(ExtDiffuseTransmission)
}

// IsVolumeScatter reports whether the material needs the scatter pre-pass.
func (m *Material) IsVolumeScatter() bool {
	return m.HasExtension(ExtVolumeScatter)
}

// MaterialProperties is the fixed set of animatable material factors, keyed by the
// path after /materials/{i}/.
var MaterialProperties = map[string]func(*Material) property.Property{
	"pbrMetallicRoughness/baseColorFactor": func(m *Material) property.Property { return &m.BaseColorFactor },
	"pbrMetallicRoughness/metallicFactor":  func(m *Material) property.Property { return &m.MetallicFactor },
	"pbrMetallicRoughness/roughnessFactor": func(m *Material) property.Property { return &m.RoughnessFactor },
	"emissiveFactor":                       func(m *Material) property.Property { return &m.EmissiveFactor },
	"alphaCutoff":                          func(m *Material) property.Property { return &m.AlphaCutoff },
	"normalTexture/scale":                  func(m *Material) property.Property { return &m.NormalScale },
	"occlusionTexture/strength":            func(m *Material) property.Property { return &m.OcclusionStrength },

	"extensions/" + ExtEmissiveStrength + "/emissiveStrength":       func(m *Material) property.Property { return &m.EmissiveStrength },
	"extensions/" + ExtIOR + "/ior":                                 func(m *Material) property.Property { return &m.IOR },
	"extensions/" + ExtTransmission + "/transmissionFactor":         func(m *Material) property.Property { return &m.TransmissionFactor },
	"extensions/" + ExtVolume + "/thicknessFactor":                  func(m *Material) property.Property { return &m.ThicknessFactor },
	"extensions/" + ExtVolume + "/attenuationDistance":              func(m *Material) property.Property { return &m.AttenuationDistance },
	"extensions/" + ExtVolume + "/attenuationColor":                 func(m *Material) property.Property { return &m.AttenuationColor },
	"extensions/" + ExtVolumeScatter + "/multiscatterColor":         func(m *Material) property.Property { return &m.MultiscatterColor },
	"extensions/" + ExtVolumeScatter + "/scatterAnisotropy":         func(m *Material) property.Property { return &m.ScatterAnisotropy },
	"extensions/" + ExtClearcoat + "/clearcoatFactor":               func(m *Material) property.Property { return &m.ClearcoatFactor },
	"extensions/" + ExtClearcoat + "/clearcoatRoughnessFactor":      func(m *Material) property.Property { return &m.ClearcoatRoughness },
	"extensions/" + ExtSheen + "/sheenColorFactor":                  func(m *Material) property.Property { return &m.SheenColorFactor },
	"extensions/" + ExtSheen + "/sheenRoughnessFactor":              func(m *Material) property.Property { return &m.SheenRoughnessFactor },
	"extensions/" + ExtSpecular + "/specularFactor":                 func(m *Material) property.Property { return &m.SpecularFactor },
	"extensions/" + ExtSpecular + "/specularColorFactor":            func(m *Material) property.Property { return &m.SpecularColorFactor },
	"extensions/" + ExtIridescence + "/iridescenceFactor":           func(m *Material) property.Property { return &m.IridescenceFactor },
	"extensions/" + ExtIridescence + "/iridescenceIor":              func(m *Material) property.Property { return &m.IridescenceIOR },
	"extensions/" + ExtIridescence + "/iridescenceThicknessMinimum": func(m *Material) property.Property { return &m.IridescenceThicknessMin },
	"extensions/" + ExtIridescence + "/iridescenceThicknessMaximum": func(m *Material) property.Property { return &m.IridescenceThicknessMax },
	"extensions/" + ExtAnisotropy + "/anisotropyStrength":           func(m *Material) property.Property { return &m.AnisotropyStrength },
	"extensions/" + ExtAnisotropy + "/anisotropyRotation":           func(m *Material) property.Property { return &m.AnisotropyRotation },
	"extensions/" + ExtDispersion + "/dispersion":                   func(m *Material) property.Property { return &m.Dispersion },
	"extensions/" + ExtDiffuseTransmission + "/diffuseTransmissionFactor": func(m *Material) property.Property {
		return &m.DiffuseTransmissionFactor
	},
	"extensions/" + ExtDiffuseTransmission + "/diffuseTransmissionColorFactor": func(m *Material) property.Property {
		return &m.DiffuseTransmissionColorFactor
	},
}

// Property looks up an animatable material property by its path relative to the
// material, including texture transform paths. The bool is false for unknown paths
// and for texture transforms on unbound slots.
func (m *Material) Property(path string) (property.Property, bool) {
	if get, ok := MaterialProperties[path]; ok {
		return get(m), true
	}

	slotPath, name, ok := strings.Cut(path, "/extensions/"+ExtTextureTransform+"/")
	if !ok {
		return nil, false
	}
	kind, ok := TextureSlotPaths[slotPath]
	if !ok {
		return nil, false
	}
	get, ok := TextureTransformProperties[name]
	if !ok {
		return nil, false
	}
	slot, ok := m.Textures[kind]
	if !ok {
		return nil, false
	}
	return get(slot), true
}
