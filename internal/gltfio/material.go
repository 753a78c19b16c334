package gltfio

import (
	"encoding/json"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/scene"
)

type textureRef struct {
	Index      int                        `json:"index"`
	TexCoord   int                        `json:"texCoord"`
	Scale      *float32                   `json:"scale"`
	Extensions map[string]json.RawMessage `json:"extensions"`
}

// materialExt collects the fields of every supported KHR_materials_*
// extension. Field names do not collide across extensions, so each present
// extension is decoded into the same value.
type materialExt struct {
	EmissiveStrength *float32 `json:"emissiveStrength"`
	IOR              *float32 `json:"ior"`

	TransmissionFactor  *float32    `json:"transmissionFactor"`
	TransmissionTexture *textureRef `json:"transmissionTexture"`

	ThicknessFactor     *float32    `json:"thicknessFactor"`
	ThicknessTexture    *textureRef `json:"thicknessTexture"`
	AttenuationDistance *float32    `json:"attenuationDistance"`
	AttenuationColor    *[3]float32 `json:"attenuationColor"`

	MultiscatterColor *[3]float32 `json:"multiscatterColor"`
	ScatterAnisotropy *float32    `json:"scatterAnisotropy"`

	ClearcoatFactor           *float32    `json:"clearcoatFactor"`
	ClearcoatTexture          *textureRef `json:"clearcoatTexture"`
	ClearcoatRoughnessFactor  *float32    `json:"clearcoatRoughnessFactor"`
	ClearcoatRoughnessTexture *textureRef `json:"clearcoatRoughnessTexture"`
	ClearcoatNormalTexture    *textureRef `json:"clearcoatNormalTexture"`

	SheenColorFactor      *[3]float32 `json:"sheenColorFactor"`
	SheenColorTexture     *textureRef `json:"sheenColorTexture"`
	SheenRoughnessFactor  *float32    `json:"sheenRoughnessFactor"`
	SheenRoughnessTexture *textureRef `json:"sheenRoughnessTexture"`

	SpecularFactor       *float32    `json:"specularFactor"`
	SpecularTexture      *textureRef `json:"specularTexture"`
	SpecularColorFactor  *[3]float32 `json:"specularColorFactor"`
	SpecularColorTexture *textureRef `json:"specularColorTexture"`

	IridescenceFactor           *float32    `json:"iridescenceFactor"`
	IridescenceTexture          *textureRef `json:"iridescenceTexture"`
	IridescenceIOR              *float32    `json:"iridescenceIor"`
	IridescenceThicknessMinimum *float32    `json:"iridescenceThicknessMinimum"`
	IridescenceThicknessMaximum *float32    `json:"iridescenceThicknessMaximum"`
	IridescenceThicknessTexture *textureRef `json:"iridescenceThicknessTexture"`

	AnisotropyStrength *float32    `json:"anisotropyStrength"`
	AnisotropyRotation *float32    `json:"anisotropyRotation"`
	AnisotropyTexture  *textureRef `json:"anisotropyTexture"`

	Dispersion *float32 `json:"dispersion"`

	DiffuseTransmissionFactor       *float32    `json:"diffuseTransmissionFactor"`
	DiffuseTransmissionTexture      *textureRef `json:"diffuseTransmissionTexture"`
	DiffuseTransmissionColorFactor  *[3]float32 `json:"diffuseTransmissionColorFactor"`
	DiffuseTransmissionColorTexture *textureRef `json:"diffuseTransmissionColorTexture"`
}

var materialExtensions = []string{
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
}

func (l *loader) material(src *gltf.Material) {
	m := l.doc.NewMaterial(src.Name)
	m.DoubleSided = src.DoubleSided
	switch src.AlphaMode {
	case gltf.AlphaMask:
		m.AlphaMode = scene.AlphaMask
	case gltf.AlphaBlend:
		m.AlphaMode = scene.AlphaBlend
	default:
		m.AlphaMode = scene.AlphaOpaque
	}
	if src.AlphaCutoff != nil {
		m.AlphaCutoff.RestAt(*src.AlphaCutoff)
	}
	m.EmissiveFactor.RestAt(src.EmissiveFactor)

	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			m.BaseColorFactor.RestAt(*pbr.BaseColorFactor)
		}
		if pbr.MetallicFactor != nil {
			m.MetallicFactor.RestAt(*pbr.MetallicFactor)
		}
		if pbr.RoughnessFactor != nil {
			m.RoughnessFactor.RestAt(*pbr.RoughnessFactor)
		}
		l.coreTexture(m, scene.BaseColorTexture, pbr.BaseColorTexture)
		l.coreTexture(m, scene.MetallicRoughnessTexture, pbr.MetallicRoughnessTexture)
	}
	if nt := src.NormalTexture; nt != nil && nt.Index != nil {
		l.bindTexture(m, scene.NormalTexture, int(*nt.Index), int(nt.TexCoord), nt.Extensions)
		if nt.Scale != nil {
			m.NormalScale.RestAt(*nt.Scale)
		}
	}
	if ot := src.OcclusionTexture; ot != nil && ot.Index != nil {
		l.bindTexture(m, scene.OcclusionTexture, int(*ot.Index), int(ot.TexCoord), ot.Extensions)
		if ot.Strength != nil {
			m.OcclusionStrength.RestAt(*ot.Strength)
		}
	}
	l.coreTexture(m, scene.EmissiveTexture, src.EmissiveTexture)

	var ext materialExt
	for _, name := range materialExtensions {
		if decodeExt(src.Extensions, name, &ext) {
			m.Extensions[name] = true
		}
	}
	l.applyMaterialExt(m, &ext)
}

func (l *loader) applyMaterialExt(m *scene.Material, e *materialExt) {
	set := func(p interface{ RestAt(float32) }, v *float32) {
		if v != nil {
			p.RestAt(*v)
		}
	}
	set3 := func(p interface{ RestAt([3]float32) }, v *[3]float32) {
		if v != nil {
			p.RestAt(*v)
		}
	}

	set(&m.EmissiveStrength, e.EmissiveStrength)
	set(&m.IOR, e.IOR)
	set(&m.TransmissionFactor, e.TransmissionFactor)
	set(&m.ThicknessFactor, e.ThicknessFactor)
	set(&m.AttenuationDistance, e.AttenuationDistance)
	set3(&m.AttenuationColor, e.AttenuationColor)
	set3(&m.MultiscatterColor, e.MultiscatterColor)
	set(&m.ScatterAnisotropy, e.ScatterAnisotropy)
	set(&m.ClearcoatFactor, e.ClearcoatFactor)
	set(&m.ClearcoatRoughness, e.ClearcoatRoughnessFactor)
	set3(&m.SheenColorFactor, e.SheenColorFactor)
	set(&m.SheenRoughnessFactor, e.SheenRoughnessFactor)
	set(&m.SpecularFactor, e.SpecularFactor)
	set3(&m.SpecularColorFactor, e.SpecularColorFactor)
	set(&m.IridescenceFactor, e.IridescenceFactor)
	set(&m.IridescenceIOR, e.IridescenceIOR)
	set(&m.IridescenceThicknessMin, e.IridescenceThicknessMinimum)
	set(&m.IridescenceThicknessMax, e.IridescenceThicknessMaximum)
	set(&m.AnisotropyStrength, e.AnisotropyStrength)
	set(&m.AnisotropyRotation, e.AnisotropyRotation)
	set(&m.Dispersion, e.Dispersion)
	set(&m.DiffuseTransmissionFactor, e.DiffuseTransmissionFactor)
	set3(&m.DiffuseTransmissionColorFactor, e.DiffuseTransmissionColorFactor)

	slots := []struct {
		kind scene.TextureKind
		ref  *textureRef
	}{
		{scene.TransmissionTexture, e.TransmissionTexture},
		{scene.ThicknessTexture, e.ThicknessTexture},
		{scene.ClearcoatTexture, e.ClearcoatTexture},
		{scene.ClearcoatRoughnessTexture, e.ClearcoatRoughnessTexture},
		{scene.ClearcoatNormalTexture, e.ClearcoatNormalTexture},
		{scene.SheenColorTexture, e.SheenColorTexture},
		{scene.SheenRoughnessTexture, e.SheenRoughnessTexture},
		{scene.SpecularTexture, e.SpecularTexture},
		{scene.SpecularColorTexture, e.SpecularColorTexture},
		{scene.IridescenceTexture, e.IridescenceTexture},
		{scene.IridescenceThicknessTexture, e.IridescenceThicknessTexture},
		{scene.AnisotropyTexture, e.AnisotropyTexture},
		{scene.DiffuseTransmissionTexture, e.DiffuseTransmissionTexture},
		{scene.DiffuseTransmissionColorTexture, e.DiffuseTransmissionColorTexture},
	}
	for _, s := range slots {
		if s.ref == nil {
			continue
		}
		exts := make(gltf.Extensions, len(s.ref.Extensions))
		for k, v := range s.ref.Extensions {
			exts[k] = v
		}
		l.bindTexture(m, s.kind, s.ref.Index, s.ref.TexCoord, exts)
	}
}

func (l *loader) coreTexture(m *scene.Material, kind scene.TextureKind, info *gltf.TextureInfo) {
	if info == nil {
		return
	}
	l.bindTexture(m, kind, int(info.Index), int(info.TexCoord), info.Extensions)
}

// bindTexture attaches texture index to a slot, applying KHR_texture_transform.
func (l *loader) bindTexture(m *scene.Material, kind scene.TextureKind, index, texCoord int, exts gltf.Extensions) {
	if index < 0 || index >= len(l.src.Textures) {
		l.warn("texture reference out of range", zap.String("material", m.Name), zap.Int("texture", index))
		return
	}
	slot := m.SetTexture(kind, index, texCoord)

	var tt textureTransformExt
	if !decodeExt(exts, scene.ExtTextureTransform, &tt) {
		return
	}
	slot.Transformed = true
	m.Extensions[scene.ExtTextureTransform] = true
	if tt.Offset != nil {
		slot.Offset.RestAt(*tt.Offset)
	}
	if tt.Rotation != nil {
		slot.Rotation.RestAt(*tt.Rotation)
	}
	if tt.Scale != nil {
		slot.Scale.RestAt(*tt.Scale)
	}
	if tt.TexCoord != nil {
		slot.TexCoord = *tt.TexCoord
	}
}
