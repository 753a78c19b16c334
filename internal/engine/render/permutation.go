package render

import (
	"fmt"
	"strings"

	"github.com/Faultbox/gltf-viewer/internal/engine/lighting"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

// MaxJoints is the size of the joint matrix uniform array.
const MaxJoints = 64

// DebugNone is the define used when no debug channel is selected.
const DebugNone = "DEBUG_NONE"

// DebugChannels maps debug channel names to their exclusive shader define.
var DebugChannels = map[string]string{
	"none":                 DebugNone,
	"uv0":                  "DEBUG_UV_0",
	"normal_shading":       "DEBUG_NORMAL_SHADING",
	"normal_geometry":      "DEBUG_NORMAL_GEOMETRY",
	"tangent":              "DEBUG_TANGENT",
	"alpha":                "DEBUG_ALPHA",
	"occlusion":            "DEBUG_OCCLUSION",
	"emissive":             "DEBUG_EMISSIVE",
	"base_color":           "DEBUG_BASE_COLOR",
	"metallic":             "DEBUG_METALLIC",
	"roughness":            "DEBUG_ROUGHNESS",
	"transmission":         "DEBUG_TRANSMISSION",
	"volume":               "DEBUG_VOLUME",
	"clearcoat":            "DEBUG_CLEARCOAT",
	"sheen":                "DEBUG_SHEEN",
	"specular":             "DEBUG_SPECULAR",
	"iridescence":          "DEBUG_IRIDESCENCE",
	"anisotropy":           "DEBUG_ANISOTROPY",
	"diffuse_transmission": "DEBUG_DIFFUSE_TRANSMISSION",
	"volume_scatter":       "DEBUG_VOLUME_SCATTER",
}

// DebugDefine returns the define for a debug channel, DebugNone when unknown.
func DebugDefine(channel string) string {
	if d, ok := DebugChannels[strings.ToLower(channel)]; ok {
		return d
	}
	return DebugNone
}

// Variant selects a special-purpose fragment output.
type Variant int

const (
	VariantColor Variant = iota
	VariantNodeID
	VariantDepth
	VariantScatter
)

var attributeDefines = map[string]string{
	"NORMAL":     "HAS_NORMAL_VEC3",
	"TANGENT":    "HAS_TANGENT_VEC4",
	"TEXCOORD_0": "HAS_TEXCOORD_0_VEC2",
	"TEXCOORD_1": "HAS_TEXCOORD_1_VEC2",
	"COLOR_0":    "HAS_COLOR_0_VEC4",
}

var textureDefines = []struct {
	kind     scene.TextureKind
	define   string
	triangle bool
}{
	{scene.BaseColorTexture, "HAS_BASE_COLOR_MAP", false},
	{scene.MetallicRoughnessTexture, "HAS_METALLIC_ROUGHNESS_MAP", false},
	{scene.NormalTexture, "HAS_NORMAL_MAP", true},
	{scene.OcclusionTexture, "HAS_OCCLUSION_MAP", false},
	{scene.EmissiveTexture, "HAS_EMISSIVE_MAP", false},
	{scene.TransmissionTexture, "HAS_TRANSMISSION_MAP", false},
	{scene.ThicknessTexture, "HAS_THICKNESS_MAP", false},
	{scene.ClearcoatTexture, "HAS_CLEARCOAT_MAP", false},
	{scene.ClearcoatRoughnessTexture, "HAS_CLEARCOAT_ROUGHNESS_MAP", false},
	{scene.ClearcoatNormalTexture, "HAS_CLEARCOAT_NORMAL_MAP", true},
	{scene.SheenColorTexture, "HAS_SHEEN_COLOR_MAP", false},
	{scene.SheenRoughnessTexture, "HAS_SHEEN_ROUGHNESS_MAP", false},
	{scene.SpecularTexture, "HAS_SPECULAR_MAP", false},
	{scene.SpecularColorTexture, "HAS_SPECULAR_COLOR_MAP", false},
	{scene.IridescenceTexture, "HAS_IRIDESCENCE_MAP", false},
	{scene.IridescenceThicknessTexture, "HAS_IRIDESCENCE_THICKNESS_MAP", false},
	{scene.AnisotropyTexture, "HAS_ANISOTROPY_MAP", false},
	{scene.DiffuseTransmissionTexture, "HAS_DIFFUSE_TRANSMISSION_MAP", false},
	{scene.DiffuseTransmissionColorTexture, "HAS_DIFFUSE_TRANSMISSION_COLOR_MAP", false},
}

var extensionDefines = []struct {
	ext    string
	define string
}{
	{scene.ExtEmissiveStrength, "MATERIAL_EMISSIVE_STRENGTH"},
	{scene.ExtIOR, "MATERIAL_IOR"},
	{scene.ExtTransmission, "MATERIAL_TRANSMISSION"},
	{scene.ExtVolume, "MATERIAL_VOLUME"},
	{scene.ExtVolumeScatter, "MATERIAL_VOLUME_SCATTER"},
	{scene.ExtClearcoat, "MATERIAL_CLEARCOAT"},
	{scene.ExtSheen, "MATERIAL_SHEEN"},
	{scene.ExtSpecular, "MATERIAL_SPECULAR"},
	{scene.ExtIridescence, "MATERIAL_IRIDESCENCE"},
	{scene.ExtAnisotropy, "MATERIAL_ANISOTROPY"},
	{scene.ExtDispersion, "MATERIAL_DISPERSION"},
	{scene.ExtDiffuseTransmission, "MATERIAL_DIFFUSE_TRANSMISSION"},
	{scene.ExtUnlit, "MATERIAL_UNLIT"},
}

// PermutationOptions are the global switches that feed define selection.
type PermutationOptions struct {
	LinearOutput bool
	Debug        string
	// Extensions disables an extension when mapped to false.
	Extensions map[string]bool
}

// ExtensionEnabled reports whether the global switch allows the extension.
func (o PermutationOptions) ExtensionEnabled(name string) bool {
	enabled, ok := o.Extensions[name]
	return !ok || enabled
}

// VertexDefines returns the vertex stage defines for a primitive.
func VertexDefines(p *scene.Primitive, instanced bool) []string {
	defines := attributes(p)
	defines = append(defines, fmt.Sprintf("MAX_JOINTS %d", MaxJoints))
	if p.IsSkinned() {
		defines = append(defines, "USE_SKINNING")
	}
	if instanced {
		defines = append(defines, "USE_INSTANCING")
	}
	return defines
}

// FragmentDefines returns the fragment stage defines for a primitive and
// material. Extension defines need both the material flag and the global
// switch. Point and line primitives never sample normal maps.
func FragmentDefines(p *scene.Primitive, m *scene.Material, variant Variant, opts PermutationOptions) []string {
	defines := attributes(p)
	defines = append(defines, fmt.Sprintf("MAX_LIGHTS %d", lighting.MaxLights))

	triangles := p.Mode.IsTriangles()
	for _, t := range textureDefines {
		if !m.HasTexture(t.kind) || (t.triangle && !triangles) {
			continue
		}
		defines = append(defines, t.define)
	}
	for _, e := range extensionDefines {
		if m.HasExtension(e.ext) && opts.ExtensionEnabled(e.ext) {
			defines = append(defines, e.define)
		}
	}

	switch m.AlphaMode {
	case scene.AlphaMask:
		defines = append(defines, "ALPHAMODE_MASK")
	case scene.AlphaBlend:
		defines = append(defines, "ALPHAMODE_BLEND")
	default:
		defines = append(defines, "ALPHAMODE_OPAQUE")
	}

	switch variant {
	case VariantNodeID:
		defines = append(defines, "RENDER_NODE_ID")
	case VariantDepth:
		defines = append(defines, "RENDER_DEPTH")
	case VariantScatter:
		defines = append(defines, "SCATTER_PREPASS")
	}

	if opts.LinearOutput {
		defines = append(defines, "LINEAR_OUTPUT")
	}
	defines = append(defines, "DEBUG "+DebugDefine(opts.Debug))
	return defines
}

func attributes(p *scene.Primitive) []string {
	var defines []string
	for _, name := range p.AttributeNames() {
		d, ok := attributeDefines[name]
		if !ok || (name == "TANGENT" && !p.Mode.IsTriangles()) {
			continue
		}
		defines = append(defines, d)
	}
	return defines
}
