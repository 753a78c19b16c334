package glbackend

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/gltf-viewer/internal/engine/render"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

type textureUniform struct {
	kind      scene.TextureKind
	sampler   string
	transform string
}

// Sampler uniforms of primitive.frag; units follow the slice order.
var textureUniforms = []textureUniform{
	{scene.BaseColorTexture, "u_BaseColorSampler", "u_BaseColorUVTransform"},
	{scene.MetallicRoughnessTexture, "u_MetallicRoughnessSampler", "u_MetallicRoughnessUVTransform"},
	{scene.NormalTexture, "u_NormalSampler", "u_NormalUVTransform"},
	{scene.OcclusionTexture, "u_OcclusionSampler", "u_OcclusionUVTransform"},
	{scene.EmissiveTexture, "u_EmissiveSampler", "u_EmissiveUVTransform"},
	{scene.TransmissionTexture, "u_TransmissionSampler", "u_TransmissionUVTransform"},
	{scene.ClearcoatTexture, "u_ClearcoatSampler", "u_ClearcoatUVTransform"},
}

const transmissionUnit = 15

// Draw implements render.Backend.
func (b *Backend) Draw(call *render.DrawCall) error {
	g, err := b.upload(call.Primitive)
	if err != nil {
		return err
	}
	b.applyMorph(call.Primitive, g, call.Weights)

	p := call.Program
	gl.UseProgram(p)
	b.frameUniforms(p, call.Frame)
	b.setMat4(p, "u_ModelMatrix", call.Model)
	b.setMat4(p, "u_NormalMatrix", call.Normal)
	if l := b.loc(p, "u_NodeID"); l >= 0 {
		gl.Uniform1ui(l, call.NodeID)
	}
	if l := b.loc(p, "u_JointMatrix"); l >= 0 && len(call.Joints) > 0 {
		gl.UniformMatrix4fv(l, int32(len(call.Joints)), false, &call.Joints[0][0])
	}
	b.materialUniforms(p, call.Document, call.Material)

	if call.Transmission {
		if fb := b.targets[render.TargetTransmissionResolve]; fb != nil {
			gl.ActiveTexture(gl.TEXTURE0 + transmissionUnit)
			gl.BindTexture(gl.TEXTURE_2D, fb.ColorTexture())
			b.setInt(p, "u_TransmissionFramebufferSampler", transmissionUnit)
			w, h := fb.Size()
			if l := b.loc(p, "u_TransmissionFramebufferSize"); l >= 0 {
				gl.Uniform2f(l, float32(w), float32(h))
			}
		}
	}

	b.applyState(call)
	b.bindInstances(g, call.Instances)

	mode := drawModes[call.Primitive.Mode]
	switch {
	case g.indexed && len(call.Instances) > 0:
		gl.DrawElementsInstanced(mode, g.count, gl.UNSIGNED_INT, nil, int32(len(call.Instances)))
	case g.indexed:
		gl.DrawElements(mode, g.count, gl.UNSIGNED_INT, nil)
	case len(call.Instances) > 0:
		gl.DrawArraysInstanced(mode, 0, g.count, int32(len(call.Instances)))
	default:
		gl.DrawArrays(mode, 0, g.count)
	}
	gl.BindVertexArray(0)
	return nil
}

func (b *Backend) applyState(call *render.DrawCall) {
	if call.Blend {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
	} else {
		gl.Disable(gl.BLEND)
		gl.DepthMask(true)
	}
	if call.Material.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
	if call.FrontFaceCW {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}
}

func (b *Backend) frameUniforms(p uint32, f *render.Frame) {
	b.setMat4(p, "u_ViewProjectionMatrix", f.ViewProjection)
	b.setMat4(p, "u_ViewMatrix", f.View)
	b.setMat4(p, "u_ProjectionMatrix", f.Projection)
	b.setVec3(p, "u_Camera", f.CameraPosition.Array())
	b.setVec3(p, "u_EnvironmentColor", f.Environment)

	lights := f.Lights
	if lights == nil {
		b.setInt(p, "u_LightCount", 0)
		return
	}
	n := int32(lights.Count())
	b.setInt(p, "u_LightCount", n)
	if n == 0 {
		return
	}
	if l := b.loc(p, "u_LightPosition[0]"); l >= 0 {
		gl.Uniform3fv(l, n, &lights.Positions()[0])
	}
	if l := b.loc(p, "u_LightDirection[0]"); l >= 0 {
		gl.Uniform3fv(l, n, &lights.Directions()[0])
	}
	if l := b.loc(p, "u_LightColor[0]"); l >= 0 {
		gl.Uniform3fv(l, n, &lights.Colors()[0])
	}
	if l := b.loc(p, "u_LightParams[0]"); l >= 0 {
		params := lights.Params()
		gl.Uniform1fv(l, int32(len(params)), &params[0])
	}
}

func (b *Backend) materialUniforms(p uint32, doc *scene.Document, m *scene.Material) {
	b.setVec4(p, "u_BaseColorFactor", m.BaseColorFactor.Value())
	b.setFloat(p, "u_MetallicFactor", m.MetallicFactor.Value())
	b.setFloat(p, "u_RoughnessFactor", m.RoughnessFactor.Value())
	b.setVec3(p, "u_EmissiveFactor", m.EmissiveFactor.Value())
	b.setFloat(p, "u_EmissiveStrength", m.EmissiveStrength.Value())
	b.setFloat(p, "u_AlphaCutoff", m.AlphaCutoff.Value())
	b.setFloat(p, "u_NormalScale", m.NormalScale.Value())
	b.setFloat(p, "u_OcclusionStrength", m.OcclusionStrength.Value())
	b.setFloat(p, "u_Ior", m.IOR.Value())
	b.setFloat(p, "u_TransmissionFactor", m.TransmissionFactor.Value())
	b.setFloat(p, "u_ThicknessFactor", m.ThicknessFactor.Value())
	b.setVec3(p, "u_AttenuationColor", m.AttenuationColor.Value())
	attenuation := float32(0)
	if m.AttenuationDistance.IsDefined() {
		attenuation = m.AttenuationDistance.Value()
	}
	b.setFloat(p, "u_AttenuationDistance", attenuation)
	b.setFloat(p, "u_ClearcoatFactor", m.ClearcoatFactor.Value())
	b.setFloat(p, "u_ClearcoatRoughness", m.ClearcoatRoughness.Value())
	b.setVec3(p, "u_SheenColorFactor", m.SheenColorFactor.Value())
	b.setFloat(p, "u_SheenRoughnessFactor", m.SheenRoughnessFactor.Value())
	b.setFloat(p, "u_SpecularFactor", m.SpecularFactor.Value())
	b.setVec3(p, "u_SpecularColorFactor", m.SpecularColorFactor.Value())
	b.setFloat(p, "u_DiffuseTransmissionFactor", m.DiffuseTransmissionFactor.Value())
	b.setVec3(p, "u_DiffuseTransmissionColorFactor", m.DiffuseTransmissionColorFactor.Value())
	b.setVec3(p, "u_MultiscatterColor", m.MultiscatterColor.Value())

	for unit, tu := range textureUniforms {
		slot, ok := m.Textures[tu.kind]
		if !ok || !m.HasTexture(tu.kind) {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(gl.TEXTURE_2D, b.texture(doc, slot.Index))
		b.setInt(p, tu.sampler, int32(unit))
		if l := b.loc(p, tu.transform); l >= 0 {
			uv := slot.UVMatrix()
			gl.UniformMatrix3fv(l, 1, false, &uv[0])
		}
	}
	gl.ActiveTexture(gl.TEXTURE0)
}
