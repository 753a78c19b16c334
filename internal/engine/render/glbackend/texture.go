package glbackend

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/gltf-viewer/internal/logger"
	"github.com/Faultbox/gltf-viewer/internal/scene"
)

// texture returns the GL texture for a glTF texture index, uploading its image
// on first use. Missing images fall back to a white texel.
func (b *Backend) texture(doc *scene.Document, index int) uint32 {
	tex := doc.Texture(index)
	if tex == nil {
		return b.white
	}
	img := doc.Image(tex.Source)
	if img == nil || len(img.Pixels) < img.Width*img.Height*4 || img.Width == 0 {
		logger.WarnOnce("render:image:"+tex.Name, "texture has no decodable image", zap.Int("texture", index))
		return b.white
	}
	if id, ok := img.GPU.(uint32); ok {
		return id
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(img.Width), int32(img.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	s := tex.Sampler
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, orDefault(s.MinFilter, gl.LINEAR_MIPMAP_LINEAR))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, orDefault(s.MagFilter, gl.LINEAR))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, orDefault(s.WrapS, gl.REPEAT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, orDefault(s.WrapT, gl.REPEAT))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	img.GPU = id
	return id
}

// glTF sampler enums are GL enums, so they pass through unchanged.
func orDefault(v int, def int32) int32 {
	if v == 0 {
		return def
	}
	return int32(v)
}
