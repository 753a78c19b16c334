package gltfio

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"net/url"
	"os"
	"path/filepath"

	"github.com/ftrvxmtrx/tga"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"github.com/Faultbox/gltf-viewer/internal/scene"
)

// OpenGL sampler enums.
const (
	glNearest              = 0x2600
	glLinear               = 0x2601
	glNearestMipmapNearest = 0x2700
	glLinearMipmapNearest  = 0x2701
	glNearestMipmapLinear  = 0x2702
	glLinearMipmapLinear   = 0x2703
	glRepeat               = 0x2901
	glClampToEdge          = 0x812F
	glMirroredRepeat       = 0x8370
)

// images decodes every image. A broken image is replaced by an empty one so
// that texture indices stay valid; the renderer falls back to white.
func (l *loader) images() {
	for i, src := range l.src.Images {
		img := &scene.Image{Name: src.Name}
		l.doc.Images = append(l.doc.Images, img)
		data, err := l.imageData(src)
		if err != nil {
			l.warn("image unavailable", zap.Int("image", i), zap.Error(err))
			continue
		}
		if err := decodeInto(img, data); err != nil {
			l.warn("image decode failed", zap.Int("image", i), zap.String("mime", src.MimeType), zap.Error(err))
		}
	}
}

func (l *loader) imageData(src *gltf.Image) ([]byte, error) {
	switch {
	case src.BufferView != nil:
		if int(*src.BufferView) >= len(l.src.BufferViews) {
			return nil, fmt.Errorf("%w: buffer view %d out of range", ErrInvalid, *src.BufferView)
		}
		return modeler.ReadBufferView(l.src, l.src.BufferViews[*src.BufferView])
	case src.IsEmbeddedResource():
		return src.MarshalData()
	case src.URI != "":
		name, err := url.PathUnescape(src.URI)
		if err != nil {
			name = src.URI
		}
		return os.ReadFile(filepath.Join(l.baseDir, filepath.FromSlash(name)))
	}
	return nil, fmt.Errorf("%w: image has no source", ErrInvalid)
}

// decodeImage picks a decoder by signature. TGA has none and is the fallback.
func decodeImage(data []byte) (image.Image, error) {
	r := bytes.NewReader(data)
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return png.Decode(r)
	case bytes.HasPrefix(data, []byte{0xff, 0xd8}):
		return jpeg.Decode(r)
	case bytes.HasPrefix(data, []byte("BM")):
		return bmp.Decode(r)
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return webp.Decode(r)
	}
	return tga.Decode(r)
}

// decodeInto decodes image data to RGBA8, top row first.
func decodeInto(dst *scene.Image, data []byte) error {
	src, err := decodeImage(data)
	if err != nil {
		return err
	}
	b := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Stride != b.Dx()*4 || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)
	}
	dst.Width, dst.Height = b.Dx(), b.Dy()
	dst.Pixels = rgba.Pix
	return nil
}

func (l *loader) textures() {
	for _, src := range l.src.Textures {
		t := &scene.Texture{Name: src.Name, Source: toIndex(src.Source)}
		var ext webpExt
		if decodeExt(src.Extensions, ExtTextureWebP, &ext) && ext.Source != nil {
			t.Source = *ext.Source
		}
		if src.Sampler != nil && int(*src.Sampler) < len(l.src.Samplers) {
			t.Sampler = sampler(l.src.Samplers[*src.Sampler])
		}
		l.doc.Textures = append(l.doc.Textures, t)
	}
}

func sampler(s *gltf.Sampler) scene.TextureSampler {
	var out scene.TextureSampler
	switch s.MagFilter {
	case gltf.MagNearest:
		out.MagFilter = glNearest
	case gltf.MagLinear:
		out.MagFilter = glLinear
	}
	switch s.MinFilter {
	case gltf.MinNearest:
		out.MinFilter = glNearest
	case gltf.MinLinear:
		out.MinFilter = glLinear
	case gltf.MinNearestMipMapNearest:
		out.MinFilter = glNearestMipmapNearest
	case gltf.MinLinearMipMapNearest:
		out.MinFilter = glLinearMipmapNearest
	case gltf.MinNearestMipMapLinear:
		out.MinFilter = glNearestMipmapLinear
	case gltf.MinLinearMipMapLinear:
		out.MinFilter = glLinearMipmapLinear
	}
	out.WrapS = wrap(s.WrapS)
	out.WrapT = wrap(s.WrapT)
	return out
}

func wrap(w gltf.WrappingMode) int {
	switch w {
	case gltf.WrapClampToEdge:
		return glClampToEdge
	case gltf.WrapMirroredRepeat:
		return glMirroredRepeat
	default:
		return glRepeat
	}
}
