package inference

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

const (
	maxImageBytes  = 32 << 20
	maxImagePixels = 50_000_000
)

// ImageSample is a decoded RGB8 image, 3 bytes per pixel, row-major.
type ImageSample struct {
	Width  int
	Height int
	Pix    []uint8
}

// Decode renders an encoded image. Accepted forms are base64 data URLs,
// file:// URIs and absolute filesystem paths. Everything else, and any image
// that fails to decode, is a decode error.
func Decode(encoded string) (*ImageSample, error) {
	raw, err := readEncoded(strings.TrimSpace(encoded))
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrDecode("unsupported image", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxImagePixels {
		return nil, ErrDecode("image dimensions out of range", nil)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrDecode("corrupt image", err)
	}
	return sampleFromImage(img), nil
}

func readEncoded(s string) ([]byte, error) {
	switch {
	case s == "":
		return nil, ErrDecode("empty image", nil)
	case strings.HasPrefix(s, "data:"):
		return decodeDataURL(s)
	case strings.HasPrefix(s, "file://"):
		return readImageFile(strings.TrimPrefix(s, "file://"))
	case filepath.IsAbs(s):
		return readImageFile(s)
	}
	return nil, ErrDecode("unsupported image reference", nil)
}

func decodeDataURL(s string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return nil, ErrDecode("malformed data URL", nil)
	}
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return nil, ErrDecode("data URL is not base64", nil)
	}
	if len(payload) > base64.StdEncoding.EncodedLen(maxImageBytes) {
		return nil, ErrDecode("image too large", nil)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if raw, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, ErrDecode("invalid base64 payload", err)
		}
	}
	return raw, nil
}

func readImageFile(path string) ([]byte, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, ErrDecode("open image", err)
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
	if err != nil {
		return nil, ErrDecode("read image", err)
	}
	if len(raw) > maxImageBytes {
		return nil, ErrDecode("image too large", nil)
	}
	return raw, nil
}

func sampleFromImage(img image.Image) *ImageSample {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	w, h := b.Dx(), b.Dy()
	s := &ImageSample{Width: w, Height: h, Pix: make([]uint8, w*h*3)}
	for y := 0; y < h; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < w; x++ {
			copy(s.Pix[(y*w+x)*3:], row[x*4:x*4+3])
		}
	}
	return s
}

func (s *ImageSample) toRGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	for i := 0; i < s.Width*s.Height; i++ {
		copy(img.Pix[i*4:], s.Pix[i*3:i*3+3])
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// interpolationFor keeps resizing deterministic per backend.
func interpolationFor(kind BackendKind) resize.InterpolationFunction {
	if kind == BackendExchange {
		return resize.Bilinear
	}
	return resize.NearestNeighbor
}

// ToTensor resizes the sample to 224x224, scales to [0,1], normalizes each
// channel with the ImageNet mean/std and lays the values out for kind:
// NCHW for the exchange runtime, NHWC otherwise. The caller owns the
// returned tensor and must Release it.
func ToTensor(s *ImageSample, kind BackendKind) *Tensor {
	var src image.Image = s.toRGBA()
	if s.Width != InputSize || s.Height != InputSize {
		src = resize.Resize(InputSize, InputSize, src, interpolationFor(kind))
	}
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Bounds().Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, InputSize, InputSize))
		draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	}
	t := acquireTensor(layoutFor(kind))
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			p := rgba.Pix[y*rgba.Stride+x*4:]
			for c := 0; c < 3; c++ {
				v := float32(p[c]) / 255
				t.Data[t.index(c, y, x)] = (v - channelMean[c]) / channelStd[c]
			}
		}
	}
	return t
}
