package inference

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode_DataURL(t *testing.T) {
	s, err := Decode(pngDataURL(t, solidImage(3, 2, color.RGBA{R: 10, G: 20, B: 30, A: 255})))
	require.NoError(t, err)
	require.Equal(t, 3, s.Width)
	require.Equal(t, 2, s.Height)
	require.Len(t, s.Pix, 3*2*3)
	require.Equal(t, []uint8{10, 20, 30}, s.Pix[:3])
}

func TestDecode_FileURIAndAbsolutePath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "lesion.png")
	require.NoError(t, os.WriteFile(p, pngBytes(t, solidImage(4, 4, color.RGBA{R: 200, A: 255})), 0o644))

	s, err := Decode("file://" + p)
	require.NoError(t, err)
	require.Equal(t, uint8(200), s.Pix[0])

	s, err = Decode(p)
	require.NoError(t, err)
	require.Equal(t, 4, s.Width)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"content uri":  "content://media/external/images/1",
		"http url":     "http://example.com/a.png",
		"relative":     "images/a.png",
		"no comma":     "data:image/png;base64",
		"not base64":   "data:image/png,rawbytes",
		"bad payload":  "data:image/png;base64,@@@@",
		"not an image": "data:text/plain;base64,aGVsbG8gd29ybGQ=",
		"missing file": "file:///definitely/not/here.png",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(in)
			require.Error(t, err)
			require.True(t, IsDecodeError(err), "got %v", err)
		})
	}
}

func onePixelSample() *ImageSample {
	s := &ImageSample{Width: InputSize, Height: InputSize, Pix: make([]uint8, InputSize*InputSize*3)}
	// red pixel at x=5, y=7
	s.Pix[(7*InputSize+5)*3] = 255
	return s
}

func TestToTensor_AxisOrder(t *testing.T) {
	hot := (float32(255)/255 - channelMean[0]) / channelStd[0]
	zeroG := (0 - channelMean[1]) / channelStd[1]
	const plane = InputSize * InputSize
	px := 7*InputSize + 5

	t.Run("exchange is NCHW", func(t *testing.T) {
		tt := ToTensor(onePixelSample(), BackendExchange)
		defer tt.Release()
		require.Equal(t, LayoutNCHW, tt.Layout)
		require.Equal(t, [4]int64{1, 3, InputSize, InputSize}, tt.Shape)
		require.InDelta(t, hot, tt.Data[px], 1e-6)
		require.InDelta(t, zeroG, tt.Data[plane+px], 1e-6)
		require.InDelta(t, (0-channelMean[0])/channelStd[0], tt.Data[px+1], 1e-6)
	})
	t.Run("graph is NHWC", func(t *testing.T) {
		tt := ToTensor(onePixelSample(), BackendGraph)
		defer tt.Release()
		require.Equal(t, LayoutNHWC, tt.Layout)
		require.Equal(t, [4]int64{1, InputSize, InputSize, 3}, tt.Shape)
		require.InDelta(t, hot, tt.Data[px*3], 1e-6)
		require.InDelta(t, zeroG, tt.Data[px*3+1], 1e-6)
		require.InDelta(t, (0-channelMean[0])/channelStd[0], tt.Data[(px+1)*3], 1e-6)
	})
	t.Run("none uses graph layout", func(t *testing.T) {
		tt := ToTensor(onePixelSample(), BackendNone)
		defer tt.Release()
		require.Equal(t, LayoutNHWC, tt.Layout)
		require.InDelta(t, hot, tt.At(0, 7, 5), 1e-6)
	})
}

func TestToTensor_ResizesSolidImage(t *testing.T) {
	img := solidImage(10, 30, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	s := sampleFromImage(img)
	for _, kind := range []BackendKind{BackendExchange, BackendGraph} {
		tt := ToTensor(s, kind)
		require.Len(t, tt.Data, 3*InputSize*InputSize)
		want := (float32(128)/255 - channelMean[2]) / channelStd[2]
		require.InDelta(t, want, tt.At(2, InputSize-1, InputSize-1), 0.02)
		tt.Release()
	}
}

func TestSampleFromImage_NonZeroOrigin(t *testing.T) {
	img := solidImage(8, 8, color.RGBA{G: 99, A: 255}).SubImage(image.Rect(2, 2, 6, 5))
	s := sampleFromImage(img)
	require.Equal(t, 4, s.Width)
	require.Equal(t, 3, s.Height)
	require.Equal(t, uint8(99), s.Pix[1])
}

func TestTensorRelease_Idempotent(t *testing.T) {
	base := LiveTensors()
	tt := ToTensor(onePixelSample(), BackendGraph)
	require.Equal(t, base+1, LiveTensors())
	tt.Release()
	tt.Release()
	require.Equal(t, base, LiveTensors())
}
