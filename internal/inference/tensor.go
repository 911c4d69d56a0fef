package inference

import (
	"sync"
	"sync/atomic"
)

// InputSize is the square edge length every backend expects.
const InputSize = 224

const tensorLen = 3 * InputSize * InputSize

var (
	channelMean = [3]float32{0.485, 0.456, 0.406}
	channelStd  = [3]float32{0.229, 0.224, 0.225}
)

// Layout is the axis order of a Tensor.
type Layout string

const (
	LayoutNCHW Layout = "NCHW"
	LayoutNHWC Layout = "NHWC"
)

// Tensor is a normalized [1,224,224,3] or [1,3,224,224] float tensor. Tensors
// are pooled; callers must Release them exactly once.
type Tensor struct {
	Data     []float32
	Shape    [4]int64
	Layout   Layout
	released atomic.Bool
}

var tensorPool = sync.Pool{New: func() any { return &Tensor{Data: make([]float32, tensorLen)} }}

var liveTensors atomic.Int64

// LiveTensors reports how many pooled tensors are currently checked out.
func LiveTensors() int64 { return liveTensors.Load() }

func acquireTensor(layout Layout) *Tensor {
	t := tensorPool.Get().(*Tensor)
	t.released.Store(false)
	t.Layout = layout
	if layout == LayoutNCHW {
		t.Shape = [4]int64{1, 3, InputSize, InputSize}
	} else {
		t.Shape = [4]int64{1, InputSize, InputSize, 3}
	}
	liveTensors.Add(1)
	return t
}

// Release returns the tensor to the pool. Extra calls are no-ops.
func (t *Tensor) Release() {
	if t == nil || !t.released.CompareAndSwap(false, true) {
		return
	}
	liveTensors.Add(-1)
	tensorPool.Put(t)
}

// index returns the flat offset of channel c at (y, x).
func (t *Tensor) index(c, y, x int) int {
	if t.Layout == LayoutNCHW {
		return c*InputSize*InputSize + y*InputSize + x
	}
	return (y*InputSize+x)*3 + c
}

// At returns the normalized value of channel c at (y, x).
func (t *Tensor) At(c, y, x int) float32 { return t.Data[t.index(c, y, x)] }

// pixel returns the denormalized 0-255 value of channel c at (y, x).
func (t *Tensor) pixel(c, y, x int) float64 {
	return float64(t.At(c, y, x)*channelStd[c]+channelMean[c]) * 255
}

func layoutFor(kind BackendKind) Layout {
	if kind == BackendExchange {
		return LayoutNCHW
	}
	return LayoutNHWC
}
