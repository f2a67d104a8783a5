package vision

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Layout is the memory order of the engine's input tensor.
type Layout int

const (
	// LayoutNHWC is [1, H, W, 3], the Keras/TFLite export order.
	LayoutNHWC Layout = iota
	// LayoutNCHW is [1, 3, H, W].
	LayoutNCHW
)

func (l Layout) String() string {
	if l == LayoutNCHW {
		return "NCHW"
	}
	return "NHWC"
}

// LayoutFor infers the layout and the square spatial size from a 4-d input shape.
func LayoutFor(shape []int64) (Layout, int, error) {
	if len(shape) != 4 {
		return 0, 0, fmt.Errorf("expected 4-d input shape, got %v", shape)
	}
	switch {
	case shape[3] == 3 && shape[1] == shape[2]:
		return LayoutNHWC, int(shape[1]), nil
	case shape[1] == 3 && shape[2] == shape[3]:
		return LayoutNCHW, int(shape[2]), nil
	default:
		return 0, 0, fmt.Errorf("unsupported input shape %v", shape)
	}
}

// dropAlpha returns img with every pixel made opaque while keeping its
// non-premultiplied colour. Premultiplied sources cannot recover colour under
// zero alpha; PNG decodes translucent images as NRGBA, which keeps it.
func dropAlpha(img image.Image) image.Image {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return img
	}

	b := img.Bounds()
	out := image.NewNRGBA(b)
	if src, ok := img.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			copy(out.Pix[out.PixOffset(b.Min.X, y):out.PixOffset(b.Max.X, y)],
				src.Pix[src.PixOffset(b.Min.X, y):src.PixOffset(b.Max.X, y)])
		}
	} else {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				out.SetNRGBA(x, y, color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA))
			}
		}
	}
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Preprocess resizes img to size x size with bilinear sampling and returns a
// batch of one in BGR channel order scaled into [0, 1]. BGR matches how the
// model's training pipeline read images. Alpha is dropped and the colour
// channels are kept as stored, so transparent pixels keep their colour.
func Preprocess(img image.Image, size int, layout Layout) []float32 {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), dropAlpha(img), img.Bounds(), draw.Src, nil)

	plane := size * size
	out := make([]float32, 3*plane)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			idx := y*size + x
			c := dst.NRGBAAt(x, y)
			b, g, r := float32(c.B)/255.0, float32(c.G)/255.0, float32(c.R)/255.0
			if layout == LayoutNCHW {
				out[idx] = b
				out[plane+idx] = g
				out[2*plane+idx] = r
				continue
			}
			out[idx*3] = b
			out[idx*3+1] = g
			out[idx*3+2] = r
		}
	}
	return out
}
