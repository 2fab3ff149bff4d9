// Package binarizer converts greyscale luminance data into bitonal
// matrices suitable for barcode detection.
package binarizer

import "image"

// LuminanceSource supplies 8-bit greyscale pixel data, one byte per pixel.
type LuminanceSource interface {
	// Row copies row y into the given buffer, allocating when it is nil or
	// too small, and returns the buffer.
	Row(y int, row []byte) []byte
	// Matrix returns the full luminance data in row-major order.
	Matrix() []byte
	Width() int
	Height() int
}

// ImageSource adapts an image.Image into a LuminanceSource by converting
// each pixel to greyscale up front. The luminance formula is
// (306*R + 601*G + 117*B + 0x200) >> 10 on 8-bit components.
type ImageSource struct {
	luminances []byte
	width      int
	height     int
}

// NewImageSource creates an ImageSource from any image.Image. Grey images
// copy their pixel data directly.
func NewImageSource(img image.Image) *ImageSource {
	if gray, ok := img.(*image.Gray); ok {
		return newGraySource(gray)
	}
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	luminances := make([]byte, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			r, g, b, a := c.RGBA()
			if a == 0 {
				// Fully transparent reads as white.
				luminances[y*w+x] = 0xff
				continue
			}
			r8 := r >> 8
			g8 := g >> 8
			b8 := b >> 8
			luminances[y*w+x] = byte((306*r8 + 601*g8 + 117*b8 + 0x200) >> 10)
		}
	}

	return &ImageSource{luminances: luminances, width: w, height: h}
}

func newGraySource(img *image.Gray) *ImageSource {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	luminances := make([]byte, w*h)
	for y := 0; y < h; y++ {
		srcOff := (bounds.Min.Y+y)*img.Stride + bounds.Min.X
		copy(luminances[y*w:(y+1)*w], img.Pix[srcOff:srcOff+w])
	}
	return &ImageSource{luminances: luminances, width: w, height: h}
}

// Row returns a row of luminance data.
func (s *ImageSource) Row(y int, row []byte) []byte {
	if y < 0 || y >= s.height {
		return nil
	}
	if row == nil || len(row) < s.width {
		row = make([]byte, s.width)
	}
	offset := y * s.width
	copy(row, s.luminances[offset:offset+s.width])
	return row
}

// Matrix returns a copy of the full luminance data.
func (s *ImageSource) Matrix() []byte {
	result := make([]byte, len(s.luminances))
	copy(result, s.luminances)
	return result
}

// Width returns the image width in pixels.
func (s *ImageSource) Width() int { return s.width }

// Height returns the image height in pixels.
func (s *ImageSource) Height() int { return s.height }
