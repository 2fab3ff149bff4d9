package binarizer

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func grayImage(w, h int, fill byte) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = fill
	}
	return img
}

func TestImageSourceGray(t *testing.T) {
	img := grayImage(10, 4, 0x80)
	img.SetGray(3, 2, color.Gray{Y: 0x10})
	src := NewImageSource(img)
	if src.Width() != 10 || src.Height() != 4 {
		t.Fatalf("dimensions = %dx%d, want 10x4", src.Width(), src.Height())
	}
	row := src.Row(2, nil)
	if row[3] != 0x10 {
		t.Errorf("row[3] = %#x, want 0x10", row[3])
	}
	if row[0] != 0x80 {
		t.Errorf("row[0] = %#x, want 0x80", row[0])
	}
}

func TestImageSourceRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	img.Set(1, 0, color.RGBA{A: 255})
	src := NewImageSource(img)
	m := src.Matrix()
	if m[0] != 0xff {
		t.Errorf("white pixel luminance = %#x, want 0xff", m[0])
	}
	if m[1] != 0 {
		t.Errorf("black pixel luminance = %#x, want 0", m[1])
	}
}

func TestHybridBlackMatrix(t *testing.T) {
	img := grayImage(64, 64, 0xe0)
	for y := 16; y < 48; y++ {
		for x := 16; x < 48; x++ {
			img.SetGray(x, y, color.Gray{Y: 0x20})
		}
	}
	matrix, err := NewHybrid(NewImageSource(img)).BlackMatrix()
	if err != nil {
		t.Fatalf("BlackMatrix: %v", err)
	}
	if !matrix.Get(32, 32) {
		t.Error("center of dark square not set")
	}
	if matrix.Get(2, 2) {
		t.Error("light background was set")
	}
}

func TestEstimateBlackPointSinglePeak(t *testing.T) {
	var buckets [luminanceBuckets]int
	buckets[16] = 1024
	if _, err := estimateBlackPoint(buckets[:]); !errors.Is(err, ErrLowContrast) {
		t.Fatalf("err = %v, want ErrLowContrast", err)
	}
}

func TestGlobalHistogramLowContrast(t *testing.T) {
	img := grayImage(32, 32, 0x80)
	_, err := NewGlobalHistogram(NewImageSource(img)).BlackMatrix()
	if !errors.Is(err, ErrLowContrast) {
		t.Fatalf("err = %v, want ErrLowContrast", err)
	}
}
