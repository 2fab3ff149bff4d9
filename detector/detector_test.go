package detector

import (
	"testing"

	"github.com/barcoded/pdf417/bitutil"
)

// drawRuns draws alternating black/white runs starting at x, beginning with
// black, and returns the x just past the last run.
func drawRuns(m *bitutil.BitMatrix, x, y, scale int, runs []int) int {
	black := true
	for _, run := range runs {
		for i := 0; i < run*scale; i++ {
			if black {
				m.Set(x, y)
			}
			x++
		}
		black = !black
	}
	return x
}

// symbolFrame draws the start and stop guard patterns of a symbol with a gap
// between them, which is all the detector needs. A bar right after the start
// pattern bounds its trailing space, as the first codeword column would.
func symbolFrame(width, height, scale int) *bitutil.BitMatrix {
	m := bitutil.NewBitMatrix(width, height)
	start := []int{8, 1, 1, 1, 1, 1, 1, 3}
	stop := []int{7, 1, 1, 3, 1, 1, 1, 2, 1}
	for y := 4; y < height-4; y++ {
		end := drawRuns(m, 4, y, scale, start)
		end = drawRuns(m, end, y, scale, []int{1})
		drawRuns(m, end+30*scale, y, scale, stop)
	}
	return m
}

func TestDetectFindsGuardPatterns(t *testing.T) {
	m := symbolFrame(200, 40, 2)
	result := Detect(m, false, false)
	if len(result.Points) != 1 {
		t.Fatalf("found %d symbols, want 1", len(result.Points))
	}
	if result.Rotation != 0 {
		t.Errorf("rotation = %d, want 0", result.Rotation)
	}
	pts := result.Points[0]
	if pts[0] == nil || pts[1] == nil || pts[2] == nil || pts[3] == nil {
		t.Fatalf("missing corner points: %v", pts)
	}
	if pts[0].Y >= pts[1].Y {
		t.Errorf("top left %v not above bottom left %v", pts[0], pts[1])
	}
	if pts[0].X >= pts[2].X {
		t.Errorf("left edge %v not left of right edge %v", pts[0], pts[2])
	}
	// codeword area starts right of the start pattern
	if pts[4] == nil || pts[4].X <= pts[0].X {
		t.Errorf("codeword area corner %v not right of barcode corner %v", pts[4], pts[0])
	}
}

func TestDetectRotated(t *testing.T) {
	m := symbolFrame(200, 40, 2)
	m.Rotate180()
	result := Detect(m, false, false)
	if len(result.Points) != 1 {
		t.Fatalf("found %d symbols in rotated image, want 1", len(result.Points))
	}
	if result.Rotation != 180 {
		t.Errorf("rotation = %d, want 180", result.Rotation)
	}
}

func TestDetectEmptyImage(t *testing.T) {
	m := bitutil.NewBitMatrix(100, 100)
	result := Detect(m, true, false)
	if len(result.Points) != 0 {
		t.Fatalf("found %d symbols in blank image, want 0", len(result.Points))
	}
}

func TestDetectMultiple(t *testing.T) {
	m := bitutil.NewBitMatrix(200, 120)
	start := []int{8, 1, 1, 1, 1, 1, 1, 3}
	stop := []int{7, 1, 1, 3, 1, 1, 1, 2, 1}
	for _, top := range []int{4, 64} {
		for y := top; y < top+40; y++ {
			end := drawRuns(m, 4, y, 2, start)
			end = drawRuns(m, end, y, 2, []int{1})
			drawRuns(m, end+60, y, 2, stop)
		}
	}
	result := Detect(m, true, false)
	if len(result.Points) != 2 {
		t.Fatalf("found %d symbols, want 2", len(result.Points))
	}
}
