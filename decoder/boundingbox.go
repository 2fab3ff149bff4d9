package decoder

import (
	"math"

	"github.com/barcoded/pdf417/bitutil"
	"github.com/barcoded/pdf417/detector"
)

// BoundingBox is the pixel extent of one symbol in the image.
type BoundingBox struct {
	image       *bitutil.BitMatrix
	topLeft     detector.Point
	bottomLeft  detector.Point
	topRight    detector.Point
	bottomRight detector.Point
	minX        int
	maxX        int
	minY        int
	maxY        int
}

// NewBoundingBox creates a BoundingBox from the symbol corners. Either the
// left pair or the right pair may be nil, in which case that side is
// extended to the image edge. Both sides nil is ErrNotFound.
func NewBoundingBox(image *bitutil.BitMatrix,
	topLeft, bottomLeft, topRight, bottomRight *detector.Point) (*BoundingBox, error) {

	leftUnspecified := topLeft == nil || bottomLeft == nil
	rightUnspecified := topRight == nil || bottomRight == nil
	if leftUnspecified && rightUnspecified {
		return nil, ErrNotFound
	}

	var tl, bl, tr, br detector.Point
	switch {
	case leftUnspecified:
		tl = detector.Point{X: 0, Y: topRight.Y}
		bl = detector.Point{X: 0, Y: bottomRight.Y}
		tr = *topRight
		br = *bottomRight
	case rightUnspecified:
		tl = *topLeft
		bl = *bottomLeft
		tr = detector.Point{X: float64(image.Width() - 1), Y: topLeft.Y}
		br = detector.Point{X: float64(image.Width() - 1), Y: bottomLeft.Y}
	default:
		tl = *topLeft
		bl = *bottomLeft
		tr = *topRight
		br = *bottomRight
	}

	return &BoundingBox{
		image:       image,
		topLeft:     tl,
		bottomLeft:  bl,
		topRight:    tr,
		bottomRight: br,
		minX:        int(math.Min(tl.X, bl.X)),
		maxX:        int(math.Max(tr.X, br.X)),
		minY:        int(math.Min(tl.Y, tr.Y)),
		maxY:        int(math.Max(bl.Y, br.Y)),
	}, nil
}

// CopyBoundingBox returns a copy of bb.
func CopyBoundingBox(bb *BoundingBox) *BoundingBox {
	clone := *bb
	return &clone
}

// MergeBoundingBoxes joins a left and a right box. A nil side yields the
// other box unchanged.
func MergeBoundingBoxes(leftBox, rightBox *BoundingBox) (*BoundingBox, error) {
	if leftBox == nil {
		return rightBox, nil
	}
	if rightBox == nil {
		return leftBox, nil
	}
	tl := leftBox.topLeft
	bl := leftBox.bottomLeft
	tr := rightBox.topRight
	br := rightBox.bottomRight
	return NewBoundingBox(leftBox.image, &tl, &bl, &tr, &br)
}

// AddMissingRows grows the box vertically by the given number of rows at
// the top and bottom, on the left or right edge, clamped to the image.
func (bb *BoundingBox) AddMissingRows(missingStartRows, missingEndRows int, isLeft bool) (*BoundingBox, error) {
	newTopLeft := bb.topLeft
	newBottomLeft := bb.bottomLeft
	newTopRight := bb.topRight
	newBottomRight := bb.bottomRight

	if missingStartRows > 0 {
		top := bb.topLeft
		if !isLeft {
			top = bb.topRight
		}
		newMinY := int(top.Y) - missingStartRows
		if newMinY < 0 {
			newMinY = 0
		}
		newTop := detector.Point{X: top.X, Y: float64(newMinY)}
		if isLeft {
			newTopLeft = newTop
		} else {
			newTopRight = newTop
		}
	}

	if missingEndRows > 0 {
		bottom := bb.bottomLeft
		if !isLeft {
			bottom = bb.bottomRight
		}
		newMaxY := int(bottom.Y) + missingEndRows
		if newMaxY >= bb.image.Height() {
			newMaxY = bb.image.Height() - 1
		}
		newBottom := detector.Point{X: bottom.X, Y: float64(newMaxY)}
		if isLeft {
			newBottomLeft = newBottom
		} else {
			newBottomRight = newBottom
		}
	}

	return NewBoundingBox(bb.image, &newTopLeft, &newBottomLeft, &newTopRight, &newBottomRight)
}

// MinX returns the leftmost x coordinate.
func (bb *BoundingBox) MinX() int { return bb.minX }

// MaxX returns the rightmost x coordinate.
func (bb *BoundingBox) MaxX() int { return bb.maxX }

// MinY returns the topmost y coordinate.
func (bb *BoundingBox) MinY() int { return bb.minY }

// MaxY returns the bottommost y coordinate.
func (bb *BoundingBox) MaxY() int { return bb.maxY }

// TopLeft returns the top-left corner.
func (bb *BoundingBox) TopLeft() detector.Point { return bb.topLeft }

// TopRight returns the top-right corner.
func (bb *BoundingBox) TopRight() detector.Point { return bb.topRight }

// BottomLeft returns the bottom-left corner.
func (bb *BoundingBox) BottomLeft() detector.Point { return bb.bottomLeft }

// BottomRight returns the bottom-right corner.
func (bb *BoundingBox) BottomRight() detector.Point { return bb.bottomRight }
