package decoder

import (
	"fmt"
	"strings"
)

const maxNearbyDistance = 5

// DetectionResultColumn holds the codewords found in one symbol column,
// indexed by image row.
type DetectionResultColumn struct {
	boundingBox *BoundingBox
	codewords   []*Codeword
}

// NewDetectionResultColumn creates a column covering the bounding box's
// vertical extent.
func NewDetectionResultColumn(boundingBox *BoundingBox) *DetectionResultColumn {
	return &DetectionResultColumn{
		boundingBox: CopyBoundingBox(boundingBox),
		codewords:   make([]*Codeword, boundingBox.MaxY()-boundingBox.MinY()+1),
	}
}

// CodewordNearby returns the codeword at the given image row, or the
// nearest one within maxNearbyDistance rows.
func (col *DetectionResultColumn) CodewordNearby(imageRow int) *Codeword {
	if codeword := col.Codeword(imageRow); codeword != nil {
		return codeword
	}
	for i := 1; i < maxNearbyDistance; i++ {
		nearRow := col.ImageRowToCodewordIndex(imageRow) - i
		if nearRow >= 0 && col.codewords[nearRow] != nil {
			return col.codewords[nearRow]
		}
		nearRow = col.ImageRowToCodewordIndex(imageRow) + i
		if nearRow < len(col.codewords) && col.codewords[nearRow] != nil {
			return col.codewords[nearRow]
		}
	}
	return nil
}

// ImageRowToCodewordIndex converts an image row to an index into this
// column's codeword slice.
func (col *DetectionResultColumn) ImageRowToCodewordIndex(imageRow int) int {
	return imageRow - col.boundingBox.MinY()
}

// SetCodeword stores the codeword found at the given image row.
func (col *DetectionResultColumn) SetCodeword(imageRow int, codeword *Codeword) {
	col.codewords[col.ImageRowToCodewordIndex(imageRow)] = codeword
}

// Codeword returns the codeword at the given image row, or nil.
func (col *DetectionResultColumn) Codeword(imageRow int) *Codeword {
	return col.codewords[col.ImageRowToCodewordIndex(imageRow)]
}

// GetBoundingBox returns this column's bounding box.
func (col *DetectionResultColumn) GetBoundingBox() *BoundingBox {
	return col.boundingBox
}

// Codewords returns the codewords indexed by row offset.
func (col *DetectionResultColumn) Codewords() []*Codeword {
	return col.codewords
}

func (col *DetectionResultColumn) String() string {
	var sb strings.Builder
	for row, codeword := range col.codewords {
		if codeword == nil {
			fmt.Fprintf(&sb, "%3d:    |   \n", row)
		} else {
			fmt.Fprintf(&sb, "%3d: %3d|%3d\n", row, codeword.RowNumber(), codeword.Value())
		}
	}
	return sb.String()
}
