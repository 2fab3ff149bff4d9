package decoder

import "fmt"

const barcodeRowUnknown = -1

// Codeword is one decoded codeword with its horizontal extent in the image
// and its cluster bucket.
type Codeword struct {
	startX    int
	endX      int
	bucket    int
	value     int
	rowNumber int
}

// NewCodeword creates a Codeword with no row number assigned yet.
func NewCodeword(startX, endX, bucket, value int) *Codeword {
	return &Codeword{
		startX:    startX,
		endX:      endX,
		bucket:    bucket,
		value:     value,
		rowNumber: barcodeRowUnknown,
	}
}

// HasValidRowNumber reports whether the assigned row number agrees with
// the bucket.
func (c *Codeword) HasValidRowNumber() bool {
	return c.IsValidRowNumber(c.rowNumber)
}

// IsValidRowNumber reports whether rowNumber is consistent with this
// codeword's cluster. Row r must carry cluster 3*(r mod 3).
func (c *Codeword) IsValidRowNumber(rowNumber int) bool {
	return rowNumber != barcodeRowUnknown && c.bucket == (rowNumber%3)*3
}

// SetRowNumberAsRowIndicatorColumn derives the row number from the value
// and bucket, valid only for codewords in a row indicator column.
func (c *Codeword) SetRowNumberAsRowIndicatorColumn() {
	c.rowNumber = (c.value/30)*3 + c.bucket/3
}

// Width returns the codeword width in pixels.
func (c *Codeword) Width() int { return c.endX - c.startX }

// StartX returns the starting x coordinate.
func (c *Codeword) StartX() int { return c.startX }

// EndX returns the x coordinate just past the codeword.
func (c *Codeword) EndX() int { return c.endX }

// Bucket returns the cluster bucket: 0, 3 or 6.
func (c *Codeword) Bucket() int { return c.bucket }

// Value returns the codeword value.
func (c *Codeword) Value() int { return c.value }

// RowNumber returns the assigned row, or -1 when unknown.
func (c *Codeword) RowNumber() int { return c.rowNumber }

// SetRowNumber assigns the row this codeword belongs to.
func (c *Codeword) SetRowNumber(rowNumber int) { c.rowNumber = rowNumber }

func (c *Codeword) String() string {
	return fmt.Sprintf("%d|%d", c.rowNumber, c.value)
}
