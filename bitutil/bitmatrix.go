package bitutil

import "strings"

// BitMatrix is a 2D grid of bits. x indexes columns, y indexes rows, with
// the origin at the top-left.
type BitMatrix struct {
	width   int
	height  int
	rowSize int
	words   []uint32
}

// NewBitMatrix creates a BitMatrix with the given width and height, all
// bits unset.
func NewBitMatrix(width, height int) *BitMatrix {
	if width < 1 || height < 1 {
		panic("bitutil: matrix dimensions must be positive")
	}
	rowSize := (width + 31) / 32
	return &BitMatrix{
		width:   width,
		height:  height,
		rowSize: rowSize,
		words:   make([]uint32, rowSize*height),
	}
}

// ParseStringMatrix builds a BitMatrix from a textual grid, mainly for
// tests. Each line is a row; setStr marks a set bit, unsetStr an unset one.
func ParseStringMatrix(repr, setStr, unsetStr string) *BitMatrix {
	set := make([]bool, len(repr))
	bitPos := 0
	rowStart := 0
	rowLength := -1
	numRows := 0
	pos := 0
	for pos < len(repr) {
		switch {
		case repr[pos] == '\n' || repr[pos] == '\r':
			if bitPos > rowStart {
				if rowLength == -1 {
					rowLength = bitPos - rowStart
				} else if bitPos-rowStart != rowLength {
					panic("bitutil: row lengths do not match")
				}
				rowStart = bitPos
				numRows++
			}
			pos++
		case len(repr) >= pos+len(setStr) && repr[pos:pos+len(setStr)] == setStr:
			pos += len(setStr)
			set[bitPos] = true
			bitPos++
		case len(repr) >= pos+len(unsetStr) && repr[pos:pos+len(unsetStr)] == unsetStr:
			pos += len(unsetStr)
			bitPos++
		default:
			panic("bitutil: illegal character in matrix string")
		}
	}
	if bitPos > rowStart {
		if rowLength == -1 {
			rowLength = bitPos - rowStart
		} else if bitPos-rowStart != rowLength {
			panic("bitutil: row lengths do not match")
		}
		numRows++
	}
	m := NewBitMatrix(rowLength, numRows)
	for i := 0; i < bitPos; i++ {
		if set[i] {
			m.Set(i%rowLength, i/rowLength)
		}
	}
	return m
}

// Get returns true if the bit at (x, y) is set.
func (m *BitMatrix) Get(x, y int) bool {
	return m.words[y*m.rowSize+x/32]>>uint(x&0x1f)&1 != 0
}

// Set sets the bit at (x, y).
func (m *BitMatrix) Set(x, y int) {
	m.words[y*m.rowSize+x/32] |= 1 << uint(x&0x1f)
}

// Unset clears the bit at (x, y).
func (m *BitMatrix) Unset(x, y int) {
	m.words[y*m.rowSize+x/32] &^= 1 << uint(x&0x1f)
}

// Flip inverts the bit at (x, y).
func (m *BitMatrix) Flip(x, y int) {
	m.words[y*m.rowSize+x/32] ^= 1 << uint(x&0x1f)
}

// SetRegion sets every bit in the rectangle of the given width and height
// whose top-left corner is (left, top).
func (m *BitMatrix) SetRegion(left, top, width, height int) {
	if top < 0 || left < 0 {
		panic("bitutil: region origin must be nonnegative")
	}
	if height < 1 || width < 1 {
		panic("bitutil: region dimensions must be positive")
	}
	right := left + width
	bottom := top + height
	if bottom > m.height || right > m.width {
		panic("bitutil: region exceeds matrix bounds")
	}
	for y := top; y < bottom; y++ {
		offset := y * m.rowSize
		for x := left; x < right; x++ {
			m.words[offset+x/32] |= 1 << uint(x&0x1f)
		}
	}
}

// Row copies row y into the given BitArray, allocating a new one when row
// is nil or too small.
func (m *BitMatrix) Row(y int, row *BitArray) *BitArray {
	if row == nil || row.Size() < m.width {
		row = NewBitArray(m.width)
	} else {
		row.Clear()
	}
	offset := y * m.rowSize
	for x := 0; x < m.rowSize; x++ {
		row.SetBulk(x*32, m.words[offset+x])
	}
	return row
}

// SetRow overwrites row y with the contents of the given BitArray.
func (m *BitMatrix) SetRow(y int, row *BitArray) {
	copy(m.words[y*m.rowSize:], row.Words()[:m.rowSize])
}

// Rotate rotates the matrix counterclockwise by the given degrees, which
// must be a multiple of 90.
func (m *BitMatrix) Rotate(degrees int) {
	switch ((degrees % 360) + 360) % 360 {
	case 0:
	case 90:
		m.Rotate90()
	case 180:
		m.Rotate180()
	case 270:
		m.Rotate90()
		m.Rotate180()
	default:
		panic("bitutil: rotation must be a multiple of 90 degrees")
	}
}

// Rotate180 rotates the matrix 180 degrees in place.
func (m *BitMatrix) Rotate180() {
	topRow := NewBitArray(m.width)
	bottomRow := NewBitArray(m.width)
	half := (m.height + 1) / 2
	for i := 0; i < half; i++ {
		topRow = m.Row(i, topRow)
		j := m.height - 1 - i
		bottomRow = m.Row(j, bottomRow)
		topRow.Reverse()
		bottomRow.Reverse()
		m.SetRow(i, bottomRow)
		m.SetRow(j, topRow)
	}
}

// Rotate90 rotates the matrix 90 degrees counterclockwise.
func (m *BitMatrix) Rotate90() {
	newWidth := m.height
	newHeight := m.width
	newRowSize := (newWidth + 31) / 32
	newWords := make([]uint32, newRowSize*newHeight)

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.words[y*m.rowSize+x/32]>>uint(x&0x1f)&1 != 0 {
				newWords[(newHeight-1-x)*newRowSize+y/32] |= 1 << uint(y&0x1f)
			}
		}
	}
	m.width = newWidth
	m.height = newHeight
	m.rowSize = newRowSize
	m.words = newWords
}

// Width returns the number of columns.
func (m *BitMatrix) Width() int { return m.width }

// Height returns the number of rows.
func (m *BitMatrix) Height() int { return m.height }

// Clone returns a deep copy of the matrix.
func (m *BitMatrix) Clone() *BitMatrix {
	w := make([]uint32, len(m.words))
	copy(w, m.words)
	return &BitMatrix{width: m.width, height: m.height, rowSize: m.rowSize, words: w}
}

// Equals reports whether two matrices have identical dimensions and bits.
func (m *BitMatrix) Equals(other *BitMatrix) bool {
	if m.width != other.width || m.height != other.height {
		return false
	}
	for i := range m.words {
		if m.words[i] != other.words[i] {
			return false
		}
	}
	return true
}

// String renders set bits as "X " and unset bits as "  ", one row per line.
func (m *BitMatrix) String() string {
	var sb strings.Builder
	sb.Grow(m.height * (2*m.width + 1))
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.Get(x, y) {
				sb.WriteString("X ")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
