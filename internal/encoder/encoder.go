// Package encoder renders PDF417 symbols into bit matrices. It exists to
// exercise the decode pipeline end to end in tests; it is not a public
// encoding feature.
package encoder

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/barcoded/pdf417/bitutil"
	"github.com/barcoded/pdf417/decoder"
	"github.com/barcoded/pdf417/macro"
)

const (
	padCodeword  = 900
	minRows      = 3
	maxRows      = 90
	maxCodewords = 928

	macroBlockStart    = 928
	macroOptionalField = 923
	macroTerminator    = 922
)

// Config selects the symbol geometry and rendering scale.
type Config struct {
	// Columns is the number of data columns, 1-30.
	Columns int

	// ECLevel is the error correction level, 0-8.
	ECLevel int

	// ModuleWidth and RowHeight are the pixel sizes of one module. Zero
	// values default to 3 and 9.
	ModuleWidth int
	RowHeight   int

	// QuietZone is the white margin in pixels. Zero defaults to ten
	// modules.
	QuietZone int

	// Macro, when set, appends a Macro PDF417 control block built from its
	// SegmentIndex, FileID, SegmentCount and LastSegment fields.
	Macro *macro.Info
}

func (c Config) withDefaults() Config {
	if c.ModuleWidth == 0 {
		c.ModuleWidth = 3
	}
	if c.RowHeight == 0 {
		c.RowHeight = 9
	}
	if c.QuietZone == 0 {
		c.QuietZone = 10 * c.ModuleWidth
	}
	return c
}

// EncodeCodewords compacts the payload and assembles the full codeword
// stream: length descriptor, data, padding, optional macro control block,
// error correction. It returns the stream and the row count.
func EncodeCodewords(payload string, cfg Config) ([]int, int, error) {
	if cfg.Columns < 1 || cfg.Columns > 30 {
		return nil, 0, fmt.Errorf("column count %d out of range", cfg.Columns)
	}
	if cfg.ECLevel < 0 || cfg.ECLevel > 8 {
		return nil, 0, fmt.Errorf("error correction level %d out of range", cfg.ECLevel)
	}

	data, err := EncodeHighLevel(payload)
	if err != nil {
		return nil, 0, err
	}
	var macroBlock []int
	if cfg.Macro != nil {
		macroBlock = encodeMacroBlock(cfg.Macro)
	}

	numEC := 1 << uint(cfg.ECLevel+1)
	needed := 1 + len(data) + len(macroBlock) + numEC
	rows := (needed + cfg.Columns - 1) / cfg.Columns
	if rows < minRows {
		rows = minRows
	}
	if rows > maxRows {
		return nil, 0, fmt.Errorf("payload needs %d rows, more than %d", rows, maxRows)
	}
	total := rows * cfg.Columns
	if total > maxCodewords {
		return nil, 0, fmt.Errorf("%d codewords exceed the symbol capacity", total)
	}

	pad := total - needed
	stream := make([]int, 0, total)
	stream = append(stream, total-numEC)
	stream = append(stream, data...)
	for i := 0; i < pad; i++ {
		stream = append(stream, padCodeword)
	}
	stream = append(stream, macroBlock...)
	stream = append(stream, errorCorrection(stream, numEC)...)
	return stream, rows, nil
}

// encodeMacroBlock lays out the control block: 928, segment index as two
// base 900 codewords, file ID triplets, optional segment count field,
// terminator on the last segment.
func encodeMacroBlock(info *macro.Info) []int {
	out := []int{macroBlockStart}
	out = append(out, numericCodewords(fmt.Sprintf("%05d", info.SegmentIndex), 2)...)
	for i := 0; i+3 <= len(info.FileID); i += 3 {
		triplet, err := strconv.Atoi(info.FileID[i : i+3])
		if err != nil {
			continue
		}
		out = append(out, triplet)
	}
	if info.SegmentCount > 0 {
		out = append(out, macroOptionalField, 1)
		out = append(out, numericCodewords(fmt.Sprintf("%d", info.SegmentCount), 0)...)
	}
	if info.LastSegment {
		out = append(out, macroTerminator)
	}
	return out
}

// numericCodewords converts digits to base 900 behind a marker '1',
// left-padding with zero codewords to width when width is larger.
func numericCodewords(digits string, width int) []int {
	value := new(big.Int)
	value.SetString("1"+digits, 10)
	num900 := big.NewInt(900)
	zero := big.NewInt(0)
	mod := new(big.Int)
	var words []int
	for {
		value.DivMod(value, num900, mod)
		words = append(words, int(mod.Int64()))
		if value.Cmp(zero) == 0 {
			break
		}
	}
	for len(words) < width {
		words = append(words, 0)
	}
	out := make([]int, len(words))
	for i, w := range words {
		out[len(words)-1-i] = w
	}
	return out
}

// errorCorrection computes the Reed-Solomon codewords over GF(929) whose
// appending makes the stream vanish at the generator's roots.
func errorCorrection(data []int, numEC int) []int {
	field := decoder.GF929
	g := field.One()
	for i := 1; i <= numEC; i++ {
		root := decoder.NewPoly(field, []int{1, field.Subtract(0, field.Exp(i))})
		g = g.Multiply(root)
	}

	remainder := decoder.NewPoly(field, data).MultiplyByMonomial(numEC, 1)
	for !remainder.IsZero() && remainder.Degree() >= g.Degree() {
		degreeDiff := remainder.Degree() - g.Degree()
		scale := field.Multiply(remainder.Coefficient(remainder.Degree()),
			field.Inverse(g.Coefficient(g.Degree())))
		remainder = remainder.Subtract(g.MultiplyByMonomial(degreeDiff, scale))
	}

	out := make([]int, numEC)
	for i := 0; i < numEC; i++ {
		out[numEC-1-i] = field.Subtract(0, remainder.Coefficient(i))
	}
	return out
}

// leftRowIndicator and rightRowIndicator compute the indicator codeword
// values carrying row number, row count, column count and EC level.
func leftRowIndicator(rowNum, rows, columns, ecLevel int) int {
	base := (rowNum / 3) * 30
	switch rowNum % 3 {
	case 0:
		return base + (rows-1)/3
	case 1:
		return base + ecLevel*3 + (rows-1)%3
	default:
		return base + columns - 1
	}
}

func rightRowIndicator(rowNum, rows, columns, ecLevel int) int {
	base := (rowNum / 3) * 30
	switch rowNum % 3 {
	case 0:
		return base + columns - 1
	case 1:
		return base + (rows-1)/3
	default:
		return base + ecLevel*3 + (rows-1)%3
	}
}

// Render draws the codeword stream as a bit matrix, set bits black.
func Render(codewords []int, columns, rows, ecLevel int, cfg Config) *bitutil.BitMatrix {
	cfg = cfg.withDefaults()
	// 17 modules per codeword plus the 18-module stop pattern
	modules := 17*(columns+3) + 18
	width := modules*cfg.ModuleWidth + 2*cfg.QuietZone
	height := rows*cfg.RowHeight + 2*cfg.QuietZone
	matrix := bitutil.NewBitMatrix(width, height)

	for row := 0; row < rows; row++ {
		cluster := (row % 3) * 3
		x := cfg.QuietZone
		x = drawPattern(matrix, x, row, decoder.StartPattern, 17, cfg)
		x = drawPattern(matrix, x, row,
			decoder.SymbolPattern(cluster, leftRowIndicator(row, rows, columns, ecLevel)), 17, cfg)
		for col := 0; col < columns; col++ {
			x = drawPattern(matrix, x, row,
				decoder.SymbolPattern(cluster, codewords[row*columns+col]), 17, cfg)
		}
		x = drawPattern(matrix, x, row,
			decoder.SymbolPattern(cluster, rightRowIndicator(row, rows, columns, ecLevel)), 17, cfg)
		drawPattern(matrix, x, row, decoder.StopPattern, 18, cfg)
	}
	return matrix
}

func drawPattern(matrix *bitutil.BitMatrix, x, row, pattern, modules int, cfg Config) int {
	y := cfg.QuietZone + row*cfg.RowHeight
	for i := modules - 1; i >= 0; i-- {
		if pattern>>uint(i)&1 == 1 {
			matrix.SetRegion(x, y, cfg.ModuleWidth, cfg.RowHeight)
		}
		x += cfg.ModuleWidth
	}
	return x
}

// Symbol compacts, assembles and renders a payload in one call.
func Symbol(payload string, cfg Config) (*bitutil.BitMatrix, error) {
	stream, rows, err := EncodeCodewords(payload, cfg)
	if err != nil {
		return nil, err
	}
	return Render(stream, cfg.Columns, rows, cfg.ECLevel, cfg), nil
}
