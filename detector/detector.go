// Package detector locates symbols in bitonal images by finding their
// start and stop guard patterns.
package detector

import (
	"math"

	"github.com/barcoded/pdf417/bitutil"
)

// Point is an image position in pixels. Fractional coordinates come from
// pattern boundary interpolation.
type Point struct {
	X, Y float64
}

// Result holds the symbols located in one orientation of an image.
//
// Each entry of Points describes one symbol as an 8-element slice:
//
//	[0] top left of the barcode        [4] top left of the codeword area
//	[1] bottom left of the barcode     [5] bottom left of the codeword area
//	[2] top right of the barcode       [6] top right of the codeword area
//	[3] bottom right of the barcode    [7] bottom right of the codeword area
//
// Entries are nil where the corresponding guard pattern edge was not seen.
type Result struct {
	Bits     *bitutil.BitMatrix
	Points   [][]*Point
	Rotation int
}

var (
	indexesStartPattern = [4]int{0, 4, 1, 5}
	indexesStopPattern  = [4]int{6, 2, 7, 3}
)

const (
	maxAvgVariance               = 0.42
	maxIndividualVariance        = 0.8
	maxStopPatternHeightVariance = 0.5
	maxPixelDrift                = 3
	maxPatternDrift              = 5
	skippedRowCountMax           = 25
	rowStep                      = 5
	barcodeMinHeight             = 10
)

// Start pattern 11111111 0 1 0 1 0 1 000 as bar/space run lengths.
var startPattern = [8]int{8, 1, 1, 1, 1, 1, 1, 3}

// Stop pattern 1111111 0 1 000 1 0 1 00 1.
var stopPattern = [9]int{7, 1, 1, 3, 1, 1, 1, 2, 1}

var rotations = [4]int{0, 180, 270, 90}

// Detect locates symbols in the matrix, trying 0, 180, 270 and 90 degree
// rotations in that order. If multiple is true the whole image is searched
// for symbols; otherwise at most one is returned. tryHarder retries over
// noise at the cost of speed. The returned Points is nil when nothing was
// found.
func Detect(matrix *bitutil.BitMatrix, multiple, tryHarder bool) *Result {
	for _, rotation := range rotations {
		bits := applyRotation(matrix, rotation)
		points := detect(multiple, bits, tryHarder)
		if len(points) > 0 {
			return &Result{Bits: bits, Points: points, Rotation: rotation}
		}
	}
	return &Result{Bits: matrix, Rotation: 0}
}

func applyRotation(matrix *bitutil.BitMatrix, rotation int) *bitutil.BitMatrix {
	if rotation%360 == 0 {
		return matrix
	}
	rotated := matrix.Clone()
	rotated.Rotate(rotation)
	return rotated
}

// detect finds symbols in a single orientation.
func detect(multiple bool, matrix *bitutil.BitMatrix, tryHarder bool) [][]*Point {
	var found [][]*Point
	row := 0
	column := 0
	foundBarcodeInRow := false

	for row < matrix.Height() {
		vertices := findVertices(matrix, row, column, tryHarder)

		if vertices[0] == nil && vertices[3] == nil {
			if !foundBarcodeInRow {
				if !tryHarder {
					break
				}
				row += rowStep
				continue
			}
			// Nothing here. Restart from the first column just below the
			// lowest symbol found so far.
			foundBarcodeInRow = false
			column = 0
			for _, pts := range found {
				if pts[1] != nil {
					row = maxInt(row, int(pts[1].Y))
				}
				if pts[3] != nil {
					row = maxInt(row, int(pts[3].Y))
				}
			}
			row += rowStep
			continue
		}
		foundBarcodeInRow = true
		found = append(found, vertices)
		if !multiple && !tryHarder {
			break
		}
		// Continue the search for the next symbol past the start pattern of
		// the one just found, unless a right edge gives a better bound.
		if vertices[2] != nil {
			column = int(vertices[2].X)
			row = int(vertices[2].Y)
		} else {
			column = int(vertices[4].X)
			row = int(vertices[4].Y)
		}
	}

	return found
}

// findVertices locates the corner points of one symbol using the start and
// stop patterns as locators. See Result for the slice layout.
func findVertices(matrix *bitutil.BitMatrix, startRow, startColumn int, tryHarder bool) []*Point {
	height := matrix.Height()
	width := matrix.Width()

	result := make([]*Point, 8)
	minHeight := barcodeMinHeight

	copyToResult(result,
		findRowsWithPattern(matrix, height, width, startRow, startColumn, minHeight, startPattern[:], tryHarder),
		indexesStartPattern[:])

	if result[4] != nil {
		startColumn = int(result[4].X)
		startRow = int(result[4].Y)
		if result[5] != nil {
			endRow := int(result[5].Y)
			startPatternHeight := endRow - startRow
			minHeight = maxInt(int(float64(startPatternHeight)*maxStopPatternHeightVariance), barcodeMinHeight)
		}
	}

	copyToResult(result,
		findRowsWithPattern(matrix, height, width, startRow, startColumn, minHeight, stopPattern[:], tryHarder),
		indexesStopPattern[:])

	return result
}

func copyToResult(result, tmpResult []*Point, destinationIndexes []int) {
	for i, idx := range destinationIndexes {
		result[idx] = tmpResult[i]
	}
}

// findRowsWithPattern finds the top and bottom rows where a guard pattern
// occurs, returning the four corner points of its extent.
func findRowsWithPattern(matrix *bitutil.BitMatrix,
	height, width, startRow, startColumn, minHeight int,
	pattern []int, tryHarder bool) []*Point {

	result := make([]*Point, 4)
	found := false
	counters := make([]int, len(pattern))

	for ; startRow < height; startRow += rowStep {
		loc := findGuardPattern(matrix, startColumn, startRow, width, pattern, counters)
		if loc != nil {
			// walk back up to the first row still containing the pattern
			for startRow > 0 {
				startRow--
				previousRowLoc := findGuardPattern(matrix, startColumn, startRow, width, pattern, counters)
				if previousRowLoc != nil {
					loc = previousRowLoc
				} else {
					startRow++
					break
				}
			}
			result[0] = &Point{X: float64(loc[0]), Y: float64(startRow)}
			result[1] = &Point{X: float64(loc[1]), Y: float64(startRow)}
			found = true
			break
		}
	}

	stopRow := startRow + 1
	if found {
		skippedRowCount := 0
		previousRowLoc := [2]int{int(result[0].X), int(result[1].X)}
		for ; stopRow < height; stopRow++ {
			loc := findGuardPattern(matrix, previousRowLoc[0], stopRow, width, pattern, counters)
			// A pattern belongs to the same symbol only while its start and
			// end positions stay close to the previous row's. The allowed
			// drift is a little generous so that skipped rows don't need
			// their own bookkeeping.
			if loc != nil &&
				abs(previousRowLoc[0]-loc[0]) < maxPatternDrift &&
				abs(previousRowLoc[1]-loc[1]) < maxPatternDrift {
				previousRowLoc = [2]int{loc[0], loc[1]}
				skippedRowCount = 0
			} else {
				if skippedRowCount > skippedRowCountMax {
					break
				}
				skippedRowCount++
			}
		}
		stopRow -= skippedRowCount + 1
		result[2] = &Point{X: float64(previousRowLoc[0]), Y: float64(stopRow)}
		result[3] = &Point{X: float64(previousRowLoc[1]), Y: float64(stopRow)}
	}

	if stopRow-startRow < minHeight {
		if tryHarder && found {
			// Too short to be a symbol, likely noise. Resume past it.
			for i := range result {
				result[i] = nil
			}
			return findRowsWithPattern(matrix, height, width, stopRow+1+rowStep, startColumn, minHeight, pattern, tryHarder)
		}
		for i := range result {
			result[i] = nil
		}
	}

	return result
}

// findGuardPattern searches one row for a guard pattern, returning the
// start and end offsets or nil.
func findGuardPattern(matrix *bitutil.BitMatrix,
	column, row, width int,
	pattern []int,
	counters []int) []int {

	for i := range counters {
		counters[i] = 0
	}
	patternStart := column
	pixelDrift := 0

	// back up over black pixels left of the starting column, a few at most
	for patternStart > 0 && pixelDrift < maxPixelDrift && matrix.Get(patternStart, row) {
		patternStart--
		pixelDrift++
	}

	x := patternStart
	counterPosition := 0
	patternLength := len(pattern)
	isWhite := false

	for ; x < width; x++ {
		pixel := matrix.Get(x, row)
		if pixel != isWhite {
			counters[counterPosition]++
		} else {
			if counterPosition == patternLength-1 {
				if patternMatchVariance(counters, pattern) < maxAvgVariance {
					return []int{patternStart, x}
				}
				patternStart += counters[0] + counters[1]
				copy(counters, counters[2:counterPosition+1])
				counters[counterPosition-1] = 0
				counters[counterPosition] = 0
				counterPosition--
			} else {
				counterPosition++
			}
			counters[counterPosition] = 1
			isWhite = !isWhite
		}
	}

	if counterPosition == patternLength-1 &&
		patternMatchVariance(counters, pattern) < maxAvgVariance {
		return []int{patternStart, x - 1}
	}

	return nil
}

// patternMatchVariance reports how closely observed black/white run counts
// match a target pattern, as total variance from the expected proportions
// over the total width. Infinity means no plausible match.
func patternMatchVariance(counters, pattern []int) float64 {
	numCounters := len(counters)
	total := 0
	patternLength := 0
	for i := 0; i < numCounters; i++ {
		total += counters[i]
		patternLength += pattern[i]
	}
	if total < patternLength {
		// fewer pixels than pattern modules cannot match reliably
		return math.Inf(1)
	}

	unitBarWidth := float64(total) / float64(patternLength)
	maxIndVar := maxIndividualVariance * unitBarWidth

	totalVariance := 0.0
	for x := 0; x < numCounters; x++ {
		counter := float64(counters[x])
		variance := math.Abs(counter - float64(pattern[x])*unitBarWidth)
		if variance > maxIndVar {
			return math.Inf(1)
		}
		totalVariance += variance
	}

	return totalVariance / float64(total)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
