package decoder

import (
	"fmt"
	"strings"
)

const adjustRowNumberSkip = 2

// ColumnView is implemented by both plain columns and row indicator
// columns so a DetectionResult can hold them side by side.
type ColumnView interface {
	CodewordNearby(imageRow int) *Codeword
	ImageRowToCodewordIndex(imageRow int) int
	SetCodeword(imageRow int, codeword *Codeword)
	Codeword(imageRow int) *Codeword
	GetBoundingBox() *BoundingBox
	Codewords() []*Codeword
	String() string
}

// DetectionResult assembles all scanned columns of one symbol, including
// the two indicator columns, and reconciles their row numbers.
type DetectionResult struct {
	barcodeMetadata    *BarcodeMetadata
	columns            []ColumnView
	boundingBox        *BoundingBox
	barcodeColumnCount int
}

// NewDetectionResult creates a DetectionResult sized for the column count
// in the metadata plus the two indicator columns.
func NewDetectionResult(barcodeMetadata *BarcodeMetadata, boundingBox *BoundingBox) *DetectionResult {
	return &DetectionResult{
		barcodeMetadata:    barcodeMetadata,
		barcodeColumnCount: barcodeMetadata.ColumnCount(),
		boundingBox:        boundingBox,
		columns:            make([]ColumnView, barcodeMetadata.ColumnCount()+2),
	}
}

// GetDetectionResultColumns reconciles row numbers across all columns and
// returns them. Adjustment repeats until it stops making progress.
func (dr *DetectionResult) GetDetectionResultColumns() []ColumnView {
	dr.adjustIndicatorColumnRowNumbers(dr.columns[0])
	dr.adjustIndicatorColumnRowNumbers(dr.columns[dr.barcodeColumnCount+1])
	unadjustedCodewordCount := maxCodewordsInBarcode
	var previousUnadjustedCount int
	for {
		previousUnadjustedCount = unadjustedCodewordCount
		unadjustedCodewordCount = dr.adjustRowNumbers()
		if unadjustedCodewordCount <= 0 || unadjustedCodewordCount >= previousUnadjustedCount {
			break
		}
	}
	return dr.columns
}

func (dr *DetectionResult) adjustIndicatorColumnRowNumbers(col ColumnView) {
	if ric, ok := col.(*DetectionResultRowIndicatorColumn); ok && ric != nil {
		ric.AdjustCompleteIndicatorColumnRowNumbers(dr.barcodeMetadata)
	}
}

func (dr *DetectionResult) adjustRowNumbers() int {
	unadjustedCount := dr.adjustRowNumbersByRow()
	if unadjustedCount == 0 {
		return 0
	}
	for barcodeColumn := 1; barcodeColumn < dr.barcodeColumnCount+1; barcodeColumn++ {
		codewords := dr.columns[barcodeColumn].Codewords()
		for codewordsRow := range codewords {
			if codewords[codewordsRow] == nil {
				continue
			}
			if !codewords[codewordsRow].HasValidRowNumber() {
				dr.adjustRowNumbersFromNeighbors(barcodeColumn, codewordsRow, codewords)
			}
		}
	}
	return unadjustedCount
}

func (dr *DetectionResult) adjustRowNumbersByRow() int {
	dr.adjustRowNumbersFromBothIndicators()
	unadjustedCount := dr.adjustRowNumbersFromLeftIndicator()
	return unadjustedCount + dr.adjustRowNumbersFromRightIndicator()
}

// adjustRowNumbersFromBothIndicators assigns row numbers wherever the two
// indicator columns agree.
func (dr *DetectionResult) adjustRowNumbersFromBothIndicators() {
	if dr.columns[0] == nil || dr.columns[dr.barcodeColumnCount+1] == nil {
		return
	}
	leftCodewords := dr.columns[0].Codewords()
	rightCodewords := dr.columns[dr.barcodeColumnCount+1].Codewords()
	for codewordsRow := range leftCodewords {
		if leftCodewords[codewordsRow] == nil ||
			rightCodewords[codewordsRow] == nil ||
			leftCodewords[codewordsRow].RowNumber() != rightCodewords[codewordsRow].RowNumber() {
			continue
		}
		for barcodeColumn := 1; barcodeColumn <= dr.barcodeColumnCount; barcodeColumn++ {
			codeword := dr.columns[barcodeColumn].Codewords()[codewordsRow]
			if codeword == nil {
				continue
			}
			codeword.SetRowNumber(leftCodewords[codewordsRow].RowNumber())
			if !codeword.HasValidRowNumber() {
				dr.columns[barcodeColumn].Codewords()[codewordsRow] = nil
			}
		}
	}
}

func (dr *DetectionResult) adjustRowNumbersFromRightIndicator() int {
	if dr.columns[dr.barcodeColumnCount+1] == nil {
		return 0
	}
	unadjustedCount := 0
	codewords := dr.columns[dr.barcodeColumnCount+1].Codewords()
	for codewordsRow := range codewords {
		if codewords[codewordsRow] == nil {
			continue
		}
		rowIndicatorRowNumber := codewords[codewordsRow].RowNumber()
		invalidRowCounts := 0
		for barcodeColumn := dr.barcodeColumnCount + 1; barcodeColumn > 0 && invalidRowCounts < adjustRowNumberSkip; barcodeColumn-- {
			codeword := dr.columns[barcodeColumn].Codewords()[codewordsRow]
			if codeword != nil {
				invalidRowCounts = adjustRowNumberIfValid(rowIndicatorRowNumber, invalidRowCounts, codeword)
				if !codeword.HasValidRowNumber() {
					unadjustedCount++
				}
			}
		}
	}
	return unadjustedCount
}

func (dr *DetectionResult) adjustRowNumbersFromLeftIndicator() int {
	if dr.columns[0] == nil {
		return 0
	}
	unadjustedCount := 0
	codewords := dr.columns[0].Codewords()
	for codewordsRow := range codewords {
		if codewords[codewordsRow] == nil {
			continue
		}
		rowIndicatorRowNumber := codewords[codewordsRow].RowNumber()
		invalidRowCounts := 0
		for barcodeColumn := 1; barcodeColumn < dr.barcodeColumnCount+1 && invalidRowCounts < adjustRowNumberSkip; barcodeColumn++ {
			codeword := dr.columns[barcodeColumn].Codewords()[codewordsRow]
			if codeword != nil {
				invalidRowCounts = adjustRowNumberIfValid(rowIndicatorRowNumber, invalidRowCounts, codeword)
				if !codeword.HasValidRowNumber() {
					unadjustedCount++
				}
			}
		}
	}
	return unadjustedCount
}

func adjustRowNumberIfValid(rowIndicatorRowNumber, invalidRowCounts int, codeword *Codeword) int {
	if codeword == nil {
		return invalidRowCounts
	}
	if !codeword.HasValidRowNumber() {
		if codeword.IsValidRowNumber(rowIndicatorRowNumber) {
			codeword.SetRowNumber(rowIndicatorRowNumber)
			invalidRowCounts = 0
		} else {
			invalidRowCounts++
		}
	}
	return invalidRowCounts
}

// adjustRowNumbersFromNeighbors fills in a row number from the closest
// neighbor codeword in the same cluster bucket.
func (dr *DetectionResult) adjustRowNumbersFromNeighbors(barcodeColumn, codewordsRow int, codewords []*Codeword) {
	codeword := codewords[codewordsRow]
	previousColumnCodewords := dr.columns[barcodeColumn-1].Codewords()
	nextColumnCodewords := previousColumnCodewords
	if dr.columns[barcodeColumn+1] != nil {
		nextColumnCodewords = dr.columns[barcodeColumn+1].Codewords()
	}

	// candidates ordered by how trustworthy their position is
	otherCodewords := make([]*Codeword, 14)
	otherCodewords[2] = previousColumnCodewords[codewordsRow]
	otherCodewords[3] = nextColumnCodewords[codewordsRow]

	if codewordsRow > 0 {
		otherCodewords[0] = codewords[codewordsRow-1]
		otherCodewords[4] = previousColumnCodewords[codewordsRow-1]
		otherCodewords[5] = nextColumnCodewords[codewordsRow-1]
	}
	if codewordsRow > 1 {
		otherCodewords[8] = codewords[codewordsRow-2]
		otherCodewords[10] = previousColumnCodewords[codewordsRow-2]
		otherCodewords[11] = nextColumnCodewords[codewordsRow-2]
	}
	if codewordsRow < len(codewords)-1 {
		otherCodewords[1] = codewords[codewordsRow+1]
		otherCodewords[6] = previousColumnCodewords[codewordsRow+1]
		otherCodewords[7] = nextColumnCodewords[codewordsRow+1]
	}
	if codewordsRow < len(codewords)-2 {
		otherCodewords[9] = codewords[codewordsRow+2]
		otherCodewords[12] = previousColumnCodewords[codewordsRow+2]
		otherCodewords[13] = nextColumnCodewords[codewordsRow+2]
	}
	for _, otherCodeword := range otherCodewords {
		if adjustRowNumberFromNeighbor(codeword, otherCodeword) {
			return
		}
	}
}

func adjustRowNumberFromNeighbor(codeword, otherCodeword *Codeword) bool {
	if otherCodeword == nil {
		return false
	}
	if otherCodeword.HasValidRowNumber() && otherCodeword.Bucket() == codeword.Bucket() {
		codeword.SetRowNumber(otherCodeword.RowNumber())
		return true
	}
	return false
}

// BarcodeColumnCount returns the number of data columns.
func (dr *DetectionResult) BarcodeColumnCount() int {
	return dr.barcodeColumnCount
}

// BarcodeRowCount returns the total row count.
func (dr *DetectionResult) BarcodeRowCount() int {
	return dr.barcodeMetadata.RowCount()
}

// BarcodeECLevel returns the error correction level.
func (dr *DetectionResult) BarcodeECLevel() int {
	return dr.barcodeMetadata.ErrorCorrectionLevel()
}

// SetBoundingBox replaces the bounding box.
func (dr *DetectionResult) SetBoundingBox(boundingBox *BoundingBox) {
	dr.boundingBox = boundingBox
}

// GetBoundingBox returns the bounding box.
func (dr *DetectionResult) GetBoundingBox() *BoundingBox {
	return dr.boundingBox
}

// SetDetectionResultColumn stores a column. Index 0 and columnCount+1 are
// the indicator columns.
func (dr *DetectionResult) SetDetectionResultColumn(barcodeColumn int, col ColumnView) {
	dr.columns[barcodeColumn] = col
}

// GetDetectionResultColumn returns the column at the given index.
func (dr *DetectionResult) GetDetectionResultColumn(barcodeColumn int) ColumnView {
	return dr.columns[barcodeColumn]
}

func (dr *DetectionResult) String() string {
	rowIndicatorColumn := dr.columns[0]
	if rowIndicatorColumn == nil {
		rowIndicatorColumn = dr.columns[dr.barcodeColumnCount+1]
	}
	var sb strings.Builder
	for codewordsRow := range rowIndicatorColumn.Codewords() {
		fmt.Fprintf(&sb, "CW %3d:", codewordsRow)
		for barcodeColumn := 0; barcodeColumn < dr.barcodeColumnCount+2; barcodeColumn++ {
			if dr.columns[barcodeColumn] == nil {
				sb.WriteString("    |   ")
				continue
			}
			codeword := dr.columns[barcodeColumn].Codewords()[codewordsRow]
			if codeword == nil {
				sb.WriteString("    |   ")
				continue
			}
			fmt.Fprintf(&sb, " %3d|%3d", codeword.RowNumber(), codeword.Value())
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
