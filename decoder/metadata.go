package decoder

// BarcodeMetadata is the symbol geometry and error correction level
// recovered from the row indicator columns.
type BarcodeMetadata struct {
	columnCount          int
	errorCorrectionLevel int
	rowCountUpperPart    int
	rowCountLowerPart    int
	rowCount             int
}

// NewBarcodeMetadata creates a BarcodeMetadata from the two row count
// parts encoded in the indicators.
func NewBarcodeMetadata(columnCount, rowCountUpperPart, rowCountLowerPart, errorCorrectionLevel int) *BarcodeMetadata {
	return &BarcodeMetadata{
		columnCount:          columnCount,
		errorCorrectionLevel: errorCorrectionLevel,
		rowCountUpperPart:    rowCountUpperPart,
		rowCountLowerPart:    rowCountLowerPart,
		rowCount:             rowCountUpperPart + rowCountLowerPart,
	}
}

// ColumnCount returns the number of data columns.
func (m *BarcodeMetadata) ColumnCount() int { return m.columnCount }

// ErrorCorrectionLevel returns the error correction level, 0 through 8.
func (m *BarcodeMetadata) ErrorCorrectionLevel() int { return m.errorCorrectionLevel }

// RowCount returns the total number of rows.
func (m *BarcodeMetadata) RowCount() int { return m.rowCount }

// RowCountUpperPart returns the upper component of the row count.
func (m *BarcodeMetadata) RowCountUpperPart() int { return m.rowCountUpperPart }

// RowCountLowerPart returns the lower component of the row count.
func (m *BarcodeMetadata) RowCountLowerPart() int { return m.rowCountLowerPart }
