package decoder

const (
	numberOfCodewords     = 929
	maxCodewordsInBarcode = 928
	minRowsInBarcode      = 3
	maxRowsInBarcode      = 90
	maxColumnsInBarcode   = 30
	modulesInCodeword     = 17
	modulesInStopPattern  = 18
	barsInModule          = 8
)
