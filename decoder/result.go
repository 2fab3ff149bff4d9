package decoder

import "github.com/barcoded/pdf417/macro"

// Result is the decoded payload of one symbol.
type Result struct {
	// Text is the payload decoded to a string, with ECI character set
	// conversion applied when the symbol carried one.
	Text string
	// Bytes is the raw payload before character set conversion.
	Bytes []byte
	// ECLevel is the symbol's error correction level, 0 through 8.
	ECLevel int
	// ErrorsCorrected is the number of codewords repaired by error
	// correction, and Erasures the number of unreadable positions.
	ErrorsCorrected int
	Erasures        int
	// Macro holds the control block of a multi-segment file, or nil.
	Macro *macro.Info
}
