package pdf417

import (
	"github.com/barcoded/pdf417/decoder"
	"github.com/barcoded/pdf417/macro"
)

// Typed failures surfaced by this module, re-exported from the packages that
// raise them so callers can match with errors.Is against either name.
var (
	// ErrNotFound reports that no symbol is present at the expected
	// location. Decode itself reports "nothing found" as a zero count, not
	// as an error.
	ErrNotFound = decoder.ErrNotFound

	// ErrStructuralMismatch reports row indicator geometry that cannot hold
	// the codewords actually detected.
	ErrStructuralMismatch = decoder.ErrStructuralMismatch

	// ErrUncorrectable reports more errors and erasures than the symbol's
	// error correction level can repair.
	ErrUncorrectable = decoder.ErrUncorrectable

	// ErrInvalidMode reports an unknown or misplaced compaction mode
	// codeword. Output decoded before the offending codeword is retained.
	ErrInvalidMode = decoder.ErrInvalidMode

	// ErrIncompleteSet reports macro assembly requested before every
	// segment of the file was ingested.
	ErrIncompleteSet = macro.ErrIncompleteSet
)
