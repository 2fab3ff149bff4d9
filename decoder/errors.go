package decoder

import "errors"

var (
	// ErrNotFound is returned when no symbol can be resolved at the
	// detected location.
	ErrNotFound = errors.New("symbol not found")

	// ErrStructuralMismatch is returned when the resolved row/column
	// geometry cannot hold the codewords actually detected.
	ErrStructuralMismatch = errors.New("row indicators disagree with symbol structure")

	// ErrUncorrectable is returned when errors and erasures exceed the
	// error correction capacity of the symbol.
	ErrUncorrectable = errors.New("too many errors to correct")

	// ErrInvalidMode is returned when the codeword stream contains an
	// unknown or misplaced compaction mode codeword.
	ErrInvalidMode = errors.New("invalid compaction mode sequence")
)
