package pdf417

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barcoded/pdf417/bitutil"
	"github.com/barcoded/pdf417/internal/encoder"
	"github.com/barcoded/pdf417/macro"
)

func renderSymbol(t *testing.T, payload string, cfg encoder.Config) *bitutil.BitMatrix {
	t.Helper()
	matrix, err := encoder.Symbol(payload, cfg)
	require.NoError(t, err)
	return matrix
}

func TestRoundTripWorkedExample(t *testing.T) {
	matrix := renderSymbol(t, "AB12", encoder.Config{Columns: 2, ECLevel: 1})

	d := NewDecoder()
	n, err := d.DecodeBitmap(matrix)
	require.NoError(t, err)
	require.Equal(t, 1, n, "failures: %v", d.Failures())

	assert.Equal(t, "AB12", d.Text(0))
	assert.Equal(t, 1, d.Segment(0).ECLevel)
	assert.Nil(t, d.Segment(0).Macro)
}

func TestRoundTripPayloads(t *testing.T) {
	payloads := []string{
		"HELLO WORLD",
		"Hello, world!",
		"mixed Case with 123 digits and $ymbols",
		"a1 b",
		"12345678901234567890123456789",
		"\x01\x02\xfe\xff binary\x00tail",
	}
	for _, payload := range payloads {
		payload := payload
		t.Run(fmt.Sprintf("%q", payload), func(t *testing.T) {
			matrix := renderSymbol(t, payload, encoder.Config{Columns: 4, ECLevel: 2})

			d := NewDecoder()
			n, err := d.DecodeBitmap(matrix)
			require.NoError(t, err)
			require.Equal(t, 1, n, "failures: %v", d.Failures())
			assert.Equal(t, []byte(payload), d.Bytes(0))
		})
	}
}

func TestRoundTripEveryECLevel(t *testing.T) {
	for level := 0; level <= 4; level++ {
		matrix := renderSymbol(t, "LEVEL CHECK", encoder.Config{Columns: 3, ECLevel: level})

		d := NewDecoder()
		n, err := d.DecodeBitmap(matrix)
		require.NoError(t, err)
		require.Equal(t, 1, n, "level %d failures: %v", level, d.Failures())
		assert.Equal(t, level, d.Segment(0).ECLevel)
	}
}

func TestDecodeRepeatable(t *testing.T) {
	matrix := renderSymbol(t, "IDEMPOTENT", encoder.Config{Columns: 3, ECLevel: 2})

	d := NewDecoder()
	for i := 0; i < 3; i++ {
		n, err := d.DecodeBitmap(matrix)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		assert.Equal(t, "IDEMPOTENT", d.Text(0))
	}
}

func TestRoundTripWithDamage(t *testing.T) {
	cfg := encoder.Config{Columns: 3, ECLevel: 4}
	stream, rows, err := encoder.EncodeCodewords("DAMAGE TOLERANCE", cfg)
	require.NoError(t, err)

	// corrupt data codewords within the correction capacity
	numEC := 1 << uint(cfg.ECLevel+1)
	corrupted := make([]int, len(stream))
	copy(corrupted, stream)
	for i := 1; i <= numEC/2-1; i++ {
		corrupted[i] = (corrupted[i] + 400) % 929
	}

	matrix := encoder.Render(corrupted, cfg.Columns, rows, cfg.ECLevel, cfg)
	d := NewDecoder()
	n, err := d.DecodeBitmap(matrix)
	require.NoError(t, err)
	require.Equal(t, 1, n, "failures: %v", d.Failures())
	assert.Equal(t, "DAMAGE TOLERANCE", d.Text(0))
	assert.Positive(t, d.Segment(0).ErrorsCorrected)
}

func TestUncorrectableDamage(t *testing.T) {
	cfg := encoder.Config{Columns: 3, ECLevel: 1}
	stream, rows, err := encoder.EncodeCodewords("TOO MUCH", cfg)
	require.NoError(t, err)

	// level 1 has four EC codewords; wreck far more data than that
	corrupted := make([]int, len(stream))
	copy(corrupted, stream)
	for i := 1; i < len(corrupted)-4; i++ {
		corrupted[i] = (corrupted[i] + 123 + i) % 929
	}

	matrix := encoder.Render(corrupted, cfg.Columns, rows, cfg.ECLevel, cfg)
	d := NewDecoder()
	n, err := d.DecodeBitmap(matrix)
	require.NoError(t, err)
	if n != 0 {
		// a decode that slipped through must not claim the original text
		assert.NotEqual(t, "TOO MUCH", d.Text(0))
	} else {
		assert.NotEmpty(t, d.Failures())
	}
}

func TestDecodeBlankImage(t *testing.T) {
	d := NewDecoder()
	n, err := d.DecodeBitmap(bitutil.NewBitMatrix(200, 100))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, d.Failures())
}

func TestDecodeFromImage(t *testing.T) {
	matrix := renderSymbol(t, "FROM PIXELS", encoder.Config{Columns: 3, ECLevel: 2})

	img := image.NewGray(image.Rect(0, 0, matrix.Width(), matrix.Height()))
	for y := 0; y < matrix.Height(); y++ {
		for x := 0; x < matrix.Width(); x++ {
			if matrix.Get(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0x10})
			} else {
				img.SetGray(x, y, color.Gray{Y: 0xf0})
			}
		}
	}

	d := NewDecoder()
	n, err := d.Decode(img)
	require.NoError(t, err)
	require.Equal(t, 1, n, "failures: %v", d.Failures())
	assert.Equal(t, "FROM PIXELS", d.Text(0))
}

func TestMacroRoundTrip(t *testing.T) {
	parts := []string{"FIRST PART ", "SECOND PART ", "THIRD PART"}
	d := NewDecoder()

	// feed the segments out of order
	for _, idx := range []int{2, 0, 1} {
		matrix := renderSymbol(t, parts[idx], encoder.Config{
			Columns: 4,
			ECLevel: 2,
			Macro: &macro.Info{
				SegmentIndex: idx,
				FileID:       "007123",
				SegmentCount: len(parts),
				LastSegment:  idx == len(parts)-1,
			},
		})
		n, err := d.DecodeBitmap(matrix)
		require.NoError(t, err)
		require.Equal(t, 1, n, "segment %d failures: %v", idx, d.Failures())

		seg := d.Segment(0)
		require.NotNil(t, seg.Macro)
		assert.Equal(t, idx, seg.Macro.SegmentIndex)
		assert.Equal(t, "007123", seg.Macro.FileID)

		_, _, err = d.IngestMacro(0)
		require.NoError(t, err)
	}

	require.True(t, d.MacroComplete("007123"))
	data, err := d.AssembleMacro("007123")
	require.NoError(t, err)
	assert.Equal(t, "FIRST PART SECOND PART THIRD PART", string(data))
}

func TestMacroIncompleteSet(t *testing.T) {
	d := NewDecoder()
	matrix := renderSymbol(t, "LONELY", encoder.Config{
		Columns: 3,
		ECLevel: 2,
		Macro:   &macro.Info{SegmentIndex: 0, FileID: "001", SegmentCount: 2},
	})
	n, err := d.DecodeBitmap(matrix)
	require.NoError(t, err)
	require.Equal(t, 1, n, "failures: %v", d.Failures())

	fileID, complete, err := d.IngestMacro(0)
	require.NoError(t, err)
	assert.False(t, complete)
	_, err = d.AssembleMacro(fileID)
	assert.ErrorIs(t, err, ErrIncompleteSet)
}
