package encoder

import (
	"testing"

	"github.com/barcoded/pdf417/decoder"
	"github.com/barcoded/pdf417/macro"
)

func TestEncodeHighLevelTextWithDigits(t *testing.T) {
	got, err := EncodeHighLevel("AB12")
	if err != nil {
		t.Fatalf("EncodeHighLevel: %v", err)
	}
	want := []int{1, 841, 89}
	if len(got) != len(want) {
		t.Fatalf("codewords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("codewords = %v, want %v", got, want)
		}
	}
}

func TestEncodeHighLevelMixedSpace(t *testing.T) {
	// a space while latched in Mixed keeps its sub-mode value 26
	got, err := EncodeHighLevel("1 2")
	if err != nil {
		t.Fatalf("EncodeHighLevel: %v", err)
	}
	want := []int{841, 782}
	if len(got) != len(want) {
		t.Fatalf("codewords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("codewords = %v, want %v", got, want)
		}
	}
}

func TestEncodeHighLevelLongDigits(t *testing.T) {
	got, err := EncodeHighLevel("12345678901234567")
	if err != nil {
		t.Fatalf("EncodeHighLevel: %v", err)
	}
	if got[0] != latchToNumeric {
		t.Errorf("first codeword = %d, want numeric latch", got[0])
	}
}

func TestEncodeHighLevelBinary(t *testing.T) {
	got, err := EncodeHighLevel("\x00\x01\x02\x03\x04\x05")
	if err != nil {
		t.Fatalf("EncodeHighLevel: %v", err)
	}
	if got[0] != latchToByte {
		t.Errorf("first codeword = %d, want 924 latch for six bytes", got[0])
	}
	if len(got) != 6 {
		t.Errorf("%d codewords for a six-byte pack, want 6", len(got))
	}
}

func TestEncodeCodewordsGeometry(t *testing.T) {
	cfg := Config{Columns: 4, ECLevel: 2}
	stream, rows, err := EncodeCodewords("HELLO WORLD", cfg)
	if err != nil {
		t.Fatalf("EncodeCodewords: %v", err)
	}
	if len(stream) != rows*cfg.Columns {
		t.Fatalf("stream length %d does not fill %d rows of %d", len(stream), rows, cfg.Columns)
	}
	numEC := 1 << uint(cfg.ECLevel+1)
	if stream[0] != len(stream)-numEC {
		t.Errorf("length descriptor = %d, want %d", stream[0], len(stream)-numEC)
	}
}

func TestEncodeCodewordsPassErrorCorrection(t *testing.T) {
	cfg := Config{Columns: 3, ECLevel: 3}
	stream, _, err := EncodeCodewords("error correction check", cfg)
	if err != nil {
		t.Fatalf("EncodeCodewords: %v", err)
	}
	received := make([]int, len(stream))
	copy(received, stream)
	corrected, err := decoder.NewErrorCorrection().Decode(received, 1<<uint(cfg.ECLevel+1), nil)
	if err != nil {
		t.Fatalf("Decode on a clean stream: %v", err)
	}
	if corrected != 0 {
		t.Errorf("corrected = %d on a clean stream", corrected)
	}
}

func TestEncodeMacroBlock(t *testing.T) {
	info := &macro.Info{
		SegmentIndex: 3,
		FileID:       "123045",
		SegmentCount: 2,
		LastSegment:  true,
	}
	got := encodeMacroBlock(info)
	want := []int{928, 111, 103, 123, 45, 923, 1, 12, 922}
	if len(got) != len(want) {
		t.Fatalf("block = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("block = %v, want %v", got, want)
		}
	}
}

func TestRenderDimensions(t *testing.T) {
	cfg := Config{Columns: 2, ECLevel: 1}
	matrix, err := Symbol("DIMENSIONS", cfg)
	if err != nil {
		t.Fatalf("Symbol: %v", err)
	}
	cfg = cfg.withDefaults()
	wantWidth := (17*5+18)*cfg.ModuleWidth + 2*cfg.QuietZone
	if matrix.Width() != wantWidth {
		t.Errorf("width = %d, want %d", matrix.Width(), wantWidth)
	}
	// the first module of every row is a start pattern bar
	if !matrix.Get(cfg.QuietZone, cfg.QuietZone) {
		t.Error("start pattern bar missing at the top left")
	}
	// quiet zone stays white
	if matrix.Get(0, 0) {
		t.Error("quiet zone is not blank")
	}
}
