package decoder

import (
	"bytes"
	"errors"
	"testing"
)

func TestBitStreamTextAlphaAndMixed(t *testing.T) {
	// "AB12": A,B in alpha, then a mixed latch for the digits, padded with
	// a trailing punctuation shift.
	codewords := []int{4, 1, 841, 89}
	result, err := decodeBitStream(codewords, 1)
	if err != nil {
		t.Fatalf("decodeBitStream: %v", err)
	}
	if result.Text != "AB12" {
		t.Errorf("Text = %q, want \"AB12\"", result.Text)
	}
	if result.ECLevel != 1 {
		t.Errorf("ECLevel = %d, want 1", result.ECLevel)
	}
	if result.Macro != nil {
		t.Error("Macro set on a plain symbol")
	}
}

func TestBitStreamTextLowerAndShift(t *testing.T) {
	// alpha H, lower latch, "i", punct shift, "!" -> "Hi!"
	codewords := []int{4, 7*30 + tcLL, 8*30 + tcPS, 10*30 + tcPS}
	result, err := decodeBitStream(codewords, 0)
	if err != nil {
		t.Fatalf("decodeBitStream: %v", err)
	}
	if result.Text != "Hi!" {
		t.Errorf("Text = %q, want \"Hi!\"", result.Text)
	}
}

func TestBitStreamNumeric(t *testing.T) {
	// 902 latch, "123456" as 1123456 base 900
	codewords := []int{5, 902, 1, 348, 256}
	result, err := decodeBitStream(codewords, 2)
	if err != nil {
		t.Fatalf("decodeBitStream: %v", err)
	}
	if result.Text != "123456" {
		t.Errorf("Text = %q, want \"123456\"", result.Text)
	}
}

func TestBitStreamByteShort(t *testing.T) {
	// 901 latch with fewer than five codewords: one byte per codeword
	codewords := []int{4, 901, 65, 66}
	result, err := decodeBitStream(codewords, 0)
	if err != nil {
		t.Fatalf("decodeBitStream: %v", err)
	}
	if !bytes.Equal(result.Bytes, []byte("AB")) {
		t.Errorf("Bytes = %v, want \"AB\"", result.Bytes)
	}
	if result.Text != "AB" {
		t.Errorf("Text = %q, want \"AB\"", result.Text)
	}
}

func TestBitStreamByteSixPack(t *testing.T) {
	// 924 latch: five codewords carry exactly six bytes base 900
	codewords := []int{7, 924, 163, 238, 432, 766, 244}
	result, err := decodeBitStream(codewords, 0)
	if err != nil {
		t.Fatalf("decodeBitStream: %v", err)
	}
	if !bytes.Equal(result.Bytes, []byte("alcool")) {
		t.Errorf("Bytes = %q, want \"alcool\"", result.Bytes)
	}
}

func TestBitStreamByteShiftInText(t *testing.T) {
	// "A" with a trailing punct shift, a byte shift carrying 0x40, then "B"
	codewords := []int{6, 0*30 + tcPS, 913, 64, 900, 1*30 + tcPS}
	result, err := decodeBitStream(codewords, 0)
	if err != nil {
		t.Fatalf("decodeBitStream: %v", err)
	}
	if result.Text != "A@B" {
		t.Errorf("Text = %q, want \"A@B\"", result.Text)
	}
}

func TestBitStreamECICharset(t *testing.T) {
	// ECI 3 selects Latin-1, then byte compaction with 0xE9
	codewords := []int{5, 927, 3, 901, 233}
	result, err := decodeBitStream(codewords, 0)
	if err != nil {
		t.Fatalf("decodeBitStream: %v", err)
	}
	if result.Text != "é" {
		t.Errorf("Text = %q, want \"é\"", result.Text)
	}
	if !bytes.Equal(result.Bytes, []byte{0xE9}) {
		t.Errorf("Bytes = %v, want [0xE9]", result.Bytes)
	}
}

func TestBitStreamMacroBlock(t *testing.T) {
	// "AB", then a macro control block: segment index 3, file ID 123/045,
	// optional segment count 2, terminator.
	codewords := []int{11, 1, 928, 111, 103, 123, 45, 923, 1, 12, 922}
	result, err := decodeBitStream(codewords, 0)
	if err != nil {
		t.Fatalf("decodeBitStream: %v", err)
	}
	if result.Text != "AB" {
		t.Errorf("Text = %q, want \"AB\"", result.Text)
	}
	m := result.Macro
	if m == nil {
		t.Fatal("Macro is nil")
	}
	if m.SegmentIndex != 3 {
		t.Errorf("SegmentIndex = %d, want 3", m.SegmentIndex)
	}
	if m.FileID != "123045" {
		t.Errorf("FileID = %q, want \"123045\"", m.FileID)
	}
	if m.SegmentCount != 2 {
		t.Errorf("SegmentCount = %d, want 2", m.SegmentCount)
	}
	if !m.LastSegment {
		t.Error("LastSegment not set")
	}
}

func TestBitStreamMacroWithoutCount(t *testing.T) {
	codewords := []int{6, 1, 928, 111, 103, 500}
	result, err := decodeBitStream(codewords, 0)
	if err != nil {
		t.Fatalf("decodeBitStream: %v", err)
	}
	m := result.Macro
	if m == nil {
		t.Fatal("Macro is nil")
	}
	if m.SegmentCount != -1 {
		t.Errorf("SegmentCount = %d, want unknown (-1)", m.SegmentCount)
	}
	if m.LastSegment {
		t.Error("LastSegment set without terminator")
	}
	if m.FileID != "500" {
		t.Errorf("FileID = %q, want \"500\"", m.FileID)
	}
}

func TestBitStreamTerminatorOutsideMacro(t *testing.T) {
	codewords := []int{3, 1, 922}
	result, err := decodeBitStream(codewords, 0)
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("err = %v, want ErrInvalidMode", err)
	}
	if result == nil || result.Text != "AB" {
		t.Errorf("partial result = %+v, want Text \"AB\"", result)
	}
}

func TestBitStreamTruncatedByteShift(t *testing.T) {
	// the byte shift is the last data codeword, its operand would sit in
	// the error correction region
	codewords := []int{4, 901, 65, 913}
	result, err := decodeBitStream(codewords, 0)
	if !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("err = %v, want ErrInvalidMode", err)
	}
	if result == nil || result.Text != "A" {
		t.Errorf("partial result = %+v, want Text \"A\"", result)
	}
}

func TestBitStreamTruncatedCharsetDesignator(t *testing.T) {
	for _, codewords := range [][]int{
		{3, 902, 927},
		{4, 901, 65, 927},
	} {
		if _, err := decodeBitStream(codewords, 0); !errors.Is(err, ErrInvalidMode) {
			t.Fatalf("codewords %v: err = %v, want ErrInvalidMode", codewords, err)
		}
	}
}

func TestBitStreamEmptyPayload(t *testing.T) {
	codewords := []int{1}
	if _, err := decodeBitStream(codewords, 0); !errors.Is(err, ErrStructuralMismatch) {
		t.Fatalf("err = %v, want ErrStructuralMismatch", err)
	}
}
