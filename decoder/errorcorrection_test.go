package decoder

import "testing"

// appendErrorCorrection computes the Reed-Solomon codewords for data and
// returns data with them appended, so the whole slice evaluates to zero at
// the generator's roots.
func appendErrorCorrection(data []int, numEC int) []int {
	g := GF929.One()
	for i := 1; i <= numEC; i++ {
		root := NewPoly(GF929, []int{1, GF929.Subtract(0, GF929.Exp(i))})
		g = g.Multiply(root)
	}

	remainder := NewPoly(GF929, data).MultiplyByMonomial(numEC, 1)
	for !remainder.IsZero() && remainder.Degree() >= g.Degree() {
		degreeDiff := remainder.Degree() - g.Degree()
		scale := GF929.Multiply(remainder.Coefficient(remainder.Degree()),
			GF929.Inverse(g.Coefficient(g.Degree())))
		remainder = remainder.Subtract(g.MultiplyByMonomial(degreeDiff, scale))
	}

	out := make([]int, len(data)+numEC)
	copy(out, data)
	for i := 0; i < numEC; i++ {
		out[len(out)-1-i] = GF929.Subtract(0, remainder.Coefficient(i))
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDecodeCleanStream(t *testing.T) {
	data := []int{6, 817, 121, 364, 62, 900}
	received := appendErrorCorrection(data, 8)
	want := make([]int, len(received))
	copy(want, received)

	ec := NewErrorCorrection()
	corrected, err := ec.Decode(received, 8, nil)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if corrected != 0 {
		t.Errorf("corrected = %d, want 0", corrected)
	}
	if !equalInts(received, want) {
		t.Errorf("clean stream was modified: %v", received)
	}
}

func TestDecodeCorrectsUpToCapacity(t *testing.T) {
	data := []int{8, 213, 478, 2, 780, 415, 30, 899}
	numEC := 8
	original := appendErrorCorrection(data, numEC)

	for errorCount := 1; errorCount <= numEC/2; errorCount++ {
		received := make([]int, len(original))
		copy(received, original)
		for i := 0; i < errorCount; i++ {
			pos := (i * 3) % len(received)
			received[pos] = (received[pos] + 101 + i) % 929
		}

		ec := NewErrorCorrection()
		corrected, err := ec.Decode(received, numEC, nil)
		if err != nil {
			t.Fatalf("errorCount=%d: Decode: %v", errorCount, err)
		}
		if corrected != errorCount {
			t.Errorf("errorCount=%d: corrected = %d", errorCount, corrected)
		}
		if !equalInts(received, original) {
			t.Errorf("errorCount=%d: stream not restored: %v", errorCount, received)
		}
	}
}

func TestDecodeBeyondCapacity(t *testing.T) {
	data := []int{8, 213, 478, 2, 780, 415, 30, 899}
	numEC := 8
	original := appendErrorCorrection(data, numEC)

	received := make([]int, len(original))
	copy(received, original)
	// six errors against a capacity of four
	for i := 0; i < 6; i++ {
		pos := (i * 2) % len(received)
		received[pos] = (received[pos] + 511) % 929
	}

	ec := NewErrorCorrection()
	_, err := ec.Decode(received, numEC, nil)
	if err == nil && equalInts(received, original) {
		// A decode beyond capacity may land on some other codeword, but it
		// can never silently restore the original.
		t.Error("stream with 6 errors decoded back to the original")
	}
}

func TestDecodeErasuresExtendCapacity(t *testing.T) {
	data := []int{8, 45, 600, 313, 7, 902, 1, 311}
	numEC := 8
	original := appendErrorCorrection(data, numEC)

	// five erasures and one error need 2*1+5 = 7 codewords, past the
	// four-error limit of unknown errors alone
	received := make([]int, len(original))
	copy(received, original)
	erasures := []int{0, 3, 5, 8, 14}
	for _, pos := range erasures {
		received[pos] = (received[pos] + 200) % 929
	}
	received[6] = (received[6] + 77) % 929

	ec := NewErrorCorrection()
	corrected, err := ec.Decode(received, numEC, erasures)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if corrected != 6 {
		t.Errorf("corrected = %d, want 6", corrected)
	}
	if !equalInts(received, original) {
		t.Errorf("stream not restored: %v", received)
	}
}

func TestDecodeWithErasures(t *testing.T) {
	data := []int{7, 99, 555, 1, 412, 3, 928}
	numEC := 8
	original := appendErrorCorrection(data, numEC)

	received := make([]int, len(original))
	copy(received, original)
	erasures := []int{2, 5, 9}
	for _, pos := range erasures {
		received[pos] = 0
	}
	// zeroing a position that already held zero is not an error
	changed := 0
	for i := range original {
		if received[i] != original[i] {
			changed++
		}
	}

	ec := NewErrorCorrection()
	corrected, err := ec.Decode(received, numEC, erasures)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if corrected != changed {
		t.Errorf("corrected = %d, want %d", corrected, changed)
	}
	if !equalInts(received, original) {
		t.Errorf("stream not restored: %v", received)
	}
}
