package decoder

import "testing"

func scaleRuns(runs []int, factor int) []int {
	out := make([]int, len(runs))
	for i, r := range runs {
		out[i] = r * factor
	}
	return out
}

func TestDecodedValueExact(t *testing.T) {
	for cluster := 0; cluster <= 6; cluster += 3 {
		for _, value := range []int{0, 29, 641, 928} {
			pattern := SymbolPattern(cluster, value)
			runs := patternRunLengths(pattern, modulesInCodeword)
			if got := DecodedValue(runs); got != pattern {
				t.Errorf("cluster %d value %d: DecodedValue = %#x, want %#x",
					cluster, value, got, pattern)
			}
		}
	}
}

func TestDecodedValueScaled(t *testing.T) {
	pattern := SymbolPattern(0, 120)
	runs := patternRunLengths(pattern, modulesInCodeword)
	for _, factor := range []int{2, 3, 7} {
		if got := DecodedValue(scaleRuns(runs, factor)); got != pattern {
			t.Errorf("factor %d: DecodedValue = %#x, want %#x", factor, got, pattern)
		}
	}
}

func TestDecodedValueDistorted(t *testing.T) {
	// At ten pixels per module a one-pixel run error is well inside the
	// closest-match tolerance.
	pattern := SymbolPattern(3, 512)
	runs := scaleRuns(patternRunLengths(pattern, modulesInCodeword), 10)
	runs[0]++
	runs[5]--
	if got := DecodedValue(runs); got != pattern {
		t.Errorf("DecodedValue = %#x, want %#x", got, pattern)
	}
}

func TestBarcodeValueVoting(t *testing.T) {
	bv := NewBarcodeValue()
	bv.SetValue(3)
	bv.SetValue(7)
	bv.SetValue(7)
	if got := bv.Value(); len(got) != 1 || got[0] != 7 {
		t.Errorf("Value() = %v, want [7]", got)
	}
	if got := bv.Confidence(7); got != 2 {
		t.Errorf("Confidence(7) = %d, want 2", got)
	}
	if got := bv.Confidence(99); got != 0 {
		t.Errorf("Confidence(99) = %d, want 0", got)
	}
}

func TestBarcodeValueTie(t *testing.T) {
	bv := NewBarcodeValue()
	bv.SetValue(1)
	bv.SetValue(2)
	got := bv.Value()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Value() = %v, want [1 2]", got)
	}
}

func TestBarcodeValueEmpty(t *testing.T) {
	if got := NewBarcodeValue().Value(); len(got) != 0 {
		t.Errorf("Value() on empty = %v", got)
	}
}
