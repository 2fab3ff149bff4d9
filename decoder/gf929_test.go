package decoder

import "testing"

func TestFieldExpLogRoundTrip(t *testing.T) {
	for a := 1; a < GF929.Size(); a++ {
		if got := GF929.Exp(GF929.Log(a)); got != a {
			t.Fatalf("Exp(Log(%d)) = %d", a, got)
		}
	}
}

func TestFieldInverse(t *testing.T) {
	for _, a := range []int{1, 2, 3, 5, 100, 533, 928} {
		inv := GF929.Inverse(a)
		if got := GF929.Multiply(a, inv); got != 1 {
			t.Errorf("%d * %d = %d, want 1", a, inv, got)
		}
	}
}

func TestFieldAddSubtract(t *testing.T) {
	if got := GF929.Add(928, 1); got != 0 {
		t.Errorf("Add(928, 1) = %d, want 0", got)
	}
	if got := GF929.Subtract(0, 1); got != 928 {
		t.Errorf("Subtract(0, 1) = %d, want 928", got)
	}
	if got := GF929.Subtract(GF929.Add(17, 400), 400); got != 17 {
		t.Errorf("(17 + 400) - 400 = %d", got)
	}
}

func TestFieldMultiplyCommutes(t *testing.T) {
	pairs := [][2]int{{0, 5}, {1, 777}, {300, 600}, {928, 928}}
	for _, p := range pairs {
		ab := GF929.Multiply(p[0], p[1])
		ba := GF929.Multiply(p[1], p[0])
		if ab != ba {
			t.Errorf("Multiply(%d, %d) = %d but reversed = %d", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab >= 929 {
			t.Errorf("Multiply(%d, %d) = %d out of field", p[0], p[1], ab)
		}
	}
}

func TestPolyEvaluateAt(t *testing.T) {
	// 2x^2 + 3x + 5 at x = 4: 32 + 12 + 5 = 49
	p := NewPoly(GF929, []int{2, 3, 5})
	if got := p.EvaluateAt(4); got != 49 {
		t.Errorf("EvaluateAt(4) = %d, want 49", got)
	}
	if got := p.EvaluateAt(0); got != 5 {
		t.Errorf("EvaluateAt(0) = %d, want 5", got)
	}
}

func TestPolyAddMultiplyDegree(t *testing.T) {
	a := NewPoly(GF929, []int{1, 0, 2})    // x^2 + 2
	b := NewPoly(GF929, []int{928, 0, 0})  // -x^2
	sum := a.Add(b)
	if sum.Degree() != 0 {
		t.Errorf("degree after cancellation = %d, want 0", sum.Degree())
	}
	if got := sum.Coefficient(0); got != 2 {
		t.Errorf("constant term = %d, want 2", got)
	}

	prod := a.Multiply(NewPoly(GF929, []int{3, 1})) // (x^2+2)(3x+1)
	if prod.Degree() != 3 {
		t.Errorf("product degree = %d, want 3", prod.Degree())
	}
	// evaluate both sides at a sample point
	x := 7
	want := GF929.Multiply(a.EvaluateAt(x), GF929.Add(GF929.Multiply(3, x), 1))
	if got := prod.EvaluateAt(x); got != want {
		t.Errorf("product at %d = %d, want %d", x, got, want)
	}
}

func TestPolyStripsLeadingZeros(t *testing.T) {
	p := NewPoly(GF929, []int{0, 0, 4, 1})
	if p.Degree() != 1 {
		t.Errorf("degree = %d, want 1", p.Degree())
	}
	if !NewPoly(GF929, []int{0, 0}).IsZero() {
		t.Error("all-zero coefficients should collapse to the zero polynomial")
	}
}
