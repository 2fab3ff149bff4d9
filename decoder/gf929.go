package decoder

// Field is the prime field GF(929) used for symbol error correction,
// with lookup tables over the powers of a generator element.
type Field struct {
	expTable []int
	logTable []int
	zero     *Poly
	one      *Poly
	modulus  int
}

// GF929 is the field used by the symbology: modulus 929, generator 3.
// Built as a var so other package-level vars can depend on it through
// Go's initialization ordering.
var GF929 = NewField(929, 3)

// NewField builds a Field with the given modulus and generator, including
// its exponential and logarithm tables.
func NewField(modulus, generator int) *Field {
	f := &Field{
		modulus:  modulus,
		expTable: make([]int, modulus),
		logTable: make([]int, modulus),
	}

	x := 1
	for i := 0; i < modulus; i++ {
		f.expTable[i] = x
		x = (x * generator) % modulus
	}
	for i := 0; i < modulus-1; i++ {
		f.logTable[f.expTable[i]] = i
	}
	// logTable[0] stays 0 and must never be consulted

	f.zero = NewPoly(f, []int{0})
	f.one = NewPoly(f, []int{1})
	return f
}

// Zero returns the zero polynomial.
func (f *Field) Zero() *Poly { return f.zero }

// One returns the constant polynomial 1.
func (f *Field) One() *Poly { return f.one }

// Monomial returns coefficient * x^degree.
func (f *Field) Monomial(degree, coefficient int) *Poly {
	if degree < 0 {
		panic("decoder: negative degree")
	}
	if coefficient == 0 {
		return f.zero
	}
	coefficients := make([]int, degree+1)
	coefficients[0] = coefficient
	return NewPoly(f, coefficients)
}

// Add returns (a + b) mod the field modulus.
func (f *Field) Add(a, b int) int {
	return (a + b) % f.modulus
}

// Subtract returns (a - b) mod the field modulus.
func (f *Field) Subtract(a, b int) int {
	return (f.modulus + a - b) % f.modulus
}

// Exp returns generator^a.
func (f *Field) Exp(a int) int {
	return f.expTable[a]
}

// Log returns the discrete logarithm of a. Panics on 0.
func (f *Field) Log(a int) int {
	if a == 0 {
		panic("decoder: log(0)")
	}
	return f.logTable[a]
}

// Inverse returns the multiplicative inverse of a. Panics on 0.
func (f *Field) Inverse(a int) int {
	if a == 0 {
		panic("decoder: inverse(0)")
	}
	return f.expTable[f.modulus-f.logTable[a]-1]
}

// Multiply returns a * b in the field.
func (f *Field) Multiply(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	return f.expTable[(f.logTable[a]+f.logTable[b])%(f.modulus-1)]
}

// Size returns the field modulus.
func (f *Field) Size() int {
	return f.modulus
}
