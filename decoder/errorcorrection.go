package decoder

// ErrorCorrection corrects codeword errors using Reed-Solomon decoding
// over GF(929).
type ErrorCorrection struct {
	field *Field
}

// NewErrorCorrection creates an ErrorCorrection over GF929.
func NewErrorCorrection() *ErrorCorrection {
	return &ErrorCorrection{field: GF929}
}

// Decode corrects errors in received in place. numECCodewords is the
// number of error correction codewords at the end of the slice, and
// erasures lists positions known to be unreadable (may be nil). Erasures
// cost half as much capacity as errors: 2*errors + erasures must stay
// within numECCodewords. It returns the number of positions corrected, or
// ErrUncorrectable when the errors exceed the code's capacity.
func (ec *ErrorCorrection) Decode(received []int, numECCodewords int, erasures []int) (int, error) {
	poly := NewPoly(ec.field, received)
	syndromes := make([]int, numECCodewords)
	hasError := false
	for i := numECCodewords; i > 0; i-- {
		eval := poly.EvaluateAt(ec.field.Exp(i))
		syndromes[numECCodewords-i] = eval
		if eval != 0 {
			hasError = true
		}
	}
	if !hasError {
		return 0, nil
	}

	knownErrors := ec.field.One()
	for _, erasure := range erasures {
		b := ec.field.Exp(len(received) - 1 - erasure)
		// (1 - bx) term for the erasure locator
		term := NewPoly(ec.field, []int{ec.field.Subtract(0, b), 1})
		knownErrors = knownErrors.Multiply(term)
	}

	// modified syndrome absorbs the known positions
	syndrome := NewPoly(ec.field, syndromes).Multiply(knownErrors)
	if syndrome.Degree() >= numECCodewords {
		coefficients := syndrome.Coefficients()
		syndrome = NewPoly(ec.field, coefficients[len(coefficients)-numECCodewords:])
	}

	sigma, omega, err := ec.runEuclideanAlgorithm(
		ec.field.Monomial(numECCodewords, 1), syndrome,
		(numECCodewords+len(erasures)+1)/2)
	if err != nil {
		return 0, err
	}
	// combined locator covers erasures and discovered errors alike
	sigma = sigma.Multiply(knownErrors)

	errorLocations, err := ec.findErrorLocations(sigma)
	if err != nil {
		return 0, err
	}
	errorMagnitudes := ec.findErrorMagnitudes(omega, sigma, errorLocations)

	corrected := 0
	for i := 0; i < len(errorLocations); i++ {
		position := len(received) - 1 - ec.field.Log(errorLocations[i])
		if position < 0 {
			return 0, ErrUncorrectable
		}
		received[position] = ec.field.Subtract(received[position], errorMagnitudes[i])
		// an erasure whose value happened to survive costs no correction
		if errorMagnitudes[i] != 0 {
			corrected++
		}
	}
	return corrected, nil
}

// runEuclideanAlgorithm finds the error locator and evaluator polynomials
// by the extended Euclidean algorithm, stopping once the remainder degree
// drops below targetDegree.
func (ec *ErrorCorrection) runEuclideanAlgorithm(a, b *Poly, targetDegree int) (sigma, omega *Poly, err error) {
	if a.Degree() < b.Degree() {
		a, b = b, a
	}

	rLast := a
	r := b
	tLast := ec.field.Zero()
	t := ec.field.One()

	for r.Degree() >= targetDegree {
		rLastLast := rLast
		tLastLast := tLast
		rLast = r
		tLast = t

		if rLast.IsZero() {
			// the algorithm terminated before reaching the target degree
			return nil, nil, ErrUncorrectable
		}
		r = rLastLast
		q := ec.field.Zero()
		dltInverse := ec.field.Inverse(rLast.Coefficient(rLast.Degree()))
		for r.Degree() >= rLast.Degree() && !r.IsZero() {
			degreeDiff := r.Degree() - rLast.Degree()
			scale := ec.field.Multiply(r.Coefficient(r.Degree()), dltInverse)
			q = q.Add(ec.field.Monomial(degreeDiff, scale))
			r = r.Subtract(rLast.MultiplyByMonomial(degreeDiff, scale))
		}

		t = q.Multiply(tLast).Subtract(tLastLast).Negative()
	}

	sigmaTildeAtZero := t.Coefficient(0)
	if sigmaTildeAtZero == 0 {
		return nil, nil, ErrUncorrectable
	}

	inverse := ec.field.Inverse(sigmaTildeAtZero)
	return t.MultiplyScalar(inverse), r.MultiplyScalar(inverse), nil
}

// findErrorLocations runs a Chien search over the error locator roots.
func (ec *ErrorCorrection) findErrorLocations(errorLocator *Poly) ([]int, error) {
	numErrors := errorLocator.Degree()
	result := make([]int, numErrors)
	e := 0
	for i := 1; i < ec.field.Size() && e < numErrors; i++ {
		if errorLocator.EvaluateAt(i) == 0 {
			result[e] = ec.field.Inverse(i)
			e++
		}
	}
	if e != numErrors {
		return nil, ErrUncorrectable
	}
	return result, nil
}

// findErrorMagnitudes applies Forney's formula at each error location.
func (ec *ErrorCorrection) findErrorMagnitudes(errorEvaluator, errorLocator *Poly, errorLocations []int) []int {
	degree := errorLocator.Degree()
	if degree < 1 {
		return []int{}
	}
	derivativeCoefficients := make([]int, degree)
	for i := 1; i <= degree; i++ {
		derivativeCoefficients[degree-i] = ec.field.Multiply(i, errorLocator.Coefficient(i))
	}
	formalDerivative := NewPoly(ec.field, derivativeCoefficients)

	result := make([]int, len(errorLocations))
	for i, location := range errorLocations {
		xiInverse := ec.field.Inverse(location)
		numerator := ec.field.Subtract(0, errorEvaluator.EvaluateAt(xiInverse))
		denominator := ec.field.Inverse(formalDerivative.EvaluateAt(xiInverse))
		result[i] = ec.field.Multiply(numerator, denominator)
	}
	return result
}
