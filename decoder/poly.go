package decoder

import "fmt"

// Poly is a polynomial with coefficients in a Field, stored highest
// degree first.
type Poly struct {
	field        *Field
	coefficients []int
}

// NewPoly creates a polynomial over the field. Leading zero coefficients
// are stripped so that Degree is accurate.
func NewPoly(field *Field, coefficients []int) *Poly {
	if len(coefficients) == 0 {
		panic("decoder: empty coefficients")
	}
	n := len(coefficients)
	if n > 1 && coefficients[0] == 0 {
		firstNonZero := 1
		for firstNonZero < n && coefficients[firstNonZero] == 0 {
			firstNonZero++
		}
		if firstNonZero == n {
			coefficients = []int{0}
		} else {
			c := make([]int, n-firstNonZero)
			copy(c, coefficients[firstNonZero:])
			coefficients = c
		}
	}
	return &Poly{field: field, coefficients: coefficients}
}

// Coefficients returns the coefficient slice, highest degree first.
func (p *Poly) Coefficients() []int {
	return p.coefficients
}

// Degree returns the degree of the polynomial.
func (p *Poly) Degree() int {
	return len(p.coefficients) - 1
}

// IsZero reports whether this is the zero polynomial.
func (p *Poly) IsZero() bool {
	return p.coefficients[0] == 0
}

// Coefficient returns the coefficient of the x^degree term.
func (p *Poly) Coefficient(degree int) int {
	return p.coefficients[len(p.coefficients)-1-degree]
}

// EvaluateAt evaluates the polynomial at a by Horner's method.
func (p *Poly) EvaluateAt(a int) int {
	if a == 0 {
		return p.Coefficient(0)
	}
	if a == 1 {
		result := 0
		for _, c := range p.coefficients {
			result = p.field.Add(result, c)
		}
		return result
	}
	result := p.coefficients[0]
	for i := 1; i < len(p.coefficients); i++ {
		result = p.field.Add(p.field.Multiply(a, result), p.coefficients[i])
	}
	return result
}

// Add returns p + other.
func (p *Poly) Add(other *Poly) *Poly {
	if p.field != other.field {
		panic("decoder: polynomials from different fields")
	}
	if p.IsZero() {
		return other
	}
	if other.IsZero() {
		return p
	}

	smaller := p.coefficients
	larger := other.coefficients
	if len(smaller) > len(larger) {
		smaller, larger = larger, smaller
	}
	sum := make([]int, len(larger))
	lengthDiff := len(larger) - len(smaller)
	copy(sum, larger[:lengthDiff])
	for i := lengthDiff; i < len(larger); i++ {
		sum[i] = p.field.Add(smaller[i-lengthDiff], larger[i])
	}
	return NewPoly(p.field, sum)
}

// Subtract returns p - other.
func (p *Poly) Subtract(other *Poly) *Poly {
	if p.field != other.field {
		panic("decoder: polynomials from different fields")
	}
	if other.IsZero() {
		return p
	}
	return p.Add(other.Negative())
}

// Multiply returns p * other.
func (p *Poly) Multiply(other *Poly) *Poly {
	if p.field != other.field {
		panic("decoder: polynomials from different fields")
	}
	if p.IsZero() || other.IsZero() {
		return p.field.Zero()
	}
	a := p.coefficients
	b := other.coefficients
	product := make([]int, len(a)+len(b)-1)
	for i, ac := range a {
		for j, bc := range b {
			product[i+j] = p.field.Add(product[i+j], p.field.Multiply(ac, bc))
		}
	}
	return NewPoly(p.field, product)
}

// Negative returns -p.
func (p *Poly) Negative() *Poly {
	negated := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		negated[i] = p.field.Subtract(0, c)
	}
	return NewPoly(p.field, negated)
}

// MultiplyScalar returns p scaled by a field element.
func (p *Poly) MultiplyScalar(scalar int) *Poly {
	if scalar == 0 {
		return p.field.Zero()
	}
	if scalar == 1 {
		return p
	}
	product := make([]int, len(p.coefficients))
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, scalar)
	}
	return NewPoly(p.field, product)
}

// MultiplyByMonomial returns p * coefficient * x^degree.
func (p *Poly) MultiplyByMonomial(degree, coefficient int) *Poly {
	if degree < 0 {
		panic("decoder: negative degree")
	}
	if coefficient == 0 {
		return p.field.Zero()
	}
	product := make([]int, len(p.coefficients)+degree)
	for i, c := range p.coefficients {
		product[i] = p.field.Multiply(c, coefficient)
	}
	return NewPoly(p.field, product)
}

func (p *Poly) String() string {
	result := ""
	for degree := p.Degree(); degree >= 0; degree-- {
		c := p.Coefficient(degree)
		if c == 0 {
			continue
		}
		if len(result) > 0 {
			result += " + "
		}
		if degree == 0 || c != 1 {
			result += fmt.Sprintf("%d", c)
		}
		switch {
		case degree == 1:
			result += "x"
		case degree > 1:
			result += fmt.Sprintf("x^%d", degree)
		}
	}
	if result == "" {
		return "0"
	}
	return result
}
