package linearmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PolyOptions configures a univariate polynomial least squares fit
type PolyOptions struct {
	Degree int
}

// Validate runs basic validation on polynomial options
func (o *PolyOptions) Validate() (*PolyOptions, error) {
	if o == nil {
		o = NewDefaultPolyOptions()
	}
	if o.Degree < 0 {
		return nil, fmt.Errorf("degree %d, %w", o.Degree, ErrNegativeDegree)
	}
	return o, nil
}

// NewDefaultPolyOptions returns a quadratic fit
func NewDefaultPolyOptions() *PolyOptions {
	return &PolyOptions{
		Degree: 2,
	}
}

// PolyRegression fits y ~ c0 + c1*z + c2*z^2 + ... with z = (x-shift)/scale using ordinary
// least squares on a column scaled Vandermonde design. shift and scale are the mean and
// standard deviation of the training x.
type PolyRegression struct {
	opt   *PolyOptions
	shift float64
	scale float64
	coef  []float64 // ascending powers of z, coef[0] is the intercept
}

// NewPolyRegression initializes a polynomial model ready for fitting
func NewPolyRegression(opt *PolyOptions) (*PolyRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &PolyRegression{opt: opt}, nil
}

// Fit computes the polynomial coefficients minimizing the squared error between
// the polynomial evaluated at x and y.
func (p *PolyRegression) Fit(x, y []float64) error {
	if p.opt == nil {
		return ErrNoOptions
	}
	if len(x) != len(y) {
		return fmt.Errorf("x has length %d and y has length %d, %w", len(x), len(y), ErrTargetLenMismatch)
	}
	m := len(x)
	d := p.opt.Degree
	if m < d+1 {
		return fmt.Errorf("got %d points for degree %d, %w", m, d, ErrUnderdetermined)
	}

	if d == 0 {
		p.shift, p.scale = 0, 1
		p.coef = []float64{stat.Mean(y, nil)}
		return nil
	}

	shift, std := stat.MeanStdDev(x, nil)
	if std == 0 || math.IsNaN(std) {
		return fmt.Errorf("x has no spread, %w", ErrRankDeficient)
	}
	z := make([]float64, m)
	floats.AddConst(-shift, floats.ScaleTo(z, 1, x))
	floats.Scale(1/std, z)

	design := mat.NewDense(m, d, nil)
	col := make([]float64, m)
	for i := range col {
		col[i] = 1.0
	}
	scale := make([]float64, d)
	for j := 0; j < d; j++ {
		floats.Mul(col, z)
		norm := floats.Norm(col, 2)
		if norm == 0 {
			return fmt.Errorf("power %d column is all zeros, %w", j+1, ErrRankDeficient)
		}
		scale[j] = norm
		for i, v := range col {
			design.Set(i, j, v/norm)
		}
	}

	ols, err := NewOLSRegression(&OLSOptions{FitIntercept: true})
	if err != nil {
		return err
	}
	if err := ols.Fit(design, mat.NewDense(m, 1, y)); err != nil {
		return fmt.Errorf("unable to fit degree %d polynomial, %w", d, err)
	}

	coef := make([]float64, 0, d+1)
	coef = append(coef, ols.Intercept())
	for j, c := range ols.Coef() {
		coef = append(coef, c/scale[j])
	}
	p.shift, p.scale = shift, std
	p.coef = coef
	return nil
}

func (p *PolyRegression) normalize(x float64) float64 {
	return (x - p.shift) / p.scale
}

// Predict evaluates the fitted polynomial at every point of x
func (p *PolyRegression) Predict(x []float64) ([]float64, error) {
	if p.coef == nil {
		return nil, ErrNotFit
	}
	res := make([]float64, len(x))
	for i, xi := range x {
		res[i] = PolyVal(p.coef, p.normalize(xi))
	}
	return res, nil
}

// Score computes the coefficient of determination of the fit against y
func (p *PolyRegression) Score(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0.0, fmt.Errorf("x has length %d and y has length %d, %w", len(x), len(y), ErrTargetLenMismatch)
	}
	res, err := p.Predict(x)
	if err != nil {
		return 0.0, err
	}
	r2 := stat.RSquaredFrom(res, y, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return r2, nil
}

// Coef returns the coefficients in ascending powers of the raw x. Expanding out of the
// normalized basis loses precision when x sits far from zero; Predict does not use them.
func (p *PolyRegression) Coef() []float64 {
	if p.coef == nil {
		return []float64{}
	}
	// z = a*x + b
	a := 1 / p.scale
	b := -p.shift / p.scale

	out := make([]float64, len(p.coef))
	term := []float64{1} // (a*x + b)^k in ascending powers of x
	for k, c := range p.coef {
		if k > 0 {
			next := make([]float64, len(term)+1)
			for i, t := range term {
				next[i] += t * b
				next[i+1] += t * a
			}
			term = next
		}
		floats.AddScaled(out[:len(term)], c, term)
	}
	return out
}

// NormalizedCoef returns the fitted coefficients in ascending powers of (x-Shift())/Scale()
func (p *PolyRegression) NormalizedCoef() []float64 {
	c := make([]float64, len(p.coef))
	copy(c, p.coef)
	return c
}

// Shift returns the mean of the training x
func (p *PolyRegression) Shift() float64 {
	return p.shift
}

// Scale returns the standard deviation of the training x
func (p *PolyRegression) Scale() float64 {
	return p.scale
}

// PolyVal evaluates the polynomial with ascending power coefficients at x using Horner's method
func PolyVal(coef []float64, x float64) float64 {
	var res float64
	for i := len(coef) - 1; i >= 0; i-- {
		res = res*x + coef[i]
	}
	return res
}
