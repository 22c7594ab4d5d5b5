package series

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// Values is a chainable slice of generated points
type Values []float64

func (v Values) Add(src Values) Values {
	floats.Add(v, src)
	return v
}

func (v Values) Scale(c float64) Values {
	floats.Scale(c, v)
	return v
}

// GenerateX returns n evenly spaced coordinates beginning at start
func GenerateX(n int, start, step float64) Values {
	x := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		x = append(x, start+step*float64(i))
	}
	return Values(x)
}

func GenerateConstY(n int, val float64) Values {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Values(y)
}

func GenerateLinearY(x []float64, intercept, slope float64) Values {
	y := make([]float64, 0, len(x))
	for _, xi := range x {
		y = append(y, intercept+slope*xi)
	}
	return Values(y)
}

func GenerateWaveY(x []float64, amp, period, phase float64) Values {
	y := make([]float64, 0, len(x))
	for _, xi := range x {
		y = append(y, amp*math.Sin(2.0*math.Pi/period*(xi+phase)))
	}
	return Values(y)
}

func GenerateNoise(rng *rand.Rand, n int, scale float64) Values {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, rng.NormFloat64()*scale)
	}
	return Values(y)
}

// Slopes computes the backward difference dy/dx at every index. The first index has no
// predecessor and repeats the slope of the second. A repeated x carries the previous slope.
func Slopes(x, y []float64) Values {
	n := len(y)
	s := make([]float64, n)
	for i := 1; i < n; i++ {
		dx := x[i] - x[i-1]
		if dx == 0 {
			s[i] = s[i-1]
			continue
		}
		s[i] = (y[i] - y[i-1]) / dx
	}
	if n > 1 {
		s[0] = s[1]
	}
	return Values(s)
}

// Simulate builds a validated series from x and y with slopes derived by Slopes
func Simulate(label string, x, y []float64) (*Series, error) {
	return New(label, x, y, Slopes(x, y))
}
