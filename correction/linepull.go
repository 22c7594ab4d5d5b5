package correction

import "gonum.org/v1/gonum/floats"

// L1Line returns n points on the straight line from (0, start) to (n-1, end). A single
// point has zero slope.
func L1Line(n int, start, end float64) []float64 {
	line := make([]float64, n)
	switch {
	case n == 1:
		line[0] = start
	case n > 1:
		floats.Span(line, start, end)
	}
	return line
}

// LinePull moves every point toward the L1 line by strength, returning the pulled points
// and the line.
func LinePull(points []float64, start, end, strength float64) ([]float64, []float64) {
	line := L1Line(len(points), start, end)
	toLine := make([]float64, len(points))
	floats.SubTo(toLine, line, points)

	pulled := make([]float64, len(points))
	floats.AddScaledTo(pulled, points, strength, toLine)
	return pulled, line
}
