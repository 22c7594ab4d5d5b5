package correction

import "math"

// angleEpsilon keeps the turning angle defined when the two slopes are perpendicular
const angleEpsilon = 1e-8

// TurningAngle returns the angle in degrees between two consecutive unit step slopes
func TurningAngle(slopePrev, slopeNow float64) float64 {
	tan := math.Abs((slopeNow - slopePrev) / (1 + slopeNow*slopePrev + angleEpsilon))
	return math.Atan(tan) * 180 / math.Pi
}

// AngleSmooth scans points left to right and replaces any point whose turn away from the
// previous two outputs exceeds limitDeg with the midpoint between the previous output and
// the point. Each output depends on earlier outputs so this cannot run out of order.
func AngleSmooth(points []float64, limitDeg float64) []float64 {
	if len(points) == 0 {
		return []float64{}
	}
	out := make([]float64, 0, len(points))
	out = append(out, points[0])

	for i := 1; i < len(points); i++ {
		prev := out[i-1]
		prevPrev := prev
		if i > 1 {
			prevPrev = out[i-2]
		}
		slopePrev := prev - prevPrev
		slopeNow := points[i] - prev

		if slopePrev == 0 {
			out = append(out, points[i])
			continue
		}
		if TurningAngle(slopePrev, slopeNow) > limitDeg {
			out = append(out, prev+0.5*(points[i]-prev))
			continue
		}
		out = append(out, points[i])
	}
	return out
}
