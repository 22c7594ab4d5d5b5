// floatsunrolled is inspired by the SIMD blog post
// https://github.com/camdencheek/simd_blog/blob/main/main.go
//
// The predictor window is a fixed 12 points so every kernel here processes
// slices in batches of 4 and rejects anything else.
package floatsunrolled

import (
	"errors"
	"fmt"
)

const UnrollBatch = 4

var (
	ErrSliceLengthMismatch = errors.New("slices must have equal lengths")
	ErrSliceMul            = fmt.Errorf("slice length must be multiple of %d", UnrollBatch)
)

// Dot returns the inner product of a and b.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(ErrSliceLengthMismatch)
	}

	if len(a)%UnrollBatch != 0 {
		panic(ErrSliceMul)
	}

	var sum float64
	for i := 0; i < len(a); i += UnrollBatch {
		aTmp := a[i : i+UnrollBatch : i+UnrollBatch]
		bTmp := b[i : i+UnrollBatch : i+UnrollBatch]
		s0 := aTmp[0] * bTmp[0]
		s1 := aTmp[1] * bTmp[1]
		s2 := aTmp[2] * bTmp[2]
		s3 := aTmp[3] * bTmp[3]
		sum += s0 + s1 + s2 + s3
	}
	return sum
}

// SumSquares returns the sum of every element squared.
func SumSquares(a []float64) float64 {
	if len(a)%UnrollBatch != 0 {
		panic(ErrSliceMul)
	}

	var sum float64
	for i := 0; i < len(a); i += UnrollBatch {
		aTmp := a[i : i+UnrollBatch : i+UnrollBatch]
		s0 := aTmp[0] * aTmp[0]
		s1 := aTmp[1] * aTmp[1]
		s2 := aTmp[2] * aTmp[2]
		s3 := aTmp[3] * aTmp[3]
		sum += s0 + s1 + s2 + s3
	}
	return sum
}
