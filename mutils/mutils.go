package mutils

import (
	"math"

	"golang.org/x/exp/constraints"
)

type number interface {
	constraints.Integer | constraints.Float
}

func Clamp[T number](x, lo, hi T) T {
	return min(hi, max(lo, x))
}

// PowSum combines values as (sum v^p)^(1/p).
func PowSum(p float64, values ...float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += math.Pow(v, p)
	}
	return math.Pow(sum, 1/p)
}

func Round(x float64) int {
	return int(math.Round(x))
}
