// Package floatutils provides utilities for working with floats
package floatutils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// DistributionTolerance is the maximum absolute difference from 1 that
// the sum of a probability distribution may have
const DistributionTolerance = 1e-6

// Softmax returns the softmax of a slice of logits. The log-sum-exp
// is subtracted from each logit before exponentiating so that large
// logits do not overflow.
func Softmax(logits []float64) []float64 {
	lse := floats.LogSumExp(logits)

	probs := make([]float64, len(logits))
	for i, logit := range logits {
		probs[i] = math.Exp(logit - lse)
	}
	return probs
}

// CheckDistribution returns an error if probs is not a probability
// distribution over n outcomes: it must have n elements, each
// non-negative, summing to 1 within DistributionTolerance.
func CheckDistribution(probs []float64, n int) error {
	if len(probs) != n {
		return fmt.Errorf("have %d probabilities, want %d", len(probs), n)
	}

	for i, p := range probs {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("probability %d is %v", i, p)
		}
	}

	if sum := floats.Sum(probs); math.Abs(sum-1) > DistributionTolerance {
		return fmt.Errorf("probabilities sum to %v", sum)
	}
	return nil
}

// Clip clips a floating point to within a minimum and maximum value.
// If the floating point exceeds max, then the function returns the max
// If min exceeds the floating point, then the function returns the min
func Clip(value, min, max float64) float64 {
	clipped := math.Min(value, max)
	return math.Max(clipped, min)
}
