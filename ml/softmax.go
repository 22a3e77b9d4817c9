package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Softmax maps logits to a probability distribution. The maximum logit is
// subtracted before exponentiating; the result is unchanged by the shift.
// A -Inf logit gets probability 0. NaN and +Inf logits are rejected with
// ErrInvalidValue, and a vector of only -Inf logits with ErrDegenerateInput.
func Softmax(logits []float64) ([]float64, error) {
	if len(logits) == 0 {
		return nil, fmt.Errorf("%w: empty logit vector", ErrDegenerateInput)
	}
	for k, z := range logits {
		if math.IsNaN(z) || math.IsInf(z, 1) {
			return nil, fmt.Errorf("%w: logit[%d] = %v", ErrInvalidValue, k, z)
		}
	}
	shift := floats.Max(logits)
	if math.IsInf(shift, -1) {
		return nil, fmt.Errorf("%w: every logit is -Inf", ErrDegenerateInput)
	}

	probs := make([]float64, len(logits))
	var sum float64
	for k, z := range logits {
		e := math.Exp(z - shift)
		probs[k] = e
		sum += e
	}
	for k := range probs {
		probs[k] /= sum
	}
	return probs, nil
}

// Sigmoid is the logistic function, computed as the two-class softmax over
// [z, 0] so that the binary case shares the multinomial code path. It
// saturates to 1 at +Inf and returns NaN for NaN.
func Sigmoid(z float64) float64 {
	p, err := Softmax([]float64{z, 0})
	if err != nil {
		if math.IsInf(z, 1) {
			return 1
		}
		return math.NaN()
	}
	return p[0]
}
