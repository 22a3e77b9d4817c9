package ml

import (
	"fmt"
	"math"
)

// Score computes the logit vector z = W·x + b. Each row is accumulated left
// to right starting from its intercept so results are reproducible.
func Score(m *Model, features []float64) ([]float64, error) {
	if len(features) != m.featureCount {
		return nil, fmt.Errorf("%w: got %d features, model expects %d", ErrDimensionMismatch, len(features), m.featureCount)
	}
	for d, x := range features {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: feature[%d] = %v", ErrInvalidValue, d, x)
		}
	}

	logits := make([]float64, m.classCount)
	for k := range logits {
		row := m.coef.RawRowView(k)
		z := m.intercept[k]
		for d, w := range row {
			z += w * features[d]
		}
		if math.IsInf(z, 0) || math.IsNaN(z) {
			return nil, fmt.Errorf("%w: logit for class %q overflowed", ErrInvalidValue, m.labels[k])
		}
		logits[k] = z
	}
	return logits, nil
}
