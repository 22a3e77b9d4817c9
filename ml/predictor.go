package ml

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Prediction is the outcome of scoring one feature vector. It is owned by
// the caller.
type Prediction struct {
	Label      string  `json:"label"`
	Index      int     `json:"index"`
	Confidence float64 `json:"confidence"`

	Probabilities map[string]float64 `json:"probabilities"`
	// Distribution holds the same probabilities in class order.
	Distribution []float64 `json:"distribution"`
	Logits       []float64 `json:"logits"`

	// ModelVersion is the registry snapshot that produced the prediction,
	// zero when scored directly against a Model.
	ModelVersion uint64 `json:"model_version,omitempty"`
}

// Predict scores features against m and picks the most probable class.
// Ties go to the lowest class index.
func Predict(m *Model, features []float64) (*Prediction, error) {
	logits, err := Score(m, features)
	if err != nil {
		return nil, err
	}
	probs, err := Softmax(logits)
	if err != nil {
		return nil, err
	}

	best := floats.MaxIdx(probs)
	byLabel := make(map[string]float64, len(probs))
	for k, p := range probs {
		byLabel[m.labels[k]] = p
	}
	return &Prediction{
		Label:         m.labels[best],
		Index:         best,
		Confidence:    probs[best],
		Probabilities: byLabel,
		Distribution:  probs,
		Logits:        logits,
	}, nil
}

// PredictBatch predicts every row in order and stops at the first failure.
func PredictBatch(p Predictor, rows [][]float64) ([]*Prediction, error) {
	out := make([]*Prediction, 0, len(rows))
	for i, row := range rows {
		pred, err := p.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, pred)
	}
	return out, nil
}

// Clone returns a deep copy of p.
func (p *Prediction) Clone() *Prediction {
	if p == nil {
		return nil
	}
	c := *p
	c.Probabilities = make(map[string]float64, len(p.Probabilities))
	for k, v := range p.Probabilities {
		c.Probabilities[k] = v
	}
	c.Distribution = append([]float64(nil), p.Distribution...)
	c.Logits = append([]float64(nil), p.Logits...)
	return &c
}
