package ml

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/unicode/norm"
	"gonum.org/v1/gonum/mat"
)

// Model is a loaded multinomial logistic regression classifier. It is never
// mutated after NewModel returns and may be shared across goroutines.
type Model struct {
	coef      *mat.Dense
	intercept []float64
	labels    []string
	index     map[string]int

	featureCount int
	classCount   int
}

// Predictor is anything that can turn a feature vector into a Prediction.
type Predictor interface {
	Predict(features []float64) (*Prediction, error)
}

// NewModel validates the parameters and builds an immutable Model. Row k of
// coefficients, intercept[k] and labels[k] all describe class k.
func NewModel(coefficients [][]float64, intercept []float64, labels []string) (*Model, error) {
	k := len(coefficients)
	if k == 0 {
		return nil, fmt.Errorf("%w: coefficient matrix has no rows", ErrMalformedModel)
	}
	d := len(coefficients[0])
	if d == 0 {
		return nil, fmt.Errorf("%w: coefficient matrix has no columns", ErrMalformedModel)
	}
	for i, row := range coefficients {
		if len(row) != d {
			return nil, fmt.Errorf("%w: coefficient row %d has %d columns, want %d", ErrMalformedModel, i, len(row), d)
		}
	}
	if len(intercept) != k {
		return nil, fmt.Errorf("%w: %d coefficient rows but %d intercepts", ErrShapeMismatch, k, len(intercept))
	}
	if len(labels) != k {
		return nil, fmt.Errorf("%w: %d coefficient rows but %d class labels", ErrShapeMismatch, k, len(labels))
	}

	data := make([]float64, 0, k*d)
	for i, row := range coefficients {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: coefficient[%d][%d] = %v", ErrInvalidValue, i, j, v)
			}
		}
		data = append(data, row...)
	}
	for i, v := range intercept {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: intercept[%d] = %v", ErrInvalidValue, i, v)
		}
	}

	clean := make([]string, k)
	index := make(map[string]int, k)
	for i, label := range labels {
		label = norm.NFC.String(strings.TrimSpace(label))
		if label == "" {
			return nil, fmt.Errorf("%w: class label %d is empty", ErrMalformedModel, i)
		}
		if strings.ContainsAny(label, "\r\n") {
			return nil, fmt.Errorf("%w: class label %d spans lines", ErrMalformedModel, i)
		}
		if prev, ok := index[label]; ok {
			return nil, fmt.Errorf("%w: class label %q repeated at %d and %d", ErrMalformedModel, label, prev, i)
		}
		index[label] = i
		clean[i] = label
	}

	return &Model{
		coef:         mat.NewDense(k, d, data),
		intercept:    append([]float64(nil), intercept...),
		labels:       clean,
		index:        index,
		featureCount: d,
		classCount:   k,
	}, nil
}

// FeatureCount is D, the expected feature vector length.
func (m *Model) FeatureCount() int { return m.featureCount }

// ClassCount is K.
func (m *Model) ClassCount() int { return m.classCount }

// Labels returns a copy of the class labels in class order.
func (m *Model) Labels() []string {
	return append([]string(nil), m.labels...)
}

// Label returns the label of class k.
func (m *Model) Label(k int) string { return m.labels[k] }

// LabelIndex returns the class index of label.
func (m *Model) LabelIndex(label string) (int, bool) {
	k, ok := m.index[label]
	return k, ok
}

// Intercept returns a copy of the intercept vector.
func (m *Model) Intercept() []float64 {
	return append([]float64(nil), m.intercept...)
}

// Coefficients returns a copy of the coefficient matrix as K rows.
func (m *Model) Coefficients() [][]float64 {
	rows := make([][]float64, m.classCount)
	for k := range rows {
		rows[k] = append([]float64(nil), m.coef.RawRowView(k)...)
	}
	return rows
}

// Predict implements Predictor.
func (m *Model) Predict(features []float64) (*Prediction, error) {
	return Predict(m, features)
}
