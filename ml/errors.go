package ml

import "errors"

var (
	// ErrMalformedModel reports persisted parameters that cannot be parsed
	// into the expected numeric layout.
	ErrMalformedModel = errors.New("malformed model")
	// ErrShapeMismatch reports coefficients, intercept and labels that
	// disagree on the class count.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrInvalidValue reports a NaN or infinite parameter.
	ErrInvalidValue = errors.New("invalid parameter value")
	// ErrDimensionMismatch reports a feature vector whose length differs
	// from the model's feature count.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrDegenerateInput reports an empty logit vector.
	ErrDegenerateInput = errors.New("degenerate input")
)
