package ml

import (
	"errors"
	"math"
	"testing"
)

func TestScore(t *testing.T) {
	m := runPassKick(t)
	logits, err := Score(m, []float64{2, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{2, 1, -3}
	for k := range want {
		if logits[k] != want[k] {
			t.Fatalf("logits = %v, want %v", logits, want)
		}
	}
}

func TestScoreAddsIntercept(t *testing.T) {
	m, err := NewModel([][]float64{{0.5, -2, 1}, {1, 1, 1}}, []float64{-1, 0.25}, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logits, err := Score(m, []float64{4, 0.5, -3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if logits[0] != -1+2-1-3 || logits[1] != 0.25+4+0.5-3 {
		t.Fatalf("unexpected logits %v", logits)
	}
}

func TestScoreDimensionMismatch(t *testing.T) {
	m := runPassKick(t)
	for _, features := range [][]float64{nil, {1}, {1, 2, 3}} {
		if _, err := Score(m, features); !errors.Is(err, ErrDimensionMismatch) {
			t.Errorf("Score(%v) error = %v, want ErrDimensionMismatch", features, err)
		}
	}
}

func TestScoreRejectsNonFinite(t *testing.T) {
	m := runPassKick(t)
	if _, err := Score(m, []float64{math.NaN(), 1}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if _, err := Score(m, []float64{math.MaxFloat64, math.MaxFloat64}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected overflow to be rejected, got %v", err)
	}
}

func TestScoreIsReproducible(t *testing.T) {
	m, err := NewModel([][]float64{{0.1, 0.2, 0.3, 1e16, -1e16}}, []float64{0.7}, []string{"x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	features := []float64{3, 7, 11, 1, 1}
	first, _ := Score(m, features)
	for i := 0; i < 100; i++ {
		again, _ := Score(m, features)
		if math.Float64bits(again[0]) != math.Float64bits(first[0]) {
			t.Fatalf("score changed between calls: %v vs %v", again[0], first[0])
		}
	}
	// left-to-right from the intercept
	want := 0.7
	for d, w := range []float64{0.1, 0.2, 0.3, 1e16, -1e16} {
		want += w * features[d]
	}
	if first[0] != want {
		t.Fatalf("expected left-to-right sum %v, got %v", want, first[0])
	}
}
