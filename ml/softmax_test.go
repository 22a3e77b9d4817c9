package ml

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestSoftmaxSumsToOne(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		logits := make([]float64, 1+rnd.Intn(12))
		for k := range logits {
			logits[k] = rnd.NormFloat64() * 20
		}
		probs, err := Softmax(logits)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var sum float64
		for k, p := range probs {
			if p < 0 || p > 1 {
				t.Fatalf("probability %d out of range: %v (logits %v)", k, p, logits)
			}
			sum += p
		}
		if !approxEqual(sum, 1, 1e-9) {
			t.Fatalf("probabilities sum to %v for logits %v", sum, logits)
		}
	}
}

func TestSoftmaxExtremeLogits(t *testing.T) {
	probs, err := Softmax([]float64{1000, -1000, 999})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for k, p := range probs {
		if math.IsNaN(p) || p < 0 || p > 1 {
			t.Fatalf("probability %d not finite in range: %v", k, p)
		}
	}
	if probs[1] != 0 {
		t.Fatalf("expected underflow to exactly 0, got %v", probs[1])
	}
	want := 1 / (1 + math.Exp(-1))
	if !approxEqual(probs[0], want, 1e-12) {
		t.Fatalf("expected %v, got %v", want, probs[0])
	}
}

func TestSoftmaxShiftInvariance(t *testing.T) {
	logits := []float64{2, 1, -3, 0.5}
	base, err := Softmax(logits)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range []float64{-1e6, -37.5, -1, 0, 1e-9, 3, 250, 1e6} {
		shifted := make([]float64, len(logits))
		for k, z := range logits {
			shifted[k] = z + c
		}
		got, err := Softmax(shifted)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for k := range got {
			if !approxEqual(got[k], base[k], 1e-9) {
				t.Errorf("shift %v: p[%d] = %v, want %v", c, k, got[k], base[k])
			}
		}
	}
}

func TestSigmoidMatchesLogistic(t *testing.T) {
	for _, z := range []float64{-800, -40, -5, -1, -1e-6, 0, 1e-6, 0.5, 1, 5, 40, 800} {
		want := 1 / (1 + math.Exp(-z))
		if got := Sigmoid(z); !approxEqual(got, want, 1e-12) {
			t.Errorf("Sigmoid(%v) = %v, want %v", z, got, want)
		}
		probs, err := Softmax([]float64{z, 0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if probs[0] != Sigmoid(z) {
			t.Errorf("Softmax([%v, 0])[0] = %v differs from Sigmoid", z, probs[0])
		}
	}
}

func TestSoftmaxRejects(t *testing.T) {
	if _, err := Softmax(nil); !errors.Is(err, ErrDegenerateInput) {
		t.Fatalf("expected ErrDegenerateInput, got %v", err)
	}
	if _, err := Softmax([]float64{1, math.NaN()}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for NaN, got %v", err)
	}
	if _, err := Softmax([]float64{math.Inf(1), 0}); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for Inf, got %v", err)
	}
	if _, err := Softmax([]float64{math.Inf(-1), math.Inf(-1)}); !errors.Is(err, ErrDegenerateInput) {
		t.Fatalf("expected ErrDegenerateInput for all -Inf, got %v", err)
	}
}

func TestSoftmaxNegativeInfinity(t *testing.T) {
	probs, err := Softmax([]float64{math.Inf(-1), 0, math.Inf(-1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0, 1, 0}
	for k := range want {
		if probs[k] != want[k] {
			t.Fatalf("Softmax([-Inf, 0, -Inf]) = %v, want %v", probs, want)
		}
	}
}

func TestSigmoidNonFinite(t *testing.T) {
	tests := []struct {
		z    float64
		want float64
	}{
		{math.Inf(1), 1},
		{math.Inf(-1), 0},
	}
	for _, tt := range tests {
		if got := Sigmoid(tt.z); got != tt.want {
			t.Errorf("Sigmoid(%v) = %v, want %v", tt.z, got, tt.want)
		}
	}
	if got := Sigmoid(math.NaN()); !math.IsNaN(got) {
		t.Errorf("Sigmoid(NaN) = %v, want NaN", got)
	}
}
