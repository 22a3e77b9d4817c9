package ml

import "testing"

// runPassKick is the three-class example model: run scores feature 0,
// pass scores feature 1 and kick scores against both.
func runPassKick(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel(
		[][]float64{{1, 0}, {0, 1}, {-1, -1}},
		[]float64{0, 0, 0},
		[]string{"run", "pass", "kick"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func runPassKickArtifacts() Artifacts {
	return Artifacts{
		Coefficients: []byte("1,0\n0,1\n-1,-1\n"),
		Intercept:    []byte("0\n0\n0\n"),
		Labels:       []byte("run\npass\nkick\n"),
	}
}

func approxEqual(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
