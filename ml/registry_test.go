package ml

import (
	"errors"
	"sync"
	"testing"
)

func TestRegistryEmpty(t *testing.T) {
	r := NewRegistry(nil)
	if r.Current() != nil {
		t.Fatal("expected no snapshot")
	}
	if _, err := r.Predict([]float64{1, 2}); !errors.Is(err, ErrNoModel) {
		t.Fatalf("expected ErrNoModel, got %v", err)
	}
}

func TestRegistrySwap(t *testing.T) {
	r := NewRegistry(runPassKick(t))
	if v := r.Current().Version; v != 1 {
		t.Fatalf("expected version 1, got %d", v)
	}
	flipped, err := NewModel([][]float64{{-1, 0}, {0, -1}, {1, 1}}, []float64{0, 0, 0}, []string{"run", "pass", "kick"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap := r.Swap(flipped)
	if snap.Version != 2 || snap.Model != flipped {
		t.Fatalf("expected version 2 holding the new model, got %d", snap.Version)
	}
	if r.Current() != snap {
		t.Fatal("Current does not return the swapped snapshot")
	}
	pred, err := r.Predict([]float64{2, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pred.Label != "kick" {
		t.Fatalf("expected kick from swapped model, got %s", pred.Label)
	}
	if pred.ModelVersion != 2 {
		t.Fatalf("expected prediction from version 2, got %d", pred.ModelVersion)
	}
}

func TestRegistryConcurrentSwap(t *testing.T) {
	a := runPassKick(t)
	b, err := NewModel([][]float64{{0, 0, 1}, {0, 1, 0}}, []float64{0, 0}, []string{"x", "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewRegistry(a)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				r.Swap(b)
			} else {
				r.Swap(a)
			}
		}
		close(stop)
	}()

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := r.Current()
				// each snapshot must be internally consistent
				features := make([]float64, snap.Model.FeatureCount())
				pred, err := Predict(snap.Model, features)
				if err != nil {
					t.Errorf("prediction against snapshot %d failed: %v", snap.Version, err)
					return
				}
				if len(pred.Distribution) != snap.Model.ClassCount() {
					t.Errorf("distribution length %d for %d classes", len(pred.Distribution), snap.Model.ClassCount())
					return
				}
			}
		}()
	}
	wg.Wait()
	if r.Current().Version != 501 {
		t.Fatalf("expected version 501, got %d", r.Current().Version)
	}
}
