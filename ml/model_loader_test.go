package ml

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndLoadModelDir(t *testing.T) {
	m := runPassKick(t)
	for _, format := range []string{FormatText, FormatBinary} {
		t.Run(format, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "model")
			if err := SaveModel(m, format, dir); err != nil {
				t.Fatalf("save: %v", err)
			}
			for _, name := range ArtifactFiles(format) {
				if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
					t.Fatalf("missing artifact %s: %v", name, err)
				}
			}
			back, err := LoadModel(format, dir)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			pred, err := back.Predict([]float64{2, 1})
			if err != nil {
				t.Fatalf("predict: %v", err)
			}
			if pred.Label != "run" {
				t.Fatalf("expected run, got %s", pred.Label)
			}
			entries, _ := os.ReadDir(dir)
			if len(entries) != len(ArtifactFiles(format)) {
				t.Fatalf("unexpected files left behind: %v", entries)
			}
		})
	}
}

func TestLoadModelErrors(t *testing.T) {
	if _, err := LoadModel("pickle", t.TempDir()); err == nil {
		t.Fatal("expected unsupported format error")
	}
	if _, err := LoadModel(FormatText, t.TempDir()); err == nil {
		t.Fatal("expected error for empty directory")
	}
	if err := SaveModel(runPassKick(t), "pickle", t.TempDir()); err == nil {
		t.Fatal("expected unsupported format error")
	}
}
