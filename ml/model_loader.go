package ml

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Artifact file names inside a model directory.
const (
	CoefficientsFile = "coefficients.csv"
	InterceptFile    = "intercept.csv"
	LabelsFile       = "labels.txt"
	BinaryFile       = "model.bin"
)

// Supported model directory formats.
const (
	FormatText   = "text"
	FormatBinary = "binary"
)

// LoadModel reads the model stored in dir using the given format.
func LoadModel(format, dir string) (*Model, error) {
	switch format {
	case FormatText, "":
		a, err := readArtifacts(dir)
		if err != nil {
			return nil, err
		}
		return Load(a)
	case FormatBinary:
		b, err := os.ReadFile(filepath.Join(dir, BinaryFile))
		if err != nil {
			return nil, err
		}
		return LoadBinary(b)
	default:
		return nil, errors.New("unsupported model format: " + format)
	}
}

// SaveModel writes m into dir using the given format. Each file is written
// to a temporary name and renamed into place.
func SaveModel(m *Model, format, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	switch format {
	case FormatText, "":
		a := Marshal(m)
		files := []struct {
			name string
			data []byte
		}{
			{CoefficientsFile, a.Coefficients},
			{InterceptFile, a.Intercept},
			{LabelsFile, a.Labels},
		}
		for _, f := range files {
			if err := writeFileAtomic(filepath.Join(dir, f.name), f.data); err != nil {
				return err
			}
		}
		return nil
	case FormatBinary:
		b, err := MarshalBinary(m)
		if err != nil {
			return err
		}
		return writeFileAtomic(filepath.Join(dir, BinaryFile), b)
	default:
		return errors.New("unsupported model format: " + format)
	}
}

// ArtifactFiles lists the file names that make up a model in format.
func ArtifactFiles(format string) []string {
	if format == FormatBinary {
		return []string{BinaryFile}
	}
	return []string{CoefficientsFile, InterceptFile, LabelsFile}
}

func readArtifacts(dir string) (Artifacts, error) {
	var a Artifacts
	targets := []struct {
		name string
		dst  *[]byte
	}{
		{CoefficientsFile, &a.Coefficients},
		{InterceptFile, &a.Intercept},
		{LabelsFile, &a.Labels},
	}
	for _, t := range targets {
		b, err := os.ReadFile(filepath.Join(dir, t.name))
		if err != nil {
			return Artifacts{}, fmt.Errorf("read %s: %w", t.name, err)
		}
		*t.dst = b
	}
	return a, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
