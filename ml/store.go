package ml

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Artifacts are the raw persisted model parameters in the delimited text
// layout written by the trainer: one coefficient row per line, one
// intercept per line and one class label per line.
type Artifacts struct {
	Coefficients []byte
	Intercept    []byte
	Labels       []byte
}

// Load parses and validates text artifacts into a Model.
//
// A single coefficient row with a single intercept and two labels is the
// binary layout, where the row scores the second class against the first.
// It is expanded to two rows with a zero reference row for the first class.
func Load(a Artifacts) (*Model, error) {
	coef, err := parseMatrix("coefficients", a.Coefficients)
	if err != nil {
		return nil, err
	}
	intercept, err := parseVector("intercept", a.Intercept)
	if err != nil {
		return nil, err
	}
	labels, err := parseLabels(a.Labels)
	if err != nil {
		return nil, err
	}

	if len(coef) == 1 && len(intercept) == 1 && len(labels) == 2 {
		coef = [][]float64{make([]float64, len(coef[0])), coef[0]}
		intercept = []float64{0, intercept[0]}
	}
	return NewModel(coef, intercept, labels)
}

// Marshal writes m in the text layout accepted by Load. Values use the
// shortest representation that parses back to the same float64.
func Marshal(m *Model) Artifacts {
	var coef, intercept, labels strings.Builder
	for k := 0; k < m.classCount; k++ {
		for d, w := range m.coef.RawRowView(k) {
			if d > 0 {
				coef.WriteByte(',')
			}
			coef.WriteString(strconv.FormatFloat(w, 'g', -1, 64))
		}
		coef.WriteByte('\n')
		intercept.WriteString(strconv.FormatFloat(m.intercept[k], 'g', -1, 64))
		intercept.WriteByte('\n')
		labels.WriteString(m.labels[k])
		labels.WriteByte('\n')
	}
	return Artifacts{
		Coefficients: []byte(coef.String()),
		Intercept:    []byte(intercept.String()),
		Labels:       []byte(labels.String()),
	}
}

func parseMatrix(name string, raw []byte) ([][]float64, error) {
	lines, err := dataLines(name, raw)
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, 0, len(lines))
	for _, ln := range lines {
		tokens, err := tokenize(ln.text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformedModel, name, ln.no, err)
		}
		row := make([]float64, len(tokens))
		for i, tok := range tokens {
			if row[i], err = parseNumber(tok); err != nil {
				return nil, fmt.Errorf("%w: %s line %d column %d: %v", ErrMalformedModel, name, ln.no, i+1, err)
			}
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("%w: %s line %d has %d values, previous rows have %d", ErrMalformedModel, name, ln.no, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseVector(name string, raw []byte) ([]float64, error) {
	lines, err := dataLines(name, raw)
	if err != nil {
		return nil, err
	}
	var out []float64
	for _, ln := range lines {
		tokens, err := tokenize(ln.text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s line %d: %v", ErrMalformedModel, name, ln.no, err)
		}
		for i, tok := range tokens {
			v, err := parseNumber(tok)
			if err != nil {
				return nil, fmt.Errorf("%w: %s line %d column %d: %v", ErrMalformedModel, name, ln.no, i+1, err)
			}
			out = append(out, v)
		}
	}
	return out, nil
}

func parseLabels(raw []byte) ([]string, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: labels: %v", ErrMalformedModel, err)
	}
	var labels []string
	for _, line := range strings.Split(text, "\n") {
		if label := strings.TrimSpace(line); label != "" {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: labels: no class labels", ErrMalformedModel)
	}
	return labels, nil
}

type line struct {
	no   int
	text string
}

// dataLines returns the non-blank, non-comment lines of an artifact.
func dataLines(name string, raw []byte) ([]line, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedModel, name, err)
	}
	var lines []line
	for i, l := range strings.Split(text, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		lines = append(lines, line{no: i + 1, text: l})
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s: no data", ErrMalformedModel, name)
	}
	return lines, nil
}

// decodeText strips a byte-order mark, decoding UTF-16 input if the mark
// says so.
func decodeText(raw []byte) (string, error) {
	decoder := xunicode.BOMOverride(xunicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// tokenize splits a line on commas when it has any, otherwise on whitespace.
func tokenize(s string) ([]string, error) {
	if !strings.Contains(s, ",") {
		return strings.FieldsFunc(s, unicode.IsSpace), nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
		if parts[i] == "" {
			return nil, fmt.Errorf("empty field %d", i+1)
		}
	}
	return parts, nil
}

// parseNumber accepts anything strconv does, including nan and inf, which
// NewModel rejects later as invalid values rather than malformed text.
func parseNumber(tok string) (float64, error) {
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return v, nil
		}
		return 0, fmt.Errorf("not a number: %q", tok)
	}
	return v, nil
}
