package ml

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func TestBinaryRoundTrip(t *testing.T) {
	m := runPassKick(t)
	b, err := MarshalBinary(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := LoadBinary(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p1, _ := m.Predict([]float64{2, 1})
	p2, _ := back.Predict([]float64{2, 1})
	if p1.Label != p2.Label {
		t.Fatalf("labels differ: %s vs %s", p1.Label, p2.Label)
	}
	for k := range p1.Distribution {
		if math.Float64bits(p1.Distribution[k]) != math.Float64bits(p2.Distribution[k]) {
			t.Fatalf("distribution differs at %d: %v vs %v", k, p1.Distribution[k], p2.Distribution[k])
		}
	}
	if got := back.Labels(); got[1] != "pass" {
		t.Fatalf("unexpected labels %v", got)
	}
}

func TestLoadBinaryMalformed(t *testing.T) {
	good, err := MarshalBinary(runPassKick(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrMalformedModel},
		{"bad magic", append([]byte("XXXX"), good[4:]...), ErrMalformedModel},
		{"truncated header", good[:8], ErrMalformedModel},
		{"truncated body", good[:len(good)-3], ErrMalformedModel},
		{"trailing bytes", append(append([]byte(nil), good...), 0), ErrMalformedModel},
		{"bad version", func() []byte {
			b := append([]byte(nil), good...)
			b[4] = 9
			return b
		}(), ErrMalformedModel},
		{"huge shape", func() []byte {
			b := append([]byte(nil), good[:14]...)
			b[6], b[7], b[8], b[9] = 0xff, 0xff, 0xff, 0x7f
			return b
		}(), ErrMalformedModel},
		{"shape overflows size check", func() []byte {
			// K*D*8 + K*10 wraps around to 272 bytes in 64 bits
			b := append([]byte(nil), good[:6]...)
			b = binary.LittleEndian.AppendUint32(b, 574116552)
			b = binary.LittleEndian.AppendUint32(b, 4016332573)
			return append(b, make([]byte, 300)...)
		}(), ErrMalformedModel},
		{"nan intercept", func() []byte {
			b := append([]byte(nil), good...)
			// intercept[0] follows the 14 byte header and 6 coefficients
			off := 14 + 6*8
			nan := math.Float64bits(math.NaN())
			for i := 0; i < 8; i++ {
				b[off+i] = byte(nan >> (8 * i))
			}
			return b
		}(), ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadBinary(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("LoadBinary() error = %v, want %v", err, tt.want)
			}
		})
	}
}
