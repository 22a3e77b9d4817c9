package ml

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	binaryMagic   = "PCLR"
	binaryVersion = 1
	maxLabelBytes = math.MaxUint16
)

// MarshalBinary encodes m in the fixed-width little-endian layout:
//
//	magic "PCLR" | uint16 version | uint32 K | uint32 D
//	K*D float64 coefficients, row-major | K float64 intercept
//	K x (uint16 length | label bytes)
func MarshalBinary(m *Model) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(binaryMagic)
	le := binary.LittleEndian
	buf.Write(le.AppendUint16(nil, binaryVersion))
	buf.Write(le.AppendUint32(nil, uint32(m.classCount)))
	buf.Write(le.AppendUint32(nil, uint32(m.featureCount)))
	for _, v := range m.coef.RawMatrix().Data {
		buf.Write(le.AppendUint64(nil, math.Float64bits(v)))
	}
	for _, v := range m.intercept {
		buf.Write(le.AppendUint64(nil, math.Float64bits(v)))
	}
	for _, label := range m.labels {
		if len(label) > maxLabelBytes {
			return nil, fmt.Errorf("label %q too long for binary layout", label[:32])
		}
		buf.Write(le.AppendUint16(nil, uint16(len(label))))
		buf.WriteString(label)
	}
	return buf.Bytes(), nil
}

// LoadBinary decodes the layout written by MarshalBinary.
func LoadBinary(b []byte) (*Model, error) {
	r := bytes.NewReader(b)
	magic := make([]byte, len(binaryMagic))
	if _, err := io.ReadFull(r, magic); err != nil || string(magic) != binaryMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrMalformedModel)
	}
	var header struct {
		Version uint16
		K, D    uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: truncated header", ErrMalformedModel)
	}
	if header.Version != binaryVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedModel, header.Version)
	}
	k, d := int(header.K), int(header.D)
	if k == 0 || d == 0 {
		return nil, fmt.Errorf("%w: empty shape %dx%d", ErrMalformedModel, k, d)
	}
	// Reject impossible shapes before allocating for them. Each class needs
	// 8 bytes of intercept and at least 2 bytes of label, plus d*8 bytes of
	// coefficients. Divisions keep the check free of overflow.
	rem, kk, dd := uint64(r.Len()), uint64(header.K), uint64(header.D)
	if kk > rem/10 || dd > (rem-kk*10)/(kk*8) {
		return nil, fmt.Errorf("%w: %dx%d model does not fit in %d bytes", ErrMalformedModel, k, d, r.Len())
	}

	data := make([]float64, k*d)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("%w: truncated coefficients", ErrMalformedModel)
	}
	intercept := make([]float64, k)
	if err := binary.Read(r, binary.LittleEndian, intercept); err != nil {
		return nil, fmt.Errorf("%w: truncated intercept", ErrMalformedModel)
	}
	labels := make([]string, k)
	for i := range labels {
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, fmt.Errorf("%w: truncated label %d", ErrMalformedModel, i)
		}
		label := make([]byte, n)
		if _, err := io.ReadFull(r, label); err != nil {
			return nil, fmt.Errorf("%w: truncated label %d", ErrMalformedModel, i)
		}
		labels[i] = string(label)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedModel, r.Len())
	}

	rows := make([][]float64, k)
	for i := range rows {
		rows[i] = data[i*d : (i+1)*d]
	}
	return NewModel(rows, intercept, labels)
}
