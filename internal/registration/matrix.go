package registration

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Matrix4 is a 4x4 homogeneous transform in the raw vendor convention,
// row-major. Matrices are retained for audit only; the clipbox tuple is the
// canonical source of the clinical decomposition, so no linear algebra is
// performed on them.
type Matrix4 [4][4]float64

// ParseMatrix decodes a 16-element space-separated field into a Matrix4.
func ParseMatrix(field string) (Matrix4, error) {
	var m Matrix4

	values, err := splitNumeric(field)
	if err != nil {
		return m, err
	}
	if len(values) != 16 {
		return m, fmt.Errorf("%w: expected 16 values, got %d", ErrMalformedMatrix, len(values))
	}

	for i, v := range values {
		m[i/4][i%4] = v
	}
	return m, nil
}

// Flatten returns the matrix values in row-major order.
func (m Matrix4) Flatten() [16]float64 {
	var out [16]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r*4+c] = m[r][c]
		}
	}
	return out
}

// AlignmentTuple is the vendor's 6-value representation of a registration
// correction, in vendor field order: three translations in centimeters and
// three rotations in degrees as written (no unwrap applied).
type AlignmentTuple struct {
	Lateral      float64
	Longitudinal float64
	Vertical     float64
	Rotation     float64
	Pitch        float64
	Roll         float64
}

// ParseAlignment decodes a 6-value alignment field. Vendor files use commas
// for Align.* fields and spaces for matrices; both separators are accepted.
func ParseAlignment(field string) (AlignmentTuple, error) {
	var t AlignmentTuple

	values, err := splitNumeric(field)
	if err != nil {
		return t, err
	}
	if len(values) != 6 {
		return t, fmt.Errorf("%w: expected 6 values, got %d", ErrMalformedMatrix, len(values))
	}

	t.Lateral = values[0]
	t.Longitudinal = values[1]
	t.Vertical = values[2]
	t.Rotation = values[3]
	t.Pitch = values[4]
	t.Roll = values[5]
	return t, nil
}

// vendorValue returns the tuple component for a vendor axis.
func (t AlignmentTuple) vendorValue(axis VendorAxis) float64 {
	switch axis {
	case VendorLateral:
		return t.Lateral
	case VendorLongitudinal:
		return t.Longitudinal
	case VendorVertical:
		return t.Vertical
	case VendorRotation:
		return t.Rotation
	case VendorPitch:
		return t.Pitch
	case VendorRoll:
		return t.Roll
	}
	panic(fmt.Sprintf("unknown vendor axis %d", axis))
}

func splitNumeric(field string) ([]float64, error) {
	tokens := strings.FieldsFunc(field, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	values := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: non-numeric token %q", ErrMalformedMatrix, tok)
		}
		values = append(values, v)
	}
	return values, nil
}
