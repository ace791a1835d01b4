package registration

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMatrix(t *testing.T) {
	field := "1 0 0 0 0 1 0 0 0 0 1 0 0.5 -0.25 1.75 1"
	m, err := ParseMatrix(field)
	require.NoError(t, err)

	assert.Equal(t, 1.0, m[0][0])
	assert.Equal(t, 0.5, m[3][0])
	assert.Equal(t, -0.25, m[3][1])
	assert.Equal(t, 1.75, m[3][2])
	assert.Equal(t, 1.0, m[3][3])
}

func TestParseMatrix_RoundTrip(t *testing.T) {
	in := []float64{
		0.9998, -0.0175, 0.0042, 0,
		0.0174, 0.9997, 0.0141, 0,
		-0.0044, -0.0140, 0.9998, 0,
		-0.21, 0.05, -0.28, 1,
	}
	tokens := make([]string, len(in))
	for i, v := range in {
		tokens[i] = fmt.Sprintf("%g", v)
	}

	m, err := ParseMatrix(strings.Join(tokens, " "))
	require.NoError(t, err)

	out := m.Flatten()
	for i, v := range in {
		assert.InDelta(t, v, out[i], 1e-9, "element %d", i)
	}
}

func TestParseMatrix_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		field string
	}{
		{name: "too few", field: "1 2 3"},
		{name: "too many", field: strings.Repeat("0 ", 17)},
		{name: "non numeric", field: "1 0 0 0 0 1 0 0 0 0 x 0 0 0 0 1"},
		{name: "empty", field: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMatrix(tt.field)
			assert.ErrorIs(t, err, ErrMalformedMatrix)
		})
	}
}

func TestParseAlignment(t *testing.T) {
	tuple, err := ParseAlignment("-0.21, 0.05, -0.28, 0.4, 0.8, 359.8")
	require.NoError(t, err)

	assert.Equal(t, AlignmentTuple{
		Lateral:      -0.21,
		Longitudinal: 0.05,
		Vertical:     -0.28,
		Rotation:     0.4,
		Pitch:        0.8,
		Roll:         359.8,
	}, tuple)
}

func TestParseAlignment_SpaceSeparated(t *testing.T) {
	tuple, err := ParseAlignment("0.1 0.2 0.3 0 0 0")
	require.NoError(t, err)
	assert.Equal(t, 0.1, tuple.Lateral)
	assert.Equal(t, 0.3, tuple.Vertical)
}

func TestParseAlignment_Malformed(t *testing.T) {
	_, err := ParseAlignment("0.1, 0.2, 0.3")
	assert.ErrorIs(t, err, ErrMalformedMatrix)

	_, err = ParseAlignment("0.1, 0.2, 0.3, a, 0.5, 0.6")
	assert.ErrorIs(t, err, ErrMalformedMatrix)
}
