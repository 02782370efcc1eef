package currency

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringDecorated(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  float64
	}{
		{"dollar with thousands separator", "$1,234.50", 1234.50},
		{"plain integer", "1000", 1000},
		{"currency prefix", "USD 300", 300},
		{"negative", "-42.25", -42.25},
		{"negative with whitespace", " -75", -75},
		{"whitespace padding", "  75.00  ", 75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseString(tc.input)
			require.NotNil(t, got)
			assert.InDelta(t, tc.want, *got, 1e-9)
		})
	}
}

func TestParseStringUnparseable(t *testing.T) {
	for _, input := range []string{"N/A", "", "free", "-", "..", "1.2.3"} {
		assert.Nil(t, ParseString(input), "input %q", input)
	}
}

func TestParseNonStringValues(t *testing.T) {
	got := Parse(1000)
	require.NotNil(t, got)
	assert.Equal(t, float64(1000), *got)

	got = Parse(12.5)
	require.NotNil(t, got)
	assert.Equal(t, 12.5, *got)

	assert.Nil(t, Parse(nil))
	assert.Nil(t, Parse(math.NaN()))
	assert.Nil(t, Parse(math.Inf(1)))
}

func TestParseMinusOnlyLeading(t *testing.T) {
	// an interior minus is decoration, not a sign
	got := ParseString("10-20")
	require.NotNil(t, got)
	assert.Equal(t, float64(1020), *got)
}
