package trainingline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFormat(t *testing.T) {
	got := Encode(Line{Name: "Ethics", Date: "2024-05-01", Price: 100})
	assert.Equal(t, "2024-05-01: Ethics ($100.00)", got)
}

func TestDecode(t *testing.T) {
	line, ok := Decode("2024-05-01: Risk Management ($50.50)")
	require.True(t, ok)
	assert.Equal(t, "2024-05-01", line.Date)
	assert.Equal(t, "Risk Management", line.Name)
	assert.InDelta(t, 50.50, line.Price, 1e-9)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, s := range []string{
		"not a training line",
		"no price here: Ethics",
		"2024-05-01 Ethics ($100.00)",
		"",
		"($100.00)",
	} {
		_, ok := Decode(s)
		assert.False(t, ok, "input %q", s)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []Line{
		{Name: "Ethics", Date: "2024-05-01", Price: 100},
		{Name: "Advanced Risk", Date: "May 1, 2024", Price: 50.50},
		{Name: "Governance & Compliance", Date: "2024-06-15", Price: 1250.75},
	}
	for _, want := range cases {
		got, ok := Decode(Encode(want))
		require.True(t, ok, "line %+v", want)
		assert.Equal(t, want, got)
	}
}

func TestExtractPrice(t *testing.T) {
	assert.InDelta(t, 100, ExtractPrice("2024-05-01: Ethics ($100.00)"), 1e-9)
	assert.InDelta(t, 25.5, ExtractPrice("leading text ($25.50) trailing"), 1e-9)
	assert.Zero(t, ExtractPrice("no price anywhere"))
	assert.Zero(t, ExtractPrice("($notanumber)"))
}

func TestAggregate(t *testing.T) {
	total := Aggregate([]string{
		"2024-05-01: Ethics ($100.00)",
		"not a training line",
		"2024-05-01: Risk ($50.50)",
	})
	assert.InDelta(t, 150.50, total, 1e-9)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Zero(t, Aggregate(nil))
	assert.Zero(t, Aggregate([]string{}))
}
