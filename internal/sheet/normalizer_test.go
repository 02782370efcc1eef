package sheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/event-reg-api/internal/models"
)

func defaultHeaders() []string {
	return []string{
		"Timestamp", "First Name", "Last Name", "Email Address",
		"Are you registering yourself or someone else?",
		"Company/Institution", "Trainings", "Total Cost", "Payment Option",
		"Notes", "Group Total", "Company/Institution (Group)", "Number of Attendees",
	}
}

// attendeeBlock builds one 8-cell block in layout order.
func attendeeBlock(first, last, email, position, designation, country, trainings, subtotal string) []string {
	return []string{first, last, email, position, designation, country, trainings, subtotal}
}

func TestHeaderIndexFirstOccurrenceWins(t *testing.T) {
	index := HeaderIndex([]string{"A", "B", "A", "", "C"})
	assert.Equal(t, 0, index["A"])
	assert.Equal(t, 1, index["B"])
	assert.Equal(t, 4, index["C"])
	_, ok := index[""]
	assert.False(t, ok)
}

func TestNormalizeIndividual(t *testing.T) {
	n := NewNormalizer(DefaultLayout())
	index := HeaderIndex(defaultHeaders())

	row := []string{
		"1/15/2024 09:30:00", "Ada", "Lovelace", "ada@example.org",
		"Myself", "Analytical Engines Ltd",
		"2024-05-01: Ethics ($100.00)", "$100.00", "Invoice", "n/a",
		"", "Should Not Be Used", "",
	}
	record := n.Normalize(index, row)

	assert.Equal(t, models.RegistrationKindIndividual, record.Kind)
	assert.Empty(t, record.Attendees)
	assert.Equal(t, "Ada", record.FirstName)
	assert.Equal(t, "Analytical Engines Ltd", record.Company)
	require.NotNil(t, record.TotalCost)
	assert.InDelta(t, 100, *record.TotalCost, 1e-9)
	require.Len(t, record.Trainings, 1)
	assert.Equal(t, "2024-05-01: Ethics ($100.00)", record.Trainings[0])
	assert.Equal(t, 2024, record.SubmittedAt.Year())
}

func TestNormalizeGroupExpandsAttendeeBlocks(t *testing.T) {
	n := NewNormalizer(DefaultLayout())
	index := HeaderIndex(defaultHeaders())

	row := []string{
		"1/15/2024 09:30:00", "Grace", "Hopper", "grace@example.org",
		"Someone Else / Group", "Ignored Individual Co",
		"", "", "Wire Transfer", "",
		"$350.50", "Navy Research", "2",
	}
	row = append(row, attendeeBlock(
		"Jean", "Bartik", "jean@example.org", "Engineer", "Dr", "USA",
		"2024-05-01: Ethics ($100.00), 2024-05-01: Risk ($50.50)", "$150.50",
	)...)
	row = append(row, attendeeBlock(
		"Betty", "Holberton", "betty@example.org", "Programmer", "Ms", "USA",
		"2024-05-01: Risk ($200.00)", "$200.00",
	)...)

	record := n.Normalize(index, row)

	assert.Equal(t, models.RegistrationKindGroup, record.Kind)
	assert.Equal(t, "Navy Research", record.Company)
	require.NotNil(t, record.TotalCost)
	assert.InDelta(t, 350.50, *record.TotalCost, 1e-9)

	require.Len(t, record.Attendees, 2)
	first := record.Attendees[0]
	assert.Equal(t, "Jean", first.FirstName)
	assert.Equal(t, "USA", first.Country)
	require.Len(t, first.Trainings, 2)
	assert.Equal(t, "2024-05-01: Ethics ($100.00)", first.Trainings[0])
	assert.Equal(t, "2024-05-01: Risk ($50.50)", first.Trainings[1])
	require.NotNil(t, first.Subtotal)
	assert.InDelta(t, 150.50, *first.Subtotal, 1e-9)

	second := record.Attendees[1]
	assert.Equal(t, "Betty", second.FirstName)
	assert.Equal(t, "Holberton", second.LastName)
	require.Len(t, second.Trainings, 1)
	require.NotNil(t, second.Subtotal)
	assert.InDelta(t, 200, *second.Subtotal, 1e-9)
}

func TestNormalizeGroupWithoutCountFallsBackToIndividual(t *testing.T) {
	n := NewNormalizer(DefaultLayout())
	index := HeaderIndex(defaultHeaders())

	row := []string{
		"", "Solo", "Act", "solo@example.org",
		"Someone Else / Group", "Solo Co",
		"2024-05-01: Ethics ($100.00)", "$100.00", "", "",
		"", "Group Co", "not a number",
	}
	record := n.Normalize(index, row)

	assert.Equal(t, models.RegistrationKindIndividual, record.Kind)
	assert.Empty(t, record.Attendees)
	assert.Equal(t, "Solo Co", record.Company)
}

func TestNormalizeEmptyRowStillNormalizes(t *testing.T) {
	n := NewNormalizer(DefaultLayout())
	index := HeaderIndex(defaultHeaders())

	record := n.Normalize(index, []string{})

	assert.Equal(t, models.RegistrationKindIndividual, record.Kind)
	assert.Empty(t, record.FirstName)
	assert.Nil(t, record.TotalCost)
	assert.Empty(t, record.Trainings)
	assert.True(t, record.SubmittedAt.IsZero())
}

func TestNormalizeGroupTotalFallsBackToIndividualTotal(t *testing.T) {
	n := NewNormalizer(DefaultLayout())
	index := HeaderIndex(defaultHeaders())

	row := []string{
		"", "Grace", "Hopper", "grace@example.org",
		"Someone Else / Group", "",
		"", "$99.00", "", "",
		"N/A", "Navy Research", "1",
	}
	row = append(row, attendeeBlock("Jean", "Bartik", "", "", "", "", "", "$99.00")...)

	record := n.Normalize(index, row)
	require.NotNil(t, record.TotalCost)
	assert.InDelta(t, 99, *record.TotalCost, 1e-9)
}

func TestNormalizePositionalFallbackWhenHeaderMissing(t *testing.T) {
	n := NewNormalizer(DefaultLayout())
	// header row without the legacy names; positions still line up
	index := HeaderIndex([]string{"ts", "fn"})

	row := []string{"", "Ada", "Lovelace", "ada@example.org", "Myself", "Co"}
	record := n.Normalize(index, row)

	assert.Equal(t, "Ada", record.FirstName)
	assert.Equal(t, "Lovelace", record.LastName)
	assert.Equal(t, "Co", record.Company)
}

func TestReadCSVRaggedRows(t *testing.T) {
	input := "A,B,C\n1,2\nx,y,z,extra\n"
	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Len(t, rows[1], 2)
	assert.Len(t, rows[2], 4)
}
