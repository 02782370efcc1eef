package sheet

import (
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/event-reg-api/internal/dto"
	"github.com/noah-isme/event-reg-api/internal/models"
	"github.com/noah-isme/event-reg-api/internal/trainingline"
	"github.com/noah-isme/event-reg-api/pkg/currency"
)

// timestampFormats are tried in order when parsing the submission timestamp.
var timestampFormats = []string{
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"1/2/2006",
	"2006-01-02",
}

// Normalizer turns raw spreadsheet rows into registration records. It never
// rejects a row: rows with missing or empty required columns still normalize,
// and write failures are handled downstream per row.
type Normalizer struct {
	layout Layout
}

// NewNormalizer builds a normalizer for the given sheet layout.
func NewNormalizer(layout Layout) *Normalizer {
	if layout.BlockWidth <= 0 {
		layout.BlockWidth = DefaultBlockWidth
	}
	return &Normalizer{layout: layout}
}

// HeaderIndex maps column headers to their position. The first occurrence of a
// duplicated header wins.
func HeaderIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, seen := index[h]; !seen {
			index[h] = i
		}
	}
	return index
}

// Normalize converts one positional row into a registration record. Group rows
// expand the repeated attendee block; a missing or non-numeric attendee count
// collapses the row back to the individual shape.
func (n *Normalizer) Normalize(index map[string]int, row []string) dto.RegistrationRecord {
	l := n.layout

	record := dto.RegistrationRecord{
		SubmittedAt:   parseTimestamp(n.cell(index, row, l.Timestamp)),
		Kind:          models.RegistrationKindIndividual,
		FirstName:     n.cell(index, row, l.FirstName),
		LastName:      n.cell(index, row, l.LastName),
		Email:         n.cell(index, row, l.Email),
		Company:       n.cell(index, row, l.Company),
		PaymentOption: n.cell(index, row, l.PaymentOption),
		PaymentStatus: models.PaymentStatusUnpaid,
		Notes:         n.cell(index, row, l.Notes),
		Trainings:     trainingline.Split(n.cell(index, row, l.Trainings)),
	}

	isGroup := strings.TrimSpace(n.cell(index, row, l.Kind)) == l.GroupValue
	count := attendeeCount(n.cell(index, row, l.AttendeeCount))

	record.TotalCost = n.totalCost(index, row, isGroup)

	if !isGroup || count <= 0 {
		return record
	}

	record.Kind = models.RegistrationKindGroup
	record.Company = n.cell(index, row, l.GroupCompany)

	start := n.columnIndex(index, l.AttendeeCount) + 1
	record.Attendees = make([]dto.AttendeeRecord, 0, count)
	for i := 0; i < count; i++ {
		base := start + i*l.BlockWidth
		record.Attendees = append(record.Attendees, dto.AttendeeRecord{
			FirstName:   cellAt(row, base+l.Block.FirstName),
			LastName:    cellAt(row, base+l.Block.LastName),
			Email:       cellAt(row, base+l.Block.Email),
			Position:    cellAt(row, base+l.Block.Position),
			Designation: cellAt(row, base+l.Block.Designation),
			Country:     cellAt(row, base+l.Block.Country),
			Trainings:   trainingline.Split(cellAt(row, base+l.Block.Trainings)),
			Subtotal:    currency.ParseString(cellAt(row, base+l.Block.Subtotal)),
		})
	}
	return record
}

// totalCost prefers the group total column when it parses, falling back to the
// individual total either way.
func (n *Normalizer) totalCost(index map[string]int, row []string, isGroup bool) *float64 {
	if isGroup {
		if total := currency.ParseString(n.cell(index, row, n.layout.GroupTotal)); total != nil {
			return total
		}
	}
	return currency.ParseString(n.cell(index, row, n.layout.Total))
}

// cell resolves a column header-name-first with positional fallback.
func (n *Normalizer) cell(index map[string]int, row []string, c Column) string {
	return cellAt(row, n.columnIndex(index, c))
}

func (n *Normalizer) columnIndex(index map[string]int, c Column) int {
	if i, ok := index[c.Header]; ok {
		return i
	}
	return c.Fallback
}

func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func attendeeCount(raw string) int {
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || count < 0 {
		return 0
	}
	return count
}

func parseTimestamp(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if ts, err := time.Parse(format, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}
