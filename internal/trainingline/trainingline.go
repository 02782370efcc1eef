// Package trainingline encodes and decodes training selections. The display
// string "<date>: <name> ($<price>)" is both the UI label and the stored
// serialization of a selection, so the format here must stay stable.
package trainingline

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Line is the structured form of one training selection.
type Line struct {
	Name  string  `json:"name"`
	Date  string  `json:"date"`
	Price float64 `json:"price"`
}

var (
	lineRe  = regexp.MustCompile(`^\s*([^:]*?)\s*:\s*(.*?)\s*\(\$(-?\d+(?:\.\d+)?)\)\s*$`)
	priceRe = regexp.MustCompile(`\(\$(-?\d+(?:\.\d+)?)\)`)
)

// Encode renders a selection as its canonical display string.
func Encode(l Line) string {
	return fmt.Sprintf("%s: %s ($%.2f)", l.Date, l.Name, l.Price)
}

// Decode parses a display string back into its structured triple. The portion
// before the first colon is the date, the portion between the colon and the
// trailing parenthesised price is the name. The second return value is false
// when the string does not match; callers drop such lines rather than abort.
func Decode(s string) (Line, bool) {
	m := lineRe.FindStringSubmatch(s)
	if m == nil {
		return Line{}, false
	}
	price, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Line{}, false
	}
	return Line{
		Date:  strings.TrimSpace(m[1]),
		Name:  strings.TrimSpace(m[2]),
		Price: price,
	}, true
}

// ExtractPrice returns the numeric value of the first "($<number>)" occurrence
// in s, or 0 when there is none.
func ExtractPrice(s string) float64 {
	m := priceRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	price, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return price
}

// Split breaks a spreadsheet cell holding several selections into individual
// lines. Newlines win when present; otherwise the cell is split after each
// closing price parenthesis, since names and dates may themselves contain
// commas.
func Split(cell string) []string {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return nil
	}
	var parts []string
	if strings.Contains(cell, "\n") {
		parts = strings.Split(cell, "\n")
	} else {
		parts = splitAfterPrice(cell)
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

var selectionBoundaryRe = regexp.MustCompile(`\)\s*,\s*`)

func splitAfterPrice(cell string) []string {
	locs := selectionBoundaryRe.FindAllStringIndex(cell, -1)
	if locs == nil {
		return []string{cell}
	}
	var parts []string
	prev := 0
	for _, loc := range locs {
		parts = append(parts, cell[prev:loc[0]+1])
		prev = loc[1]
	}
	parts = append(parts, cell[prev:])
	return parts
}

// Aggregate sums the prices embedded in the given selection strings, rounded
// to cents. Lines without a parseable price contribute zero. Every derived
// total in the system (attendee subtotal, registration total) comes from here.
func Aggregate(lines []string) float64 {
	var total float64
	for _, line := range lines {
		total += ExtractPrice(line)
	}
	return math.Round(total*100) / 100
}
