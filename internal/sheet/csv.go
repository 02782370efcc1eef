package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ReadCSV parses an uploaded CSV export of the registration sheet into raw
// rows, header row included. Rows may have differing cell counts; the
// normalizer pads short rows itself.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}
