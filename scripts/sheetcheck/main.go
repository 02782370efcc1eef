// Command sheetcheck dry-runs the spreadsheet normalizer against a local
// CSV export and reports what an import would write, without touching the
// database. Useful for vetting a sheet before wiping and reloading.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/noah-isme/event-reg-api/internal/models"
	"github.com/noah-isme/event-reg-api/internal/sheet"
	"github.com/noah-isme/event-reg-api/internal/trainingline"
)

func main() {
	var (
		path    = flag.String("file", "", "path to a CSV export of the form responses")
		verbose = flag.Bool("v", false, "print each row's normalized summary")
	)
	flag.Parse()

	if *path == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := sheet.ReadCSV(f)
	if err != nil {
		log.Fatalf("parse csv: %v", err)
	}
	if len(rows) == 0 {
		log.Fatal("csv contained no rows")
	}

	index := sheet.HeaderIndex(rows[0])
	normalizer := sheet.NewNormalizer(sheet.DefaultLayout())

	var (
		individuals int
		groups      int
		attendees   int
		badLines    int
		total       float64
	)

	for i, row := range rows[1:] {
		record := normalizer.Normalize(index, row)
		if record.Kind == models.RegistrationKindGroup {
			groups++
			attendees += len(record.Attendees)
			for _, a := range record.Attendees {
				badLines += countUndecodable(a.Trainings)
			}
		} else {
			individuals++
			badLines += countUndecodable(record.Trainings)
		}
		if record.TotalCost != nil {
			total += *record.TotalCost
		}
		if *verbose {
			fmt.Printf("row %d: kind=%s name=%q attendees=%d total=%s\n",
				i+2, record.Kind, record.FirstName+" "+record.LastName,
				len(record.Attendees), formatTotal(record.TotalCost))
		}
	}

	fmt.Printf("rows:              %d\n", len(rows)-1)
	fmt.Printf("individuals:       %d\n", individuals)
	fmt.Printf("groups:            %d (attendees %d)\n", groups, attendees)
	fmt.Printf("undecodable lines: %d\n", badLines)
	fmt.Printf("total cost:        %.2f\n", total)
}

func countUndecodable(lines []string) int {
	n := 0
	for _, raw := range lines {
		if _, ok := trainingline.Decode(raw); !ok {
			n++
		}
	}
	return n
}

func formatTotal(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
