// density-import loads a sanctuary density CSV export into a SQLite database
// that oysterdash can serve with source.type: sqlite.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/oysterdash/internal/samples"
)

func main() {
	var (
		csvFile    = flag.String("csv", "", "Path to the density CSV export (required)")
		sqliteFile = flag.String("db", "", "Path to the SQLite database file (required)")
		table      = flag.String("table", samples.DefaultTable, "Table to create or replace")
		dryRun     = flag.Bool("dry-run", false, "Parse the CSV and report without writing")
	)
	flag.Parse()

	if *csvFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -csv <densities.csv> -db <densities.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()

	fmt.Printf("Importing oyster densities...\n")
	fmt.Printf("  Source: %s\n", *csvFile)
	fmt.Printf("  Target: %s (table %s)\n", *sqliteFile, *table)

	loaded, err := samples.NewCSVSource(*csvFile).Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading CSV: %v\n", err)
		os.Exit(1)
	}

	materials := make(map[string]int)
	for _, s := range loaded {
		materials[s.Material]++
	}
	fmt.Printf("  Parsed %d samples across %d materials\n", len(loaded), len(materials))

	if *dryRun {
		for name, n := range materials {
			fmt.Printf("    %-24s %d\n", name, n)
		}
		fmt.Println("DRY RUN complete - no database written")
		return
	}

	db, err := samples.OpenSQLite(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := samples.WriteSQLite(ctx, db, *table, loaded); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing samples: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Import complete: %d rows written\n", len(loaded))
}
