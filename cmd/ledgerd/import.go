package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tidebook/accounts-engine/ledger"
	"github.com/tidebook/accounts-engine/logger"
	"github.com/tidebook/accounts-engine/store/sqlite"
)

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Bulk-import a CSV file into the ledger",
	Long: `Reads a CSV file whose header row names the columns (CUSTOMER, DATE,
ITEM, COUNT, QUANTITY, RATE, ADVANCE, PHONE, LOCATION, PAYMENT; matching is
case-insensitive) and imports each row through the same validation and
derivation as manual entry. Rows with a blank customer name are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("import")

	rows, err := readCSVRows(args[0])
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	importer := ledger.NewImporter(store, ledger.NewPreparer(store))
	report, err := importer.Run(cmd.Context(), rows)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	for _, skip := range report.Skipped {
		log.Warn().Int("row", skip.Row).Str("reason", skip.Reason).Msg("row skipped")
	}
	for _, fail := range report.Failed {
		log.Error().Int("row", fail.Row).Str("reason", fail.Reason).Msg("row failed")
	}

	log.Info().
		Str("batch", report.BatchID).
		Int("accepted", report.Accepted).
		Int("skipped", len(report.Skipped)).
		Int("failed", len(report.Failed)).
		Msg("import complete")

	fmt.Printf("Imported %d records (%d skipped, %d failed)\n",
		report.Accepted, len(report.Skipped), len(report.Failed))
	return nil
}

// readCSVRows turns a headered CSV file into column-name keyed rows, the
// shape the import engine accepts.
func readCSVRows(path string) ([]ledger.ImportRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged rows; missing cells become blanks

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv has no data rows")
	}

	header := records[0]
	rows := make([]ledger.ImportRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(ledger.ImportRow, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
