/*
main.go - Application entry point

PURPOSE:
  Initializes and runs the sales ledger engine. The binary is a small cobra
  CLI with three commands:

    ledgerd serve            Run the HTTP server (the default workflow)
    ledgerd import <file>    Bulk-import a CSV file through the same
                             validation/derivation as manual entry
    ledgerd backup           Take a one-shot safety backup of the database

CONFIGURATION:
  Environment variables (optionally via a .env file), all prefixed LEDGER_:
    LEDGER_PORT          HTTP port (default 8080)
    LEDGER_DB            Database path (default accounts.db)
    LEDGER_BACKUP_DIR    Backup directory (default Backups)
    LEDGER_BACKUP_HOURS  Scheduled backup interval, 0 disables (default 24)
    LEDGER_LOG_LEVEL     zerolog level (default info)
    LEDGER_LOG_FORMAT    console or json (default console)

SEE ALSO:
  - serve.go, import.go, backup.go: Command implementations
  - config/config.go: Environment parsing
*/
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tidebook/accounts-engine/config"
	"github.com/tidebook/accounts-engine/logger"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "ledgerd",
	Short: "Sales ledger engine for small-business transaction records",
	Long: `ledgerd owns a durable ledger of sales transactions (customer, item,
quantity, rate, payments, balances) in a single local SQLite file and exposes
it to the entry form, table browser, invoice view and bulk import.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; absence is not an error
		_ = godotenv.Load()
		cfg = config.Load()
		return logger.Setup(cfg.LoggerConfig())
	},
}

func main() {
	rootCmd.AddCommand(serveCmd, importCmd, backupCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
