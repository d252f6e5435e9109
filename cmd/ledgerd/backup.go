package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tidebook/accounts-engine/maintenance"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Take a one-shot safety backup of the database file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := maintenance.Backup(cfg.DBPath, cfg.BackupDir)
		if err != nil {
			return fmt.Errorf("backup: %w", err)
		}
		if path == "" {
			fmt.Println("No database file to back up yet")
			return nil
		}
		fmt.Printf("Backup written to %s\n", path)
		return nil
	},
}
