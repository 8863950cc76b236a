package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/LVPlayground/gamemode/internal/database"
	gormjournal "github.com/LVPlayground/gamemode/internal/journal/gorm"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:   "journal <dump.db|dir> [session-id]",
	Short: "Inspect a SQLite journal dump",
	Long: `Given a directory, the .db dumps in it are listed. Given a dump without a session id the
sessions in it are listed; with one, its vehicles and events are printed as JSON.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := os.Stat(args[0])
		if err != nil {
			return fmt.Errorf("journal dump not found: %w", err)
		}
		if info.IsDir() {
			paths, err := database.BackupDBPaths(args[0])
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		}

		db, err := database.OpenSQLite(args[0])
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}

		var result any
		if len(args) == 1 {
			result, err = gormjournal.Sessions(db)
		} else {
			result, err = gormjournal.ReadSession(db, args[1])
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	rootCmd.AddCommand(journalCmd)
}
