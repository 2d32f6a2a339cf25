package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wachat-insight/internal/config"
	"github.com/Zuo-Peng/wachat-insight/internal/index"
	"github.com/Zuo-Peng/wachat-insight/internal/scan"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, inputs, DB, FTS5, and show stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("=== Config ===")
			if p, err := config.Path(); err == nil {
				if _, err := os.Stat(p); err != nil {
					fmt.Printf("  %s (not found, using defaults)\n", p)
				} else {
					fmt.Printf("  %s (OK)\n", p)
				}
			}

			fmt.Println("\n=== Inputs ===")
			if len(cfg.Inputs) == 0 {
				fmt.Println("  none configured")
			}
			for _, in := range cfg.Inputs {
				checkInput(in)
			}

			fmt.Println("\n=== Archive Scan ===")
			files, err := scan.ScanInputs(cfg.Inputs)
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
			} else {
				fmt.Printf("  Archives: %d\n", len(files))
			}

			fmt.Println("\n=== Database ===")
			fmt.Printf("  Path: %s\n", cfg.DBPath)
			if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
				fmt.Println("  Status: NOT FOUND (run 'wca index' first)")
				return nil
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			archiveCount, err := db.ArchiveCount()
			if err != nil {
				return fmt.Errorf("count archives: %w", err)
			}
			recordCount, err := db.RecordCount()
			if err != nil {
				return fmt.Errorf("count records: %w", err)
			}
			fmt.Printf("  Archives: %d\n", archiveCount)
			fmt.Printf("  Records:  %d\n", recordCount)

			fmt.Println("\n=== FTS5 ===")
			var ftsCount int
			err = db.Raw().QueryRow("SELECT COUNT(*) FROM records_fts").Scan(&ftsCount)
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Printf("  FTS5 entries: %d\n", ftsCount)
				if ftsCount == recordCount {
					fmt.Println("  Status: OK (synced)")
				} else {
					fmt.Printf("  Status: MISMATCH (records=%d, fts=%d)\n", recordCount, ftsCount)
				}
			}

			if info, err := os.Stat(cfg.DBPath); err == nil {
				sizeMB := float64(info.Size()) / 1024 / 1024
				fmt.Printf("\n=== DB Size: %.1f MB ===\n", sizeMB)
			}

			return nil
		},
	}
}

func checkInput(path string) {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		fmt.Printf("  %s (NOT FOUND)\n", path)
	case info.IsDir():
		fmt.Printf("  %s (directory)\n", path)
	default:
		fmt.Printf("  %s (archive)\n", path)
	}
}
