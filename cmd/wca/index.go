package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wachat-insight/internal/index"
)

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index [archive|dir ...]",
		Short: "Parse chat export archives into the local search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs, err := inputsOrConfig(args)
			if err != nil {
				return err
			}
			cleaner, err := newCleaner()
			if err != nil {
				return err
			}

			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			fmt.Fprintf(os.Stderr, "Scanning inputs...\n")
			for _, in := range inputs {
				fmt.Fprintf(os.Stderr, "  %s\n", in)
			}

			stats, err := index.IndexAll(db, inputs, cleaner)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Done. %s\n", stats)
			return nil
		},
	}
}

// openIndexed opens the index and refreshes it from the inputs when there
// are any. A failed refresh is logged and the existing index is used.
func openIndexed(args []string) (*index.DB, error) {
	db, err := index.OpenDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	inputs, err := inputsOrConfig(args)
	if err != nil {
		return db, nil
	}
	cleaner, err := newCleaner()
	if err != nil {
		db.Close()
		return nil, err
	}
	if _, err := index.IndexAll(db, inputs, cleaner); err != nil {
		fmt.Fprintf(os.Stderr, "index update failed: %v\n", err)
	}
	return db, nil
}
