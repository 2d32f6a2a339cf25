package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wachat-insight/internal/index"
	"github.com/Zuo-Peng/wachat-insight/internal/open"
)

func openCmd() *cobra.Command {
	var hitIdx int

	cmd := &cobra.Command{
		Use:   "open <archive>",
		Short: "Open the chat log in $EDITOR at the hit line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			return open.OpenRecord(db, args[0], hitIdx)
		},
	}

	cmd.Flags().IntVar(&hitIdx, "hit", -1, "Record index to jump to")

	return cmd
}
