package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wachat-insight/internal/index"
	"github.com/Zuo-Peng/wachat-insight/internal/render"
)

func previewCmd() *cobra.Command {
	var hitIdx int
	var context int
	var query string

	cmd := &cobra.Command{
		Use:   "preview <archive>",
		Short: "Preview an indexed chat with context around a hit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := index.OpenDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			out, _, err := render.RenderConversation(db, args[0], render.Options{
				HitIdx:  hitIdx,
				Context: context,
				Query:   query,
			})
			if err != nil {
				return err
			}

			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&hitIdx, "hit", -1, "Record index to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after hit to show")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")

	return cmd
}
