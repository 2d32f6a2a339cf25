package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wachat-insight/internal/tui"
)

func listCmd() *cobra.Command {
	var ff filterFlags
	var label string
	var limit int

	cmd := &cobra.Command{
		Use:   "list [archive|dir ...]",
		Short: "Browse all indexed messages, newest first",
		Long:  `Opens a TUI panel showing all indexed messages sorted by time (newest first). Type to search.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := searchOptions(&ff, label, limit)
			if err != nil {
				return err
			}

			db, err := openIndexed(args)
			if err != nil {
				return err
			}
			defer db.Close()

			return tui.RunList(db, opts)
		},
	}

	ff.add(cmd)
	cmd.Flags().StringVar(&label, "label", "", "Filter by sentiment label (Positive/Neutral/Negative)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Max results (0 = no limit)")

	return cmd
}
