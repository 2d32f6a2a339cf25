package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wachat-insight/internal/render"
	"github.com/Zuo-Peng/wachat-insight/internal/tui"
)

func dashboardCmd() *cobra.Command {
	var ff filterFlags

	cmd := &cobra.Command{
		Use:   "dashboard [archive|dir ...]",
		Short: "Browse the analysis report section by section",
		Long:  `Opens a TUI with one report section per page. Enter copies the section to the clipboard. Without a terminal the report is printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := ff.filter()
			if err != nil {
				return err
			}
			ds, err := loadDataset(cmd.Context(), args)
			if err != nil {
				return err
			}
			reportFailures(ds)

			opts := contentOptions()
			opts.NoCloud = true
			rep := ds.Analyze(filter, opts)

			if !term.IsTerminal(int(os.Stdout.Fd())) {
				fmt.Print(render.RenderReport(rep, false))
				return nil
			}
			return tui.RunDashboard(rep)
		},
	}
	ff.add(cmd)
	return cmd
}
