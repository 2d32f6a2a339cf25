package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wachat-insight/internal/export"
)

func exportCmd() *cobra.Command {
	var ff filterFlags
	var out, format string
	var withCloud bool

	cmd := &cobra.Command{
		Use:   "export [archive|dir ...] -o report.xlsx",
		Short: "Export filtered records and the report as CSV, XLSX or DOCX",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				return fmt.Errorf("--out is required")
			}
			name := format
			if name == "" {
				name = out
			}
			f, err := export.ParseFormat(name)
			if err != nil {
				return err
			}
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
			opts.NoCloud = !withCloud || f != export.XLSX
			rep := ds.Analyze(filter, opts)

			b, err := export.Report(rep, f)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			log.Info().Str("path", out).Int("records", len(rep.Records)).Msg("exported")
			return nil
		},
	}

	ff.add(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file")
	cmd.Flags().StringVar(&format, "format", "", "csv, xlsx or docx (default: from the output file extension)")
	cmd.Flags().BoolVar(&withCloud, "wordcloud", true, "Embed the word cloud in XLSX exports")

	return cmd
}
