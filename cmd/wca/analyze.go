package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/pipeline"
	"github.com/Zuo-Peng/wachat-insight/internal/render"
)

func analyzeCmd() *cobra.Command {
	var ff filterFlags
	var asJSON bool
	var cloudPath string
	var topics, passes, top int

	cmd := &cobra.Command{
		Use:   "analyze [archive|dir ...]",
		Short: "Parse chat export archives and print metrics and content analysis",
		Long: `Reads every chat export archive given (or the configured inputs), applies
the --from/--to/--sender filter and prints message metrics, word and phrase
frequencies, topics, sentiment and languages.`,
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
			if cmd.Flags().Changed("topics") {
				opts.Topics = topics
			}
			if cmd.Flags().Changed("passes") {
				opts.Passes = passes
			}
			if cmd.Flags().Changed("top") {
				opts.TopN = top
			}
			opts.NoCloud = cloudPath == ""

			rep := ds.Analyze(filter, opts)

			if cloudPath != "" {
				if err := writeWordCloud(rep.Content, cloudPath); err != nil {
					return err
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rep)
			}
			fmt.Print(render.RenderReport(rep, term.IsTerminal(int(os.Stdout.Fd()))))
			return nil
		},
	}

	ff.add(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().StringVar(&cloudPath, "wordcloud", "", "Write the word cloud PNG to this path")
	cmd.Flags().IntVar(&topics, "topics", 5, "Number of topics")
	cmd.Flags().IntVar(&passes, "passes", 15, "Topic model passes")
	cmd.Flags().IntVar(&top, "top", 20, "Entries per frequency table")

	return cmd
}

func writeWordCloud(c *content.Result, path string) error {
	if !c.HasWordCloud() {
		if c.WordCloudErr != nil {
			return fmt.Errorf("word cloud: %w", c.WordCloudErr)
		}
		return fmt.Errorf("word cloud: nothing rendered")
	}
	if err := os.WriteFile(path, c.WordCloud, 0o644); err != nil {
		return fmt.Errorf("write word cloud: %w", err)
	}
	log.Info().Str("path", path).Msg("word cloud written")
	return nil
}

func reportFailures(ds *pipeline.Dataset) {
	for _, f := range ds.Failures {
		log.Warn().Err(f.Err).Str("archive", f.Source).Msg("skipped")
	}
}
