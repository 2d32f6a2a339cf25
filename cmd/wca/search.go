package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/render"
	"github.com/Zuo-Peng/wachat-insight/internal/search"
	"github.com/Zuo-Peng/wachat-insight/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorGreen   = "\033[1;32m"
	sColorRed     = "\033[31m"
	sColorDim     = "\033[2m"
)

func colorizeLabel(label string) string {
	switch label {
	case content.Positive:
		return sColorGreen + label + sColorReset
	case content.Negative:
		return sColorRed + label + sColorReset
	default:
		return label
	}
}

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func tsvField(s string) string {
	s = strings.ReplaceAll(s, "\t", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

// searchOptions builds search options from the shared filter flags.
func searchOptions(ff *filterFlags, label string, limit int) (search.Options, error) {
	filter, err := ff.filter()
	if err != nil {
		return search.Options{}, err
	}
	opts := search.Options{Label: label, Limit: limit}
	opts.FromFilter(filter)
	return opts, nil
}

func searchCmd() *cobra.Command {
	var ff filterFlags
	var label string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query> [archive|dir ...]",
		Short: "Full-text search across indexed messages",
		Long: `Search indexed messages using FTS5. Output is TSV for fzf integration:
  archive, idx, timestamp, sender, label, snippet

Recommended shell function (add to .zshrc):
  wcaf() {
    wca search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'wca preview {1} --hit {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --preview-debounce=150 \
      --bind 'enter:execute(wca open {1} --hit {2})'
  }`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := searchOptions(&ff, label, limit)
			if err != nil {
				return err
			}

			db, err := openIndexed(args[1:])
			if err != nil {
				return err
			}
			defer db.Close()

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return tui.Run(db, args[0], opts)
			}

			opts.Query = args[0]
			results, err := search.Search(db, opts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				ts := r.Ts
				if ts == "" {
					ts = "-"
				}
				// first two fields (archive, idx) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s\t%s\t%s\n",
					r.Archive,
					r.Idx,
					sColorDim, ts, sColorReset,
					render.SenderColor(r.Sender)+tsvField(r.Sender)+sColorReset,
					colorizeLabel(r.Label),
					colorizeSnippet(tsvField(r.Snippet)),
				)
			}
			return nil
		},
	}

	ff.add(cmd)
	cmd.Flags().StringVar(&label, "label", "", "Filter by sentiment label (Positive/Neutral/Negative)")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
