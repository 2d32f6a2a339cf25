package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wachat-insight/internal/content"
	"github.com/Zuo-Peng/wachat-insight/internal/parse"
	"github.com/Zuo-Peng/wachat-insight/internal/pipeline"
	"github.com/Zuo-Peng/wachat-insight/internal/textclean"
)

// filterFlags are the record filter flags shared by the analysis commands.
type filterFlags struct {
	from, to string
	senders  []string
}

func (f *filterFlags) add(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "Only messages on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "Only messages on or before this date (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&f.senders, "sender", nil, `Only these senders (repeatable or comma separated; "All" for everyone)`)
}

func (f *filterFlags) filter() (parse.Filter, error) {
	return parse.ParseFilter(f.from, f.to, f.senders)
}

// inputsOrConfig returns the command-line inputs, falling back to the
// configured ones.
func inputsOrConfig(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(cfg.Inputs) > 0 {
		return cfg.Inputs, nil
	}
	return nil, fmt.Errorf("no inputs: pass archives or directories, or set inputs in the config file")
}

func newCleaner() (*textclean.Cleaner, error) {
	return textclean.NewCleaner(cfg.ExtraStopwords)
}

func contentOptions() content.Options {
	return content.Options{
		TopN:   cfg.TopN,
		Topics: cfg.Topics,
		Passes: cfg.Passes,
		Seed:   cfg.Seed,
	}
}

// loadDataset runs the loading half of the pipeline over inputs.
func loadDataset(ctx context.Context, args []string) (*pipeline.Dataset, error) {
	inputs, err := inputsOrConfig(args)
	if err != nil {
		return nil, err
	}
	cleaner, err := newCleaner()
	if err != nil {
		return nil, err
	}
	return pipeline.Load(ctx, inputs, cleaner)
}
