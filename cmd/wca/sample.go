package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wachat-insight/internal/synth"
)

func sampleCmd() *cobra.Command {
	var messages int
	var seed int64
	var multiline bool

	cmd := &cobra.Command{
		Use:   "sample [path]",
		Short: "Write a synthetic chat export archive for trying things out",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "WhatsApp Chat with Sample.zip"
			if len(args) == 1 {
				path = args[0]
			}
			opts := synth.DefaultOptions()
			opts.Messages = messages
			opts.Seed = seed
			opts.Multiline = multiline

			n, err := synth.WriteSampleArchive(path, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Wrote %d messages to %s\n", n, path)
			return nil
		},
	}

	cmd.Flags().IntVar(&messages, "messages", 1000, "Number of messages")
	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed")
	cmd.Flags().BoolVar(&multiline, "multiline", false, "Include messages spanning several lines")

	return cmd
}
