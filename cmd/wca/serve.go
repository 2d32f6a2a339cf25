package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/wachat-insight/internal/web"
)

const watchDelay = 500 * time.Millisecond

func serveCmd() *cobra.Command {
	var addr string
	var watchInputs bool

	cmd := &cobra.Command{
		Use:   "serve [archive|dir ...]",
		Short: "Serve the analysis over an HTTP JSON API",
		Long: `Loads the inputs and serves records, metrics, content analysis, word clouds
and exports under /api/v1. Archives can also be uploaded with POST /api/v1/upload.
With --watch the inputs are reloaded whenever an archive changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cleaner, err := newCleaner()
			if err != nil {
				return err
			}
			inputs := args
			if len(inputs) == 0 {
				inputs = cfg.Inputs
			}
			source := web.NewSource(inputs, cleaner, contentOptions())

			// without inputs the service starts empty and waits for an upload
			if len(inputs) > 0 {
				if err := source.Reload(cmd.Context()); err != nil {
					log.Warn().Err(err).Msg("initial load failed, serving without data")
				}
				if watchInputs {
					w, err := source.Watch(watchDelay)
					if err != nil {
						return err
					}
					defer w.Stop()
				}
			}

			if !cmd.Flags().Changed("addr") {
				addr = cfg.ListenAddr
			}
			svc := web.NewService(source, &web.Config{ListenAddr: addr})
			errc := svc.Start()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sig)

			select {
			case s := <-sig:
				log.Info().Str("signal", s.String()).Msg("shutting down")
			case err, ok := <-errc:
				if ok {
					return err
				}
			}
			return svc.Stop()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:5200", "Listen address (default from config)")
	cmd.Flags().BoolVar(&watchInputs, "watch", false, "Reload when an input archive changes")

	return cmd
}
