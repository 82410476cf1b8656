package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"aether/internal/config"
	"aether/internal/indexer"
	"aether/internal/logging"
)

var metricsAddr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Seed the workspace then watch for changes until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := workspaceRoot()

		cw, err := config.NewWatcher(ws)
		if err != nil {
			return fmt.Errorf("watch config: %w", err)
		}
		defer cw.Close()

		idx, err := indexer.Boot(ws, cw.Current(), verbose)
		if err != nil {
			return fmt.Errorf("boot indexer: %w", err)
		}
		defer idx.Close()

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: metricsAddr, Handler: mux}
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logging.Get(logging.CategoryBoot).Warn("metrics server on %s stopped: %v", metricsAddr, err)
				}
			}()
			defer srv.Shutdown(context.Background())
			logging.Get(logging.CategoryBoot).Info("serving Prometheus metrics on %s/metrics", metricsAddr)
		}

		return idx.SeedAndWatch(ctx)
	},
}

func init() {
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus /metrics on (e.g. :9090); empty disables the metrics server")
}
