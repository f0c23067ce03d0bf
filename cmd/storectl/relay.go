package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/kafka"
	"github.com/dwikikusuma/storefront/pkg/outbox"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
)

func relayCommand(cfg config.Config, log *slog.Logger) *cobra.Command {
	var (
		once     bool
		batch    int
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "relay",
		Short: "publish pending outbox events to kafka",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := kafka.NewClient(cfg.KafkaBrokers).NewPublisher()
			if err != nil {
				return fmt.Errorf("relay needs KAFKA_BROKERS: %w", err)
			}
			defer pub.Close()

			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := shutdown.WithSignals(cmd.Context())
			defer cancel()

			store := outbox.NewSQLStore(db)
			relay := func(ctx context.Context) error {
				n, err := outbox.RelayOnce(ctx, store, pub, batch, log)
				if n > 0 {
					log.Info("outbox relayed", slog.Int("events", n))
				}
				return err
			}

			if once {
				return relay(ctx)
			}

			log.Info("outbox relay starting", slog.Duration("interval", interval), slog.Int("batch", batch))
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				if err := relay(ctx); err != nil && ctx.Err() == nil {
					// the failed event stays pending and is retried next tick
					log.Error("outbox relay failed", slog.Any("err", err))
				}
				select {
				case <-ctx.Done():
					log.Info("outbox relay stopped")
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "relay one batch and exit")
	cmd.Flags().IntVar(&batch, "batch", 100, "events per batch")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "poll interval")
	return cmd
}
