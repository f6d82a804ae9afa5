/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/accountsvc/apiserver/internal/mq"
	"github.com/accountsvc/apiserver/types"
	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect account lifecycle events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Log account events from the configured broker until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		broker, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return fmt.Errorf("open mq: %w", err)
		}
		if broker == nil {
			return errors.New("MQ_BACKEND is none; nothing to tail")
		}
		defer broker.Close()

		events, err := mq.NewAccountEvents(broker, cfg.MQ.Channel)
		if err != nil {
			return err
		}

		logger.Info().Str("backend", cfg.MQ.Backend).Str("channel", cfg.MQ.Channel).Msg("tailing account events")
		err = events.Consume(ctx, func(ctx context.Context, event types.AccountEvent) error {
			logger.Info().
				Str("type", event.Type).
				Str("account_id", event.AccountID).
				Str("role", string(event.Role)).
				Time("occurred_at", event.OccurredAt).
				Msg("account event")
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
