package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/events"
	"fintrack/internal/log"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print budget changes as they are published",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if app.cfg.AMQPURL == "" {
		return errors.New("watch needs AMQP_URL")
	}
	logger := app.logger.WithComponent(log.ComponentAMQP)

	client, err := events.NewClient(app.cfg.AMQPURL, app.cfg.AMQPExchange, app.cfg.AMQPQueue)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, done := GracefulShutdown(logger, 5*time.Second, nil)
	out := cmd.OutOrStdout()
	err = client.Consume(ctx, func(ctx context.Context, msg *events.BudgetChangedMessage) error {
		if msg.Action == events.ActionSaved {
			fmt.Fprintf(out, "%s saved budget %d for %s: %s\n",
				msg.Timestamp.Format(time.RFC3339), msg.ID, msg.Selection(), *msg.Amount)
			return nil
		}
		fmt.Fprintf(out, "%s deleted budget %d for %s\n",
			msg.Timestamp.Format(time.RFC3339), msg.ID, msg.Selection())
		return nil
	})
	if errors.Is(err, context.Canceled) {
		<-done
		return nil
	}
	return err
}
