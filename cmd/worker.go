package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/crm-cleaner/internal/queue"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume cleaning jobs from RabbitMQ",
	Long:  "Runs a worker process that pulls dispatched jobs off the configured queue and processes them.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Queue.URL == "" {
			return eris.New("worker requires queue.url (CLEANER_QUEUE_URL) to be set")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		q, err := queue.DialAMQP(cfg.Queue.URL, cfg.Queue.Name)
		if err != nil {
			return err
		}
		defer q.Close() //nolint:errcheck

		zap.L().Info("worker started", zap.String("queue", cfg.Queue.Name))
		return q.Consume(ctx, p, cfg.Queue.Prefetch)
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
