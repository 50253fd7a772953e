package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lisanmuaddib/pagesync/internal/agentconfig"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled sync and auto-reply until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			if err := rt.RegisterActions(log); err != nil {
				return err
			}

			log.WithFields(logrus.Fields{
				"sync_interval":       rt.Config.SyncInterval.String(),
				"auto_reply_interval": rt.Config.AutoReplyInterval.String(),
				"messages_enabled":    rt.Config.MessagesEnabled,
			}).Info("Starting page agent")

			if err := rt.Agent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			log.Info("Agent shutdown complete")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
