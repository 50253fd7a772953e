package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lisanmuaddib/pagesync/internal/agentconfig"
	"github.com/lisanmuaddib/pagesync/pkg/db"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize LLM usage and cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			stats, err := rt.Agent.UsageStats(ctx)
			if err != nil {
				return err
			}
			return printResult(stats, func() {
				fmt.Printf("calls:     %d (%d ok, %d failed)\n", stats.TotalCalls, stats.Successes, stats.Failures)
				fmt.Printf("tokens:    %d\n", stats.TotalTokens)
				fmt.Printf("cost:      $%.4f\n", stats.EstimatedCost)
				fmt.Printf("avg time:  %.2fs\n", stats.AvgProcessingTime)
			})
		})
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the page token, its permissions and the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			page, err := rt.Facebook.VerifyCredentials(ctx)
			if err != nil {
				return fmt.Errorf("page token rejected: %w", err)
			}
			perms, err := rt.Facebook.CheckPermissions(ctx)
			if err != nil {
				return fmt.Errorf("failed to read permissions: %w", err)
			}
			version, dirty, err := db.MigrationStatus(log, db.NewDBConfig())
			if err != nil {
				return err
			}

			report := map[string]interface{}{
				"page_id":        page.ID,
				"page_name":      page.Name,
				"permissions":    perms,
				"schema_version": version,
				"schema_dirty":   dirty,
			}
			return printResult(report, func() {
				fmt.Printf("page:        %s (%s)\n", page.Name, page.ID)
				fmt.Printf("permissions: %v\n", perms)
				fmt.Printf("schema:      v%d dirty=%t\n", version, dirty)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, verifyCmd)
}
