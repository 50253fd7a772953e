package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lisanmuaddib/pagesync/internal/agentconfig"
	"github.com/lisanmuaddib/pagesync/pkg/logging"
)

var (
	logLevel string
	jsonOut  bool
)

var rootCmd = &cobra.Command{
	Use:           "pagesync",
	Short:         "Mirror a Facebook Page locally and reply to its audience",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
}

func newLogger() *logrus.Logger {
	log := logging.NewLogger()
	if logLevel != "" {
		logging.Configure(log, logLevel, os.Getenv("LOG_FORMAT"))
	}
	return log
}

// withRuntime builds the wired runtime, runs fn under a context cancelled
// by SIGINT or SIGTERM, and closes the store afterwards.
func withRuntime(cmd *cobra.Command, fn func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error, opts ...agentconfig.Option) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := newLogger()
	rt, err := agentconfig.Build(ctx, log, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			log.WithError(err).Warn("Failed to close database")
		}
	}()

	return fn(ctx, rt, log)
}

// printResult writes v as indented JSON when --json is set, otherwise it
// calls text.
func printResult(v interface{}, text func()) error {
	if !jsonOut {
		text()
		return nil
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(id), nil
}
