package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lisanmuaddib/pagesync/internal/agentconfig"
	"github.com/lisanmuaddib/pagesync/pkg/db/models"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the auto-reply settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			settings, err := rt.Agent.Settings(ctx)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			changed := false
			if flags.Changed("enabled") {
				settings.Enabled, _ = flags.GetBool("enabled")
				changed = true
			}
			if flags.Changed("min-confidence") {
				settings.MinConfidence, _ = flags.GetFloat64("min-confidence")
				changed = true
			}
			if flags.Changed("max-daily") {
				settings.MaxDailyReplies, _ = flags.GetInt("max-daily")
				changed = true
			}
			if flags.Changed("exclude") {
				raw, _ := flags.GetStringSlice("exclude")
				settings.ExcludedKeywords = normalizeKeywords(raw)
				changed = true
			}
			if flags.Changed("negative") {
				settings.RespondToNegative, _ = flags.GetBool("negative")
				changed = true
			}
			if flags.Changed("questions") {
				settings.RespondToQuestions, _ = flags.GetBool("questions")
				changed = true
			}
			if flags.Changed("compliments") {
				settings.RespondToCompliments, _ = flags.GetBool("compliments")
				changed = true
			}

			if changed {
				if err := rt.Agent.UpdateSettings(ctx, settings); err != nil {
					return err
				}
			}
			return printResult(settings, func() { printSettings(settings) })
		})
	},
}

func normalizeKeywords(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func printSettings(s *models.AutoReplySettings) {
	fmt.Printf("enabled:          %t\n", s.Enabled)
	fmt.Printf("min confidence:   %.2f\n", s.MinConfidence)
	fmt.Printf("max daily:        %d\n", s.MaxDailyReplies)
	fmt.Printf("excluded:         %s\n", strings.Join(s.ExcludedKeywords, ", "))
	fmt.Printf("negative:         %t\n", s.RespondToNegative)
	fmt.Printf("questions:        %t\n", s.RespondToQuestions)
	fmt.Printf("compliments:      %t\n", s.RespondToCompliments)
}

func init() {
	f := settingsCmd.Flags()
	f.Bool("enabled", false, "Turn scheduled auto-replies on or off")
	f.Float64("min-confidence", 0, "Confidence below which replies become drafts")
	f.Int("max-daily", 0, "Automatic replies allowed per day")
	f.StringSlice("exclude", nil, "Keywords that block an automatic reply")
	f.Bool("negative", false, "Reply to negative comments")
	f.Bool("questions", false, "Reply to questions")
	f.Bool("compliments", false, "Reply to compliments")
	rootCmd.AddCommand(settingsCmd)
}
