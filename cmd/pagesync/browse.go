package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lisanmuaddib/pagesync/internal/agentconfig"
)

var (
	browseLimit   int
	includePosted bool
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "List mirrored posts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			posts, err := rt.Store.ListPosts(ctx, browseLimit)
			if err != nil {
				return err
			}
			return printResult(posts, func() {
				for _, p := range posts {
					msg := ""
					if p.Message != nil {
						msg = oneLine(*p.Message)
					}
					fmt.Printf("%s  %s  %s\n", p.PostID, p.CreatedTime.Format("2006-01-02 15:04"), msg)
				}
			})
		})
	},
}

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List reply drafts",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			drafts, err := rt.Store.ListDrafts(ctx, includePosted)
			if err != nil {
				return err
			}
			return printResult(drafts, func() {
				for _, d := range drafts {
					state := "draft"
					if d.Posted {
						state = "posted"
					} else if d.PostError != nil {
						state = "failed"
					}
					fmt.Printf("%d  %-6s  %s: %s\n", d.ID, state, d.CommentID, oneLine(d.Message))
				}
			})
		})
	},
}

var repliesCmd = &cobra.Command{
	Use:   "replies <comment-id>",
	Short: "List the page's replies to a comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			replies, err := rt.Store.ListReplies(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(replies, func() {
				for _, r := range replies {
					fmt.Printf("%s  %s: %s\n", r.ReplyID, r.Author, oneLine(r.Message))
				}
			})
		})
	},
}

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Show the most frequent keywords in recent comments",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			limit := browseLimit
			if limit == 0 {
				limit = rt.Config.PostsLimit
			}
			topics, err := rt.Store.TrendingTopics(ctx, limit, 10)
			if err != nil {
				return err
			}
			return printResult(topics, func() {
				fmt.Println(strings.Join(topics, ", "))
			})
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <comment-id>",
	Short: "Run a detailed model analysis of one comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			comment, err := rt.Store.GetComment(ctx, args[0])
			if err != nil {
				return err
			}
			result, err := rt.Evaluator.Analyze(ctx, comment.CommentID, comment.Message)
			if err != nil {
				return err
			}
			return printResult(result, func() {
				fmt.Printf("sentiment: %s (%.2f)\n", result.Sentiment, result.SentimentScore)
				fmt.Printf("intent:    %s\n", result.Intent)
				fmt.Printf("urgency:   %s\n", result.Urgency)
				fmt.Printf("topics:    %s\n", strings.Join(result.Topics, ", "))
				fmt.Printf("emotions:  %s\n", strings.Join(result.Emotions, ", "))
				fmt.Printf("action:    %s\n", result.SuggestedAction)
			})
		})
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "List the latest LLM calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			limit := browseLimit
			if limit == 0 {
				limit = 20
			}
			entries, err := rt.Ledger.Recent(ctx, limit)
			if err != nil {
				return err
			}
			return printResult(entries, func() {
				for _, e := range entries {
					status := "ok"
					if !e.Success {
						status = "failed"
					}
					fmt.Printf("%s  %-18s %-6s %5d tokens  %.2fs\n",
						e.CreatedAt.Format("2006-01-02 15:04:05"), e.Endpoint, status, e.TokensUsed, e.ProcessingTime)
				}
			})
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{postsCmd, trendingCmd, usageCmd} {
		c.Flags().IntVar(&browseLimit, "limit", 0, "Maximum rows")
	}
	draftsCmd.Flags().BoolVar(&includePosted, "all", false, "Include posted drafts")
	rootCmd.AddCommand(postsCmd, draftsCmd, repliesCmd, trendingCmd, analyzeCmd, usageCmd)
}
