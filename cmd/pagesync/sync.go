package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lisanmuaddib/pagesync/internal/agentconfig"
)

var (
	showProgress bool
	syncPosts    int
	syncComments int
	syncConvs    int
	syncMessages int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull recent posts and their comments into the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			posts, comments := syncPosts, syncComments
			if posts == 0 {
				posts = rt.Config.PostsLimit
			}
			if comments == 0 {
				comments = rt.Config.CommentsPerPost
			}

			summary, err := rt.Agent.Sync(ctx, posts, comments)
			if err != nil {
				return err
			}
			return printResult(summary, func() {
				fmt.Printf("posts: %d fetched, %d saved (%d new)\n", summary.PostsFetched, summary.PostsSaved, summary.PostsCreated)
				fmt.Printf("comments: %d saved (%d new, %d updated)\n", summary.CommentsSaved, summary.CommentsCreated, summary.CommentsUpdated)
				for _, f := range summary.Failures {
					fmt.Printf("  failed %s: %s\n", f.ID, f.Message)
				}
				if summary.Interrupted {
					fmt.Println("interrupted before completion")
				}
			})
		}, progressOptions()...)
	},
}

var syncMessagesCmd = &cobra.Command{
	Use:   "sync-messages",
	Short: "Pull Messenger conversations and their messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			convs, msgs := syncConvs, syncMessages
			if convs == 0 {
				convs = rt.Config.ConversationsLimit
			}
			if msgs == 0 {
				msgs = rt.Config.MessagesLimit
			}

			summary, err := rt.Agent.SyncMessages(ctx, convs, msgs)
			if err != nil {
				return err
			}
			return printResult(summary, func() {
				fmt.Printf("conversations: %d fetched, %d saved\n", summary.ConversationsFetched, summary.ConversationsSaved)
				fmt.Printf("messages: %d saved (%d new)\n", summary.MessagesSaved, summary.MessagesCreated)
				for _, f := range summary.Failures {
					fmt.Printf("  failed %s: %s\n", f.ID, f.Message)
				}
			})
		}, progressOptions()...)
	},
}

// progressOptions prints sync progress to stderr when --progress is set, so
// --json output on stdout stays parseable.
func progressOptions() []agentconfig.Option {
	if !showProgress {
		return nil
	}
	return []agentconfig.Option{agentconfig.WithProgress(func(percent float64, msg string) {
		fmt.Fprintf(os.Stderr, "[%3.0f%%] %s\n", percent, msg)
	})}
}

func init() {
	syncCmd.Flags().IntVar(&syncPosts, "posts", 0, "Posts to fetch (default SYNC_POSTS_LIMIT)")
	syncCmd.Flags().IntVar(&syncComments, "comments", 0, "Comments per post (default SYNC_COMMENTS_PER_POST)")
	syncMessagesCmd.Flags().IntVar(&syncConvs, "conversations", 0, "Conversations to fetch")
	syncMessagesCmd.Flags().IntVar(&syncMessages, "messages", 0, "Messages per conversation")
	for _, c := range []*cobra.Command{syncCmd, syncMessagesCmd} {
		c.Flags().BoolVar(&showProgress, "progress", false, "Print progress while syncing")
	}
	rootCmd.AddCommand(syncCmd, syncMessagesCmd)
}
