package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lisanmuaddib/pagesync/internal/agentconfig"
)

var regenerateDraftCmd = &cobra.Command{
	Use:   "regenerate-draft <draft-id>",
	Short: "Ask the model for new text on an unposted draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			draft, err := rt.Comments.RegenerateDraft(ctx, id)
			if err != nil {
				return err
			}
			return printResult(draft, func() {
				fmt.Printf("draft %d: %s\n", draft.ID, draft.Message)
			})
		})
	},
}

var deleteDraftCmd = &cobra.Command{
	Use:   "delete-draft <draft-id>",
	Short: "Discard an unposted draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			if err := rt.Comments.DeleteDraft(ctx, id); err != nil {
				return err
			}
			fmt.Printf("draft %d deleted\n", id)
			return nil
		})
	},
}

var editPostCmd = &cobra.Command{
	Use:   "edit-post <post-id> <text>",
	Short: "Change a post's text on Facebook and locally",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			if err := rt.Comments.EditPost(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Printf("post %s updated\n", args[0])
			return nil
		})
	},
}

var deletePostCmd = &cobra.Command{
	Use:   "delete-post <post-id>",
	Short: "Delete a post and its local comments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			if err := rt.Comments.DeletePost(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("post %s deleted\n", args[0])
			return nil
		})
	},
}

var deleteCommentCmd = &cobra.Command{
	Use:   "delete-comment <comment-id>",
	Short: "Delete a comment on Facebook and locally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			if err := rt.Comments.DeleteComment(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("comment %s deleted\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(regenerateDraftCmd, deleteDraftCmd, editPostCmd, deletePostCmd, deleteCommentCmd)
}
