package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lisanmuaddib/pagesync/internal/agentconfig"
	"github.com/lisanmuaddib/pagesync/pkg/actions"
)

var (
	batchLimit  int
	regenerate  bool
	sendMessage bool
)

func printBatch(result *actions.BatchResult) error {
	return printResult(result, func() {
		fmt.Printf("processed %d: %d replied, %d drafted, %d skipped, %d errors\n",
			result.Processed, result.Replied, result.Drafted, result.Skipped, result.Errors)
		for _, item := range result.Items {
			line := fmt.Sprintf("  %s %s", item.ID, item.Status)
			if item.Message != "" {
				line += ": " + item.Message
			}
			fmt.Println(line)
		}
		if result.Interrupted {
			fmt.Println("interrupted before completion")
		}
	})
}

func limitOr(rt *agentconfig.Runtime) int {
	if batchLimit > 0 {
		return batchLimit
	}
	return rt.Config.AutoReplyBatch
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List comments still waiting for a page reply",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			comments, err := rt.Agent.ListUnrespondedComments(ctx, limitOr(rt))
			if err != nil {
				return err
			}
			return printResult(comments, func() {
				for _, c := range comments {
					fmt.Printf("%s  %s: %s\n", c.CommentID, c.UserName, oneLine(c.Message))
				}
			})
		})
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Evaluate pending comments and post or draft replies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			result, err := rt.Agent.ProcessPending(ctx, limitOr(rt))
			if err != nil {
				return err
			}
			return printBatch(result)
		})
	},
}

var batchGenerateCmd = &cobra.Command{
	Use:   "batch-generate",
	Short: "Generate drafts for pending comments without posting",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			result, err := rt.Agent.BatchGenerate(ctx, limitOr(rt))
			if err != nil {
				return err
			}
			return printBatch(result)
		})
	},
}

var generateDraftCmd = &cobra.Command{
	Use:   "generate-draft <comment-id>",
	Short: "Generate a reply draft for one comment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			draft, err := rt.Agent.GenerateDraft(ctx, args[0], actions.DraftOptions{Regenerate: regenerate})
			if err != nil {
				return err
			}
			return printResult(draft, func() {
				fmt.Printf("draft %d: %s\n", draft.ID, draft.Message)
			})
		})
	},
}

var editDraftCmd = &cobra.Command{
	Use:   "edit-draft <draft-id> <text>",
	Short: "Replace a draft's text",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			draft, err := rt.Comments.EditDraft(ctx, id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return printResult(draft, func() {
				fmt.Printf("draft %d updated\n", draft.ID)
			})
		})
	},
}

var postDraftCmd = &cobra.Command{
	Use:   "post-draft <draft-id>",
	Short: "Publish a draft as a reply on Facebook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			replyID, err := rt.Agent.PostDraft(ctx, id)
			if err != nil {
				return err
			}
			return printResult(map[string]string{"reply_id": replyID}, func() {
				fmt.Printf("posted reply %s\n", replyID)
			})
		})
	},
}

var replyCmd = &cobra.Command{
	Use:   "reply <comment-id> <text>",
	Short: "Post a hand-written reply to a comment",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			reply, err := rt.Comments.ReplyManually(ctx, args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return printResult(reply, func() {
				fmt.Printf("posted reply %s\n", reply.ReplyID)
			})
		})
	},
}

var processMessagesCmd = &cobra.Command{
	Use:   "process-messages",
	Short: "Answer unanswered Messenger messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			result, err := rt.Agent.ProcessPendingMessages(ctx, limitOr(rt))
			if err != nil {
				return err
			}
			return printBatch(result)
		})
	},
}

var respondMessageCmd = &cobra.Command{
	Use:   "respond-message <message-id>",
	Short: "Generate a reply to one Messenger message",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *agentconfig.Runtime, log *logrus.Logger) error {
			if rt.Messages == nil {
				return fmt.Errorf("messaging is disabled, set MESSAGES_ENABLED=true")
			}
			response, err := rt.Messages.RespondToMessage(ctx, args[0], sendMessage)
			if err != nil {
				return err
			}
			return printResult(response, func() {
				fmt.Println(response.ResponseText)
			})
		})
	},
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runes := []rune(s); len(runes) > 80 {
		return string(runes[:77]) + "..."
	}
	return s
}

func init() {
	for _, c := range []*cobra.Command{pendingCmd, processCmd, batchGenerateCmd, processMessagesCmd} {
		c.Flags().IntVar(&batchLimit, "limit", 0, "Maximum items (default AUTO_REPLY_BATCH)")
	}
	generateDraftCmd.Flags().BoolVar(&regenerate, "regenerate", false, "Replace an existing draft")
	respondMessageCmd.Flags().BoolVar(&sendMessage, "send", false, "Send the reply through Messenger")

	rootCmd.AddCommand(pendingCmd, processCmd, batchGenerateCmd, generateDraftCmd, editDraftCmd,
		postDraftCmd, replyCmd, processMessagesCmd, respondMessageCmd)
}
