package actions_test

import (
	"context"
	"fmt"
	"time"

	"github.com/lisanmuaddib/pagesync/pkg/thoughts"
)

type fakeEvaluator struct {
	calls    []string
	fail     map[string]error
	response string
	analysis *thoughts.Analysis
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, in thoughts.CommentInput) (*thoughts.Evaluation, error) {
	f.calls = append(f.calls, in.CommentID)
	if err := f.fail[in.CommentID]; err != nil {
		return nil, err
	}
	return &thoughts.Evaluation{
		Response:       f.response,
		Analysis:       f.analysis,
		TokensUsed:     30,
		ProcessingTime: 200 * time.Millisecond,
		Model:          "stub",
		Raw:            fmt.Sprintf(`{"response":%q}`, f.response),
	}, nil
}

type fakePublisher struct {
	replies map[string][]string
	failFor map[string]error
	next    int
	edited  map[string]string
	deleted []string
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		replies: map[string][]string{},
		failFor: map[string]error{},
		edited:  map[string]string{},
	}
}

func (f *fakePublisher) PostReply(ctx context.Context, commentID, text string) (string, error) {
	if err := f.failFor[commentID]; err != nil {
		return "", err
	}
	f.next++
	f.replies[commentID] = append(f.replies[commentID], text)
	return fmt.Sprintf("%s_reply%d", commentID, f.next), nil
}

func (f *fakePublisher) EditPost(ctx context.Context, postID, message string) (bool, error) {
	f.edited[postID] = message
	return true, nil
}

func (f *fakePublisher) DeletePost(ctx context.Context, postID string) (bool, error) {
	f.deleted = append(f.deleted, postID)
	return true, nil
}

func (f *fakePublisher) DeleteComment(ctx context.Context, commentID string) (bool, error) {
	if err := f.failFor[commentID]; err != nil {
		return false, err
	}
	f.deleted = append(f.deleted, commentID)
	return true, nil
}

type sentMessage struct {
	recipient string
	text      string
}

type fakeMessenger struct {
	sent []sentMessage
	err  error
}

func (f *fakeMessenger) PageID() string { return "page1" }

func (f *fakeMessenger) SendMessage(ctx context.Context, recipientID, text string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.sent = append(f.sent, sentMessage{recipient: recipientID, text: text})
	return true, nil
}

type fakeMessageEvaluator struct {
	inputs []thoughts.MessageInput
}

func (f *fakeMessageEvaluator) Evaluate(ctx context.Context, in thoughts.MessageInput) (*thoughts.Evaluation, error) {
	f.inputs = append(f.inputs, in)
	return &thoughts.Evaluation{Response: "Thanks for writing!", TokensUsed: 12}, nil
}
