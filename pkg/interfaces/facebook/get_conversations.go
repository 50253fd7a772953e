package facebook

import (
	"context"
	"fmt"
)

const (
	conversationFields = "id,snippet,updated_time,message_count,participants,can_reply"
	messageFields      = "id,from,to,message,created_time,attachments"
)

// FetchConversations returns up to limit Messenger threads of the page.
func (c *FacebookClient) FetchConversations(ctx context.Context, limit int) (*Page[Conversation], error) {
	return fetchPaged(ctx, c, listRequest{
		path:     fmt.Sprintf("/%s/conversations", c.config.PageID),
		fields:   conversationFields,
		limit:    limit,
		pageSize: maxConversationPageSize,
	}, decodeConversation)
}

// FetchMessages returns up to limit messages of a thread, newest first as
// the Graph API orders them.
func (c *FacebookClient) FetchMessages(ctx context.Context, conversationID string, limit int) (*Page[Message], error) {
	return fetchPaged(ctx, c, listRequest{
		path:     fmt.Sprintf("/%s/messages", conversationID),
		fields:   messageFields,
		limit:    limit,
		pageSize: maxPageSize,
	}, decodeMessage)
}
