package facebook

import (
	"context"
	"fmt"
	"net/url"
)

const commentFields = "id,message,created_time,from{id,name}"

// FetchComments returns up to limit top-level comments on a post.
func (c *FacebookClient) FetchComments(ctx context.Context, postID string, limit int) (*Page[Comment], error) {
	return fetchPaged(ctx, c, listRequest{
		path:     fmt.Sprintf("/%s/comments", postID),
		fields:   commentFields,
		limit:    limit,
		pageSize: maxPageSize,
		extra:    url.Values{"filter": {"toplevel"}},
	}, decodeComment)
}

// FetchCommentReplies returns replies nested under a comment, including the
// page's own.
func (c *FacebookClient) FetchCommentReplies(ctx context.Context, commentID string, limit int) (*Page[Comment], error) {
	return fetchPaged(ctx, c, listRequest{
		path:     fmt.Sprintf("/%s/comments", commentID),
		fields:   commentFields,
		limit:    limit,
		pageSize: maxPageSize,
	}, decodeComment)
}
