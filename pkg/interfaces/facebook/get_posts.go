package facebook

import (
	"context"
	"fmt"
)

const postFields = "id,message,created_time,updated_time"

// FetchPosts returns up to limit of the page's most recent posts.
func (c *FacebookClient) FetchPosts(ctx context.Context, limit int) (*Page[Post], error) {
	return fetchPaged(ctx, c, listRequest{
		path:     fmt.Sprintf("/%s/posts", c.config.PageID),
		fields:   postFields,
		limit:    limit,
		pageSize: maxPageSize,
	}, decodePost)
}
