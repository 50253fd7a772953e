package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type successResponse struct {
	Success bool `json:"success"`
}

func decodeSuccess(data []byte) (bool, error) {
	var s successResponse
	if err := json.Unmarshal(data, &s); err != nil {
		return false, malformed("failed to decode success response", err)
	}
	return s.Success, nil
}

// EditPost replaces the text of a page post.
func (c *FacebookClient) EditPost(ctx context.Context, postID, message string) (bool, error) {
	data, err := c.postForm(ctx, "/"+postID, url.Values{"message": {message}})
	if err != nil {
		return false, err
	}
	return decodeSuccess(data)
}

func (c *FacebookClient) DeletePost(ctx context.Context, postID string) (bool, error) {
	return c.deleteObject(ctx, postID)
}

func (c *FacebookClient) DeleteComment(ctx context.Context, commentID string) (bool, error) {
	return c.deleteObject(ctx, commentID)
}

func (c *FacebookClient) deleteObject(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("object id is required")
	}
	data, err := c.delete(ctx, "/"+id)
	if err != nil {
		return false, err
	}
	return decodeSuccess(data)
}
