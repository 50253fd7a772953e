package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
)

// PostReply answers a comment as the page and returns the new comment id.
func (c *FacebookClient) PostReply(ctx context.Context, commentID, text string) (string, error) {
	data, err := c.postForm(ctx, fmt.Sprintf("/%s/comments", commentID), url.Values{"message": {text}})
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		return "", malformed("failed to decode reply response", err)
	}
	if created.ID == "" {
		return "", malformed("reply response without id", nil)
	}

	c.logger.WithFields(logrus.Fields{
		"comment_id": commentID,
		"reply_id":   created.ID,
	}).Info("Posted comment reply")

	return created.ID, nil
}
