package facebook

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
)

type sendRequest struct {
	Recipient     sendRecipient `json:"recipient"`
	Message       sendText      `json:"message"`
	MessagingType string        `json:"messaging_type"`
}

type sendRecipient struct {
	ID string `json:"id"`
}

type sendText struct {
	Text string `json:"text"`
}

// SendMessage replies to a Messenger user. Only the RESPONSE messaging
// type is used, so it must fall inside the 24h window.
func (c *FacebookClient) SendMessage(ctx context.Context, recipientID, text string) (bool, error) {
	data, err := c.postJSON(ctx, "/me/messages", sendRequest{
		Recipient:     sendRecipient{ID: recipientID},
		Message:       sendText{Text: text},
		MessagingType: "RESPONSE",
	})
	if err != nil {
		return false, err
	}

	var sent struct {
		MessageID string `json:"message_id"`
	}
	if err := json.Unmarshal(data, &sent); err != nil {
		return false, malformed("failed to decode send response", err)
	}

	c.logger.WithFields(logrus.Fields{
		"recipient_id": recipientID,
		"message_id":   sent.MessageID,
	}).Info("Sent message")

	return true, nil
}
