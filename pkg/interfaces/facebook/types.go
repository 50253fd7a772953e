package facebook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// GraphTimeLayout is the timestamp format the Graph API emits.
const GraphTimeLayout = "2006-01-02T15:04:05-0700"

type GraphTime struct {
	time.Time
}

func (t *GraphTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		return nil
	}
	for _, layout := range []string{GraphTimeLayout, time.RFC3339} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized graph time %q", raw)
}

func (t GraphTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(GraphTimeLayout))
}

// Page is one fetch result. Skipped counts items that were present in the
// response but could not be decoded.
type Page[T any] struct {
	Items   []T
	Skipped int
}

type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Post struct {
	ID          string    `json:"id"`
	Message     *string   `json:"message,omitempty"`
	CreatedTime GraphTime `json:"created_time"`
	UpdatedTime GraphTime `json:"updated_time"`
}

type Comment struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	CreatedTime GraphTime `json:"created_time"`
	From        *Author   `json:"from,omitempty"`
}

// AuthorName is empty when the commenter hid their identity from the page.
func (c Comment) AuthorName() string {
	if c.From == nil {
		return ""
	}
	return c.From.Name
}

func (c Comment) AuthorID() string {
	if c.From == nil {
		return ""
	}
	return c.From.ID
}

type Conversation struct {
	ID           string    `json:"id"`
	Snippet      string    `json:"snippet"`
	UpdatedTime  GraphTime `json:"updated_time"`
	MessageCount int       `json:"message_count"`
	Participants []Author  `json:"-"`
	CanReply     bool      `json:"can_reply"`
}

type Message struct {
	ID             string    `json:"id"`
	From           *Author   `json:"from,omitempty"`
	To             []Author  `json:"-"`
	Text           string    `json:"message"`
	CreatedTime    GraphTime `json:"created_time"`
	HasAttachments bool      `json:"-"`
}

type PageInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listEnvelope struct {
	Data   []json.RawMessage `json:"data"`
	Paging *struct {
		Next string `json:"next"`
	} `json:"paging,omitempty"`
}

type authorList struct {
	Data []Author `json:"data"`
}

func decodePost(raw json.RawMessage) (Post, error) {
	var p Post
	if err := json.Unmarshal(raw, &p); err != nil {
		return Post{}, err
	}
	if p.ID == "" {
		return Post{}, fmt.Errorf("post without id")
	}
	if p.CreatedTime.IsZero() {
		return Post{}, fmt.Errorf("post %s without created_time", p.ID)
	}
	return p, nil
}

func decodeComment(raw json.RawMessage) (Comment, error) {
	var c Comment
	if err := json.Unmarshal(raw, &c); err != nil {
		return Comment{}, err
	}
	if c.ID == "" {
		return Comment{}, fmt.Errorf("comment without id")
	}
	if c.CreatedTime.IsZero() {
		return Comment{}, fmt.Errorf("comment %s without created_time", c.ID)
	}
	return c, nil
}

func decodeConversation(raw json.RawMessage) (Conversation, error) {
	var wire struct {
		Conversation
		CanReply     *bool       `json:"can_reply"`
		Participants *authorList `json:"participants"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Conversation{}, err
	}
	c := wire.Conversation
	if c.ID == "" {
		return Conversation{}, fmt.Errorf("conversation without id")
	}
	c.CanReply = wire.CanReply == nil || *wire.CanReply
	c.Participants = []Author{}
	if wire.Participants != nil {
		c.Participants = wire.Participants.Data
	}
	return c, nil
}

func decodeMessage(raw json.RawMessage) (Message, error) {
	var wire struct {
		Message
		To          *authorList `json:"to"`
		Attachments *struct {
			Data []json.RawMessage `json:"data"`
		} `json:"attachments"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Message{}, err
	}
	m := wire.Message
	if m.ID == "" {
		return Message{}, fmt.Errorf("message without id")
	}
	if m.CreatedTime.IsZero() {
		return Message{}, fmt.Errorf("message %s without created_time", m.ID)
	}
	if wire.To != nil {
		m.To = wire.To.Data
	}
	m.HasAttachments = wire.Attachments != nil && len(wire.Attachments.Data) > 0
	return m, nil
}
