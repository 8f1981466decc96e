package line

import "encoding/json"

const (
	EventTypeMessage = "message"

	MessageTypeText  = "text"
	MessageTypeImage = "image"
)

// WebhookBody is the platform callback payload: a batch of events delivered
// in one HTTP POST.
type WebhookBody struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one inbound notification. Message is only set for
// type == "message"; other event types (follow, unfollow, ...) carry
// their own payloads which this bot does not act on.
type Event struct {
	Type       string  `json:"type"`
	ReplyToken string  `json:"replyToken"`
	Source     Source  `json:"source"`
	Message    Message `json:"message"`
	Timestamp  int64   `json:"timestamp"`
}

type Source struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

// ParseWebhookBody decodes a verified callback body.
func ParseWebhookBody(body []byte) (WebhookBody, error) {
	var b WebhookBody
	if err := json.Unmarshal(body, &b); err != nil {
		return WebhookBody{}, err
	}
	return b, nil
}

// Outgoing message payloads. The reply endpoint accepts a heterogeneous
// ordered list, so both shapes marshal into the same slot.

type OutMessage interface {
	outMessage()
}

type TextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func NewTextMessage(text string) TextMessage {
	return TextMessage{Type: "text", Text: text}
}

type ImageMessage struct {
	Type               string `json:"type"`
	OriginalContentURL string `json:"originalContentUrl"`
	PreviewImageURL    string `json:"previewImageUrl"`
}

func NewImageMessage(url string) ImageMessage {
	return ImageMessage{Type: "image", OriginalContentURL: url, PreviewImageURL: url}
}

func (TextMessage) outMessage()  {}
func (ImageMessage) outMessage() {}
