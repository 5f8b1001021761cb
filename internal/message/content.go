package message

import (
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Content is the decoded message payload.
type Content struct {
	Type int    `json:"type,omitempty"`
	Text string `json:"text"`
}

// DecodeContent parses a message's data field, a JSON object string whose
// text field holds the display text.
func DecodeContent(data string) (*Content, error) {
	if data == "" {
		return nil, fmt.Errorf("content: empty data")
	}
	var c Content
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}
	c.Text = norm.NFC.String(c.Text)
	return &c, nil
}

// EncodeContent is the inverse of DecodeContent.
func EncodeContent(c Content) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("content: %w", err)
	}
	return string(b), nil
}
