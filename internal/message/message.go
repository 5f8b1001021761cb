package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Wire field names.
const (
	FieldSender    = "sender"
	FieldSignature = "signature"
	FieldData      = "data"
	FieldTitle     = "title"
	FieldLink      = "link"
	FieldTime      = "time"
)

// Message is a signed chat message.
//
// All named fields are optional on the wire. Unknown fields are kept in Extra.
type Message struct {
	Sender    string
	Signature string
	Data      string
	Title     string
	Link      string

	// Time is the sender's timestamp in unix seconds; zero when absent.
	Time int64

	Extra map[string]any
}

// IsEmpty reports whether the message carries no fields at all.
func (m *Message) IsEmpty() bool {
	if m == nil {
		return true
	}
	return m.Sender == "" && m.Signature == "" && m.Data == "" &&
		m.Title == "" && m.Link == "" && m.Time == 0 && len(m.Extra) == 0
}

// UnmarshalJSON decodes a wire message.
//
// Named fields must be JSON strings (time must be a number); null is treated
// as absent. Text fields are NFC-normalized.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("message: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("message: expected object, got null")
	}

	*m = Message{}
	for key, value := range raw {
		if isNull(value) {
			continue
		}
		switch key {
		case FieldSender:
			if err := decodeString(key, value, &m.Sender); err != nil {
				return err
			}
		case FieldSignature:
			if err := decodeString(key, value, &m.Signature); err != nil {
				return err
			}
		case FieldData:
			if err := decodeString(key, value, &m.Data); err != nil {
				return err
			}
		case FieldTitle:
			if err := decodeText(key, value, &m.Title); err != nil {
				return err
			}
		case FieldLink:
			if err := decodeString(key, value, &m.Link); err != nil {
				return err
			}
		case FieldTime:
			t, err := decodeTime(key, value)
			if err != nil {
				return err
			}
			m.Time = t
		default:
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return fmt.Errorf("message: field %q: %w", key, err)
			}
			if m.Extra == nil {
				m.Extra = make(map[string]any)
			}
			m.Extra[key] = v
		}
	}
	return nil
}

// MarshalJSON encodes the message with named fields taking precedence over
// Extra entries of the same name. Empty named fields are omitted.
func (m Message) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+6)
	for k, v := range m.Extra {
		out[k] = v
	}
	setIf(out, FieldSender, m.Sender)
	setIf(out, FieldSignature, m.Signature)
	setIf(out, FieldData, m.Data)
	setIf(out, FieldTitle, m.Title)
	setIf(out, FieldLink, m.Link)
	if m.Time != 0 {
		out[FieldTime] = m.Time
	}
	return json.Marshal(out)
}

// Fields flattens the message into string values for template substitution.
// Named fields win over Extra entries with the same key.
func (m *Message) Fields() map[string]string {
	fields := make(map[string]string, len(m.Extra)+6)
	for k, v := range m.Extra {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case nil:
			fields[k] = ""
		case map[string]any, []any:
			b, err := json.Marshal(val)
			if err != nil {
				continue
			}
			fields[k] = string(b)
		default:
			fields[k] = fmt.Sprint(val)
		}
	}
	fields[FieldSender] = m.Sender
	fields[FieldSignature] = m.Signature
	fields[FieldData] = m.Data
	fields[FieldTitle] = m.Title
	fields[FieldLink] = m.Link
	if m.Time != 0 {
		fields[FieldTime] = strconv.FormatInt(m.Time, 10)
	} else {
		fields[FieldTime] = ""
	}
	return fields
}

// decodeString keeps the value byte for byte. Data and signature must reach
// verification exactly as they were signed.
func decodeString(key string, value json.RawMessage, dst *string) error {
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("message: field %q must be a string: %w", key, err)
	}
	return nil
}

// decodeText is decodeString plus NFC normalization, for display text only.
func decodeText(key string, value json.RawMessage, dst *string) error {
	var s string
	if err := decodeString(key, value, &s); err != nil {
		return err
	}
	*dst = norm.NFC.String(s)
	return nil
}

// decodeTime accepts integral seconds, or a float that fits in an int64
// and is truncated toward zero.
func decodeTime(key string, value json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(value, &n); err != nil {
		return 0, fmt.Errorf("message: field %q must be a number: %w", key, err)
	}
	if i, err := n.Int64(); err == nil {
		return i, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, fmt.Errorf("message: field %q: %w", key, err)
	}
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("message: field %q: %s out of range", key, n)
	}
	return int64(f), nil
}

func isNull(value json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(value), []byte("null"))
}

func setIf(out map[string]any, key, value string) {
	if value != "" {
		out[key] = value
	}
}
