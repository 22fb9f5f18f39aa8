package domain

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

const maxTextLength = 4096

type Message struct {
	ID        string
	From      Side
	Text      string
	SignGloss string
	At        time.Time
}

// NewMessage validates and normalizes an outgoing message. ID and At are
// assigned by the room when the message is accepted.
func NewMessage(from Side, text, signGloss string) (Message, error) {
	if from != SideA && from != SideB {
		return Message{}, ErrInvalidSide
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > maxTextLength {
		return Message{}, ErrTextTooLong
	}

	return Message{
		From:      from,
		Text:      text,
		SignGloss: strings.TrimSpace(signGloss),
	}, nil
}

type messageJSON struct {
	ID        string `json:"id"`
	From      Side   `json:"from"`
	Text      string `json:"text"`
	SignGloss string `json:"signGloss,omitempty"`
	At        int64  `json:"at"`
}

// MarshalJSON encodes At as Unix milliseconds, which is what browser
// clients compare against Date.now().
func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{
		ID:        m.ID,
		From:      m.From,
		Text:      m.Text,
		SignGloss: m.SignGloss,
		At:        m.At.UnixMilli(),
	})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*m = Message{
		ID:        raw.ID,
		From:      raw.From,
		Text:      raw.Text,
		SignGloss: raw.SignGloss,
		At:        time.UnixMilli(raw.At),
	}
	return nil
}
