// Package domain contains core concepts of the chat system.
// This file defines Message entries of the shared log.
// Messages are immutable once appended; log order is the only history order.
package domain

import (
	"time"
)

// SystemSender tags synthetic entries that are rendered but never persisted.
const SystemSender = "safespace"

const welcomeText = "Welcome to the chat! Remember to be nice."

// Message is one entry of the shared log. The JSON field names are the wire
// format of the shared store and must not change.
type Message struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// NewMessage stamps a log entry at append time. Wall clocks of different
// clients may disagree; the timestamp is informational, not an ordering key.
func NewMessage(sender, text string, at time.Time) Message {
	return Message{
		Sender:    sender,
		Text:      text,
		Timestamp: at.UTC().Format(time.RFC3339),
	}
}

// Welcome returns the synthetic greeting entry prepended to every history
// read. It carries no timestamp because it never goes through an append.
func Welcome() Message {
	return Message{
		Sender: SystemSender,
		Text:   welcomeText,
	}
}

// System reports whether the entry is synthetic rather than user-authored.
func (m Message) System() bool {
	return m.Sender == SystemSender && m.Timestamp == ""
}
