package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// WorkspaceID identifies a Slack workspace (team). Every cache key and
// every cache query is scoped by it.
type WorkspaceID string

// Validate checks if the WorkspaceID is valid
func (w WorkspaceID) Validate() error {
	if w == "" {
		return goerr.New("workspace ID cannot be empty")
	}
	return nil
}

// String returns the string representation of WorkspaceID
func (w WorkspaceID) String() string {
	return string(w)
}

// UserID represents a unique identifier for a Slack user
type UserID string

// String returns the string representation of UserID
func (u UserID) String() string {
	return string(u)
}

// ConversationID represents a unique identifier for a Slack conversation
// (public channel, private channel, DM, or group DM)
type ConversationID string

// String returns the string representation of ConversationID
func (c ConversationID) String() string {
	return string(c)
}

// MessageTS is a Slack message timestamp (e.g. "1700000000.000100").
// It is unique only within a conversation, never globally.
type MessageTS string

// String returns the string representation of MessageTS
func (m MessageTS) String() string {
	return string(m)
}
