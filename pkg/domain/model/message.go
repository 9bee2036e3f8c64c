package model

import "github.com/lurk-dev/lurk/pkg/domain/types"

// Message represents a single message in a conversation. TS is the Slack
// message timestamp and is unique only within its conversation.
type Message struct {
	ConversationID types.ConversationID `json:"conversation_id"`
	TS             types.MessageTS      `json:"ts"`
	UserID         types.UserID         `json:"user,omitempty"`
	Text           string               `json:"text"`
	ThreadTS       types.MessageTS      `json:"thread_ts,omitempty"`
	Permalink      string               `json:"permalink,omitempty"`
}

// IsThreadReply reports whether the message is a reply inside a thread
func (m *Message) IsThreadReply() bool {
	return m.ThreadTS != "" && m.ThreadTS != m.TS
}
