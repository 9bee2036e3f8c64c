package model

import "github.com/lurk-dev/lurk/pkg/domain/types"

// Conversation represents a Slack conversation: a public or private
// channel, a direct message, or a group direct message.
type Conversation struct {
	ID         types.ConversationID `json:"id"`
	Name       string               `json:"name"`
	IsChannel  bool                 `json:"is_channel"`
	IsGroup    bool                 `json:"is_group"`
	IsIM       bool                 `json:"is_im"`
	IsMpIM     bool                 `json:"is_mpim"`
	IsPrivate  bool                 `json:"is_private"`
	IsArchived bool                 `json:"is_archived"`
	Topic      string               `json:"topic,omitempty"`
	Purpose    string               `json:"purpose,omitempty"`
	NumMembers int                  `json:"num_members,omitempty"`
}

// TypeLabel returns a short human-readable conversation type
func (c *Conversation) TypeLabel() string {
	switch {
	case c.IsIM:
		return "dm"
	case c.IsMpIM:
		return "group-dm"
	case c.IsPrivate:
		return "private"
	case c.IsGroup:
		return "group"
	default:
		return "channel"
	}
}
