package slack

import (
	"github.com/slack-go/slack"

	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

// userFromAPI converts a Slack API user into the domain model
func userFromAPI(u *slack.User) *model.User {
	return &model.User{
		ID:       types.UserID(u.ID),
		Name:     u.Name,
		RealName: u.RealName,
		Deleted:  u.Deleted,
		IsBot:    u.IsBot,
		IsAdmin:  u.IsAdmin,
		IsOwner:  u.IsOwner,
		Timezone: u.TZ,
		Profile: model.UserProfile{
			Email:       u.Profile.Email,
			DisplayName: u.Profile.DisplayName,
			StatusEmoji: u.Profile.StatusEmoji,
			StatusText:  u.Profile.StatusText,
			Image72:     u.Profile.Image72,
		},
	}
}

// conversationFromAPI converts a Slack API channel into the domain model
func conversationFromAPI(ch *slack.Channel) *model.Conversation {
	return &model.Conversation{
		ID:         types.ConversationID(ch.ID),
		Name:       ch.Name,
		IsChannel:  ch.IsChannel,
		IsGroup:    ch.IsGroup,
		IsIM:       ch.IsIM,
		IsMpIM:     ch.IsMpIM,
		IsPrivate:  ch.IsPrivate,
		IsArchived: ch.IsArchived,
		Topic:      ch.Topic.Value,
		Purpose:    ch.Purpose.Value,
		NumMembers: ch.NumMembers,
	}
}

// messageFromAPI converts a Slack API message into the domain model. The
// conversation ID is carried explicitly: history responses do not repeat
// the channel on each message.
func messageFromAPI(conv types.ConversationID, m *slack.Message) *model.Message {
	return &model.Message{
		ConversationID: conv,
		TS:             types.MessageTS(m.Timestamp),
		UserID:         types.UserID(m.User),
		Text:           m.Text,
		ThreadTS:       types.MessageTS(m.ThreadTimestamp),
		Permalink:      m.Permalink,
	}
}
