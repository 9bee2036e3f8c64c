package model

import "github.com/lurk-dev/lurk/pkg/domain/types"

// User represents a Slack workspace member as returned by the remote API.
// It is the object callers receive from both the API layer and the cache;
// the cache persists it losslessly via its JSON snapshot.
type User struct {
	ID       types.UserID `json:"id"`
	Name     string       `json:"name"`
	RealName string       `json:"real_name,omitempty"`
	Deleted  bool         `json:"deleted"`
	IsBot    bool         `json:"is_bot"`
	IsAdmin  bool         `json:"is_admin,omitempty"`
	IsOwner  bool         `json:"is_owner,omitempty"`
	Timezone string       `json:"tz,omitempty"`
	Profile  UserProfile  `json:"profile"`
}

// UserProfile holds the profile fields used for display and filtering
type UserProfile struct {
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	StatusEmoji string `json:"status_emoji,omitempty"`
	StatusText  string `json:"status_text,omitempty"`
	Image72     string `json:"image_72,omitempty"`
}

// DisplayLabel returns the name to show for the user: the profile display
// name when set, otherwise the account name.
func (u *User) DisplayLabel() string {
	if u.Profile.DisplayName != "" {
		return u.Profile.DisplayName
	}
	return u.Name
}
