package model

import "github.com/lurk-dev/lurk/pkg/domain/types"

// Workspace identifies the Slack workspace the tool is authenticated
// against, as reported by auth.test. The ID scopes every cache key.
type Workspace struct {
	ID       types.WorkspaceID `json:"team_id"`
	Name     string            `json:"team"`
	URL      string            `json:"url,omitempty"`
	UserID   types.UserID      `json:"user_id"`
	UserName string            `json:"user,omitempty"`
}
