package slack

import (
	"context"
	"errors"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
)

const (
	// DefaultPageSize is the page size used when following pagination cursors
	DefaultPageSize = 200

	// DefaultHistoryLimit caps a history fetch when the caller passes no limit
	DefaultHistoryLimit = 100
)

// client implements interfaces.SlackService on top of slack-go
type client struct {
	api      *slack.Client
	pageSize int

	mu        sync.Mutex
	workspace *model.Workspace
}

// Option is a functional option for client configuration
type Option func(*client)

// WithPageSize sets the page size for cursor pagination
func WithPageSize(n int) Option {
	return func(c *client) {
		c.pageSize = n
	}
}

// New creates a Slack service with the provided bot token
func New(token string, opts ...Option) (interfaces.SlackService, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}

	c := &client{
		api:      slack.New(token),
		pageSize: DefaultPageSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Workspace returns the authenticated workspace identity. The auth.test
// response never changes for a token, so it is fetched once and cached
// for the lifetime of the service instance.
func (c *client) Workspace(ctx context.Context) (*model.Workspace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.workspace != nil {
		return c.workspace, nil
	}

	resp, err := c.api.AuthTestContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to authenticate with Slack")
	}

	c.workspace = &model.Workspace{
		ID:       types.WorkspaceID(resp.TeamID),
		Name:     resp.Team,
		URL:      resp.URL,
		UserID:   types.UserID(resp.UserID),
		UserName: resp.User,
	}
	return c.workspace, nil
}

// ListUsers retrieves every member of the workspace
func (c *client) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := c.api.GetUsersContext(ctx, slack.GetUsersOptionLimit(c.pageSize))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}

	result := make([]*model.User, 0, len(users))
	for i := range users {
		result = append(result, userFromAPI(&users[i]))
	}
	return result, nil
}

// GetUser retrieves a single user by ID
func (c *client) GetUser(ctx context.Context, id types.UserID) (*model.User, error) {
	user, err := c.api.GetUserInfoContext(ctx, string(id))
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(interfaces.ErrRemoteNotFound, "user does not exist", goerr.V("user_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user info", goerr.V("user_id", id))
	}
	return userFromAPI(user), nil
}

// ListConversations retrieves the public and private channels of the
// workspace, following pagination cursors to the end
func (c *client) ListConversations(ctx context.Context, includeArchived bool) ([]*model.Conversation, error) {
	var result []*model.Conversation
	var cursor string

	for {
		params := &slack.GetConversationsParameters{
			Types:           []string{"public_channel", "private_channel"},
			ExcludeArchived: !includeArchived,
			Limit:           c.pageSize,
			Cursor:          cursor,
		}

		convs, nextCursor, err := c.api.GetConversationsContext(ctx, params)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list conversations")
		}

		for i := range convs {
			result = append(result, conversationFromAPI(&convs[i]))
		}

		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return result, nil
}

// GetConversation retrieves a single conversation by ID
func (c *client) GetConversation(ctx context.Context, id types.ConversationID) (*model.Conversation, error) {
	info, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: string(id),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, goerr.Wrap(interfaces.ErrRemoteNotFound, "conversation does not exist", goerr.V("conversation_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get conversation info", goerr.V("conversation_id", id))
	}
	return conversationFromAPI(info), nil
}

// ListMessages retrieves up to limit recent messages of the conversation,
// newest first
func (c *client) ListMessages(ctx context.Context, conv types.ConversationID, limit int) ([]*model.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var result []*model.Message
	var cursor string

	for len(result) < limit {
		page := limit - len(result)
		if page > c.pageSize {
			page = c.pageSize
		}

		resp, err := c.api.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
			ChannelID: string(conv),
			Limit:     page,
			Cursor:    cursor,
		})
		if err != nil {
			if isNotFound(err) {
				return nil, goerr.Wrap(interfaces.ErrRemoteNotFound, "conversation does not exist", goerr.V("conversation_id", conv))
			}
			return nil, goerr.Wrap(err, "failed to get conversation history", goerr.V("conversation_id", conv))
		}

		for i := range resp.Messages {
			result = append(result, messageFromAPI(conv, &resp.Messages[i]))
		}

		cursor = resp.ResponseMetaData.NextCursor
		if cursor == "" || !resp.HasMore {
			break
		}
	}

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// notFoundCodes are the Slack API error strings that mean the requested
// object does not exist (as opposed to a transient or auth failure)
var notFoundCodes = map[string]struct{}{
	"user_not_found":    {},
	"users_not_found":   {},
	"channel_not_found": {},
}

func isNotFound(err error) bool {
	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) {
		_, ok := notFoundCodes[apiErr.Err]
		return ok
	}
	_, ok := notFoundCodes[err.Error()]
	return ok
}
