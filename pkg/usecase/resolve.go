package usecase

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"github.com/lurk-dev/lurk/pkg/domain/interfaces"
	"github.com/lurk-dev/lurk/pkg/domain/model"
	"github.com/lurk-dev/lurk/pkg/domain/types"
	"github.com/lurk-dev/lurk/pkg/utils/logging"
)

// ResolveConversation turns user input into a conversation ID. Accepted
// forms: a raw ID ("C0123456789"), "#name", or a bare name. Name lookup
// tries the local cache first with the age gate disabled, since a stale
// name mapping is still better than an extra listing call, and falls back
// to a remote listing (which writes through) only when the cache has
// nothing.
func (uc *UseCases) ResolveConversation(ctx context.Context, ws types.WorkspaceID, input string) (types.ConversationID, error) {
	name := strings.TrimPrefix(input, "#")
	if looksLikeID(name, 'C', 'G', 'D') {
		return types.ConversationID(name), nil
	}

	if !uc.refresh {
		matches, err := uc.repo.Conversations().ResolveName(ctx, ws, name, interfaces.WithAnyAge())
		if err != nil {
			logging.From(ctx).Debug("local conversation resolution failed", "name", name, "error", err)
		} else if len(matches) > 0 {
			return conversationIDFromMatches(name, matches)
		}
	}

	// Not known locally: fetch the full listing, repopulate, and retry
	// against the fresh data
	convs, err := uc.slack.ListConversations(ctx, true)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list conversations for name resolution", goerr.V("name", name))
	}
	uc.cacheWrite(ctx, "conversations.put", func() error {
		return uc.repo.Conversations().Put(ctx, ws, convs)
	})

	var matches []*model.Conversation
	for _, conv := range convs {
		if strings.EqualFold(conv.Name, name) {
			matches = append(matches, conv)
		}
	}
	if len(matches) == 0 {
		return "", goerr.Wrap(ErrNameNotFound, "no conversation with this name",
			goerr.V("name", name), goerr.V("workspace_id", ws))
	}
	return conversationIDFromMatches(name, matches)
}

func conversationIDFromMatches(name string, matches []*model.Conversation) (types.ConversationID, error) {
	if len(matches) == 1 {
		return matches[0].ID, nil
	}

	candidates := make([]NameCandidate, len(matches))
	for i, conv := range matches {
		candidates[i] = NameCandidate{
			ID:    string(conv.ID),
			Label: "#" + conv.Name + " (" + conv.TypeLabel() + ")",
		}
	}
	return "", &AmbiguousNameError{Name: name, Candidates: candidates}
}

// ResolveUser turns user input into a user ID. Accepted forms: a raw ID
// ("U0123456789"), "@name", or a bare name matched against account names
// and profile display names.
func (uc *UseCases) ResolveUser(ctx context.Context, ws types.WorkspaceID, input string) (types.UserID, error) {
	name := strings.TrimPrefix(input, "@")
	if looksLikeID(name, 'U', 'W') {
		return types.UserID(name), nil
	}

	if !uc.refresh {
		matches, err := uc.repo.Users().ResolveName(ctx, ws, name, interfaces.WithAnyAge())
		if err != nil {
			logging.From(ctx).Debug("local user resolution failed", "name", name, "error", err)
		} else if len(matches) > 0 {
			return userIDFromMatches(name, matches)
		}
	}

	users, err := uc.slack.ListUsers(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list users for name resolution", goerr.V("name", name))
	}
	uc.cacheWrite(ctx, "users.put", func() error {
		return uc.repo.Users().Put(ctx, ws, users)
	})

	var matches []*model.User
	for _, user := range users {
		if strings.EqualFold(user.Name, name) || strings.EqualFold(user.Profile.DisplayName, name) {
			matches = append(matches, user)
		}
	}
	if len(matches) == 0 {
		return "", goerr.Wrap(ErrNameNotFound, "no user with this name",
			goerr.V("name", name), goerr.V("workspace_id", ws))
	}
	return userIDFromMatches(name, matches)
}

func userIDFromMatches(name string, matches []*model.User) (types.UserID, error) {
	if len(matches) == 1 {
		return matches[0].ID, nil
	}

	candidates := make([]NameCandidate, len(matches))
	for i, user := range matches {
		candidates[i] = NameCandidate{
			ID:    string(user.ID),
			Label: "@" + user.DisplayLabel(),
		}
	}
	return "", &AmbiguousNameError{Name: name, Candidates: candidates}
}

// ResolveUsers resolves several inputs concurrently, preserving order.
// One ambiguous or unknown name fails the whole batch.
func (uc *UseCases) ResolveUsers(ctx context.Context, ws types.WorkspaceID, inputs []string) ([]types.UserID, error) {
	ids := make([]types.UserID, len(inputs))
	eg, ctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		i, input := i, input
		eg.Go(func() error {
			id, err := uc.ResolveUser(ctx, ws, input)
			if err != nil {
				return err
			}
			ids[i] = id
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return ids, nil
}

// looksLikeID reports whether s has the shape of a Slack object ID: one
// of the kind prefixes followed by at least 8 uppercase alphanumerics
func looksLikeID(s string, prefixes ...byte) bool {
	if len(s) < 9 {
		return false
	}
	matched := false
	for _, p := range prefixes {
		if s[0] == p {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
