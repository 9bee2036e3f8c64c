package types

import "time"

// ObjectKind enumerates the cached entity kinds
type ObjectKind string

const (
	KindUser         ObjectKind = "users"
	KindConversation ObjectKind = "conversations"
	KindMessage      ObjectKind = "messages"
)

// AllObjectKinds returns all cached entity kinds
func AllObjectKinds() []ObjectKind {
	return []ObjectKind{
		KindUser,
		KindConversation,
		KindMessage,
	}
}

// IsValid checks if the object kind is valid
func (k ObjectKind) IsValid() bool {
	switch k {
	case KindUser, KindConversation, KindMessage:
		return true
	default:
		return false
	}
}

// String returns the string representation of the object kind
func (k ObjectKind) String() string {
	return string(k)
}

// Per-kind cache TTLs. A record is fresh iff now - cached_at < TTL.
// Stale records are treated as absent by normal reads but stay in the
// store for name resolution with an age override.
const (
	UserTTL         = time.Hour
	ConversationTTL = 30 * time.Minute
	MessageTTL      = 5 * time.Minute
)

// TTL returns the default freshness window for the kind
func (k ObjectKind) TTL() time.Duration {
	switch k {
	case KindUser:
		return UserTTL
	case KindConversation:
		return ConversationTTL
	case KindMessage:
		return MessageTTL
	default:
		return 0
	}
}
