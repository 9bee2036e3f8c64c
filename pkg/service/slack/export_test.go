package slack

// Export internal helpers for testing
var (
	UserFromAPI         = userFromAPI
	ConversationFromAPI = conversationFromAPI
	MessageFromAPI      = messageFromAPI
	IsNotFound          = isNotFound
)
