package models

// Event is broadcast through websockets.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// TypingPayload is the transient typing indicator, never persisted.
type TypingPayload struct {
	ConversationID string `json:"conversation_id"`
	UserID         int    `json:"user_id"`
	IsTyping       bool   `json:"is_typing"`
}

// ReadReceiptPayload notifies a sender that one of their messages was read.
type ReadReceiptPayload struct {
	ConversationID string `json:"conversation_id"`
	MessageID      int    `json:"message_id"`
	ReaderID       int    `json:"reader_id"`
}

// UnreadCountPayload carries a refreshed unread notification count.
type UnreadCountPayload struct {
	Count int `json:"count"`
}

// MessageDeletedPayload carries only the id of the deleted message.
type MessageDeletedPayload struct {
	ConversationID string `json:"conversation_id"`
	MessageID      int    `json:"message_id"`
}
