package orchestrator

import "errors"

var (
	// ErrEmptyMessage means the message was empty after trimming.
	ErrEmptyMessage = errors.New("orchestrator: message is empty")

	// ErrMessageTooShort means an opening message was below the minimum
	// length for starting a conversation.
	ErrMessageTooShort = errors.New("orchestrator: message too short to start a conversation")

	// ErrConversationNotFound means the referenced conversation does not
	// exist.
	ErrConversationNotFound = errors.New("orchestrator: conversation not found")

	// ErrConversationClosed means the conversation was killed by an admin
	// and accepts no new messages.
	ErrConversationClosed = errors.New("orchestrator: conversation is closed")
)
