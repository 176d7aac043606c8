package messaging

import "errors"

// Domain-level errors for messaging behaviors
var (
	ErrNotParticipant       = errors.New("messaging: user is not a participant in the conversation")
	ErrConversationNotFound = errors.New("messaging: conversation not found")
	ErrMessageNotFound      = errors.New("messaging: message not found")
	ErrForbidden            = errors.New("messaging: operation not permitted for this user")
	ErrValidation           = errors.New("messaging: validation failed")
)
