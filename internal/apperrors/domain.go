package apperrors

var (
	// Domain errors returned by the core services.
	ErrUserNotFound         = NotFound("user not found")
	ErrRequestNotFound      = NotFound("friend request not found")
	ErrRequestSettled       = NotFound("friend request already settled")
	ErrConversationNotFound = NotFound("conversation not found")
	ErrNotFriends           = NotFound("users are not friends")
	ErrHandleTaken          = AlreadyExists("handle is already taken")
	ErrAlreadyFriends       = AlreadyExists("users are already friends")
	ErrRequestPending       = AlreadyExists("friend request already pending")
	ErrSelfReference        = SelfReference("a user cannot act on its own handle here")
	ErrRequestsClosed       = PolicyDenied("user does not accept friend requests")
	ErrMessagingClosed      = PolicyDenied("user does not accept messages")
	ErrNotRecipient         = Forbidden("only the recipient may act on this request")
	ErrNotSender            = Forbidden("only the sender may act on this request")
	ErrNotParticipant       = Forbidden("not a conversation participant")
	ErrInvalidHandle        = InvalidInput("handle must be at least 3 characters: lowercase letters, digits, dots and underscores")
	ErrDisplayNameRequired  = InvalidInput("display name is required")
	ErrEmptyMessage         = InvalidInput("message body is required")
	ErrPasswordTooShort     = InvalidInput("password must be at least 6 characters")
	ErrPasswordMismatch     = InvalidInput("password confirmation does not match")
	ErrWrongPassword        = Unauthenticated("wrong password")
	ErrNoSession            = Unauthenticated("no active session")
	ErrNoAvatarStorage      = Internal("avatar storage is not configured")
)

// ErrStorage tags a persistence gateway failure. It is surfaced, never
// retried: guard checks make re-issuing the operation safe for callers.
func ErrStorage(cause error) error {
	return Wrap(CodeStorageFailure, "persistence gateway failure", cause)
}
