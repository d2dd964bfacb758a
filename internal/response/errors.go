package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Quiz session ──────────────────────────────────────────────────
	ErrInvalidLink      ErrCode = "INVALID_LINK"
	ErrAlreadyCompleted ErrCode = "ALREADY_COMPLETED"
	ErrNoActiveQuiz     ErrCode = "NO_ACTIVE_QUIZ"
	ErrQuizDisabled     ErrCode = "QUIZ_DISABLED"
	ErrInvalidUser      ErrCode = "INVALID_USER"

	// ─── Admin ─────────────────────────────────────────────────────────
	ErrUnauthorized       ErrCode = "UNAUTHORIZED"
	ErrAdminNotConfigured ErrCode = "ADMIN_NOT_CONFIGURED"
	ErrTokenAuthDisabled  ErrCode = "TOKEN_AUTH_DISABLED"
	ErrQuizNotFound       ErrCode = "QUIZ_NOT_FOUND"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation ErrCode = "VALIDATION_ERROR"
	ErrBadRequest ErrCode = "BAD_REQUEST"
	ErrInvalidID  ErrCode = "INVALID_ID"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrRequestTimeout ErrCode = "REQUEST_TIMEOUT"
	ErrInternal       ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Quiz session ──────────────────────────────────────────────────
	case ErrInvalidLink:
		return "This quiz link is invalid or has expired."
	case ErrAlreadyCompleted:
		return "You have already completed this quiz."
	case ErrNoActiveQuiz:
		return "There is no quiz available right now."
	case ErrQuizDisabled:
		return "This quiz is currently disabled."
	case ErrInvalidUser:
		return "Invalid user."

	// ─── Admin ─────────────────────────────────────────────────────────
	case ErrUnauthorized:
		return "Unauthorized."
	case ErrAdminNotConfigured:
		return "Admin access is not configured on this server."
	case ErrTokenAuthDisabled:
		return "Token login is disabled on this server. Use the admin password header."
	case ErrQuizNotFound:
		return "Quiz not found."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrBadRequest:
		return "The request could not be processed."
	case ErrInvalidID:
		return "Invalid ID format."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrRequestTimeout:
		return "The request took too long to complete."
	case ErrInternal:
		return "Internal server error."
	default:
		return "An unexpected error occurred."
	}
}
