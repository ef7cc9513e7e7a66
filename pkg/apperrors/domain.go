package apperrors

import "net/http"

// Factories and predefined errors for the marketplace domain.

// ErrNotFound converts a repository miss (gorm.ErrRecordNotFound and the
// repo sentinel errors) into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict reports a concurrent-modification race. The losing request
// observes state that changed between its precondition check and its write.
func ErrConflict(domain, message string) *AppError {
	return New(CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidState reports an operation that is not legal for the entity's
// current status, e.g. accepting an already-rejected proposal.
func ErrInvalidState(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusConflict)
}

// ErrUpstream reports a payment-gateway or other collaborator failure.
func ErrUpstream(err error, domain, message string) *AppError {
	return Wrap(err, CodeExternalServiceError, domain, message, http.StatusServiceUnavailable)
}

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrNotProjectParticipant = New(
	CodeForbidden,
	"project",
	"You are not a participant of this project",
	http.StatusForbidden,
)
