package application

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrEmailTaken         = errors.New("User with this email already exists")
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrNotAuthenticated   = errors.New("Not authenticated")
	ErrInvalidToken       = errors.New("Invalid or expired token")
	ErrUserNotFound       = errors.New("User not found")
	ErrNoteNotFound       = errors.New("Note not found")
	ErrExportUnavailable  = errors.New("Export unavailable")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Client-facing validation messages.
const (
	MsgRegisterFieldsRequired = "Name, email, and password are required"
	MsgInvalidEmail           = "Invalid email format"
	MsgPasswordTooShort       = "Password must be at least 6 characters"
	MsgPasswordTooLong        = "Password must be at most 72 bytes"
	MsgLoginFieldsRequired    = "Email and password are required"
	MsgNoteIDRequired         = "Note id is required"
)
