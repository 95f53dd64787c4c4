package auth

import "errors"

// Store errors.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrPendingNotFound = errors.New("pending account not found")
	ErrPendingExists   = errors.New("pending account already exists")
)

// Token errors.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Lifecycle errors. Their messages are returned to clients as-is.
var (
	ErrValidation           = errors.New("invalid input")
	ErrAlreadyRegistered    = errors.New("already registered")
	ErrCheckEmail           = errors.New("check your email")
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrIncorrectPassword    = errors.New("incorrect password")
	ErrNoSession            = errors.New("no session")
	ErrEmailNotFound        = errors.New("email not found")
	ErrInvalidResetLink     = errors.New("invalid or expired link")
	ErrUpstream             = errors.New("upstream failure")
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindExpired
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindExpired:
		return "expired"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// IsClientError reports whether the kind is caused by the caller's input.
func (k Kind) IsClientError() bool {
	return k != KindInternal && k != KindUpstream
}

func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrAlreadyRegistered), errors.Is(err, ErrCheckEmail),
		errors.Is(err, ErrUserExists), errors.Is(err, ErrPendingExists):
		return KindConflict
	case errors.Is(err, ErrIncorrectCredentials), errors.Is(err, ErrEmailNotFound),
		errors.Is(err, ErrUserNotFound), errors.Is(err, ErrPendingNotFound):
		return KindNotFound
	case errors.Is(err, ErrIncorrectPassword), errors.Is(err, ErrNoSession),
		errors.Is(err, ErrTokenInvalid):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidResetLink), errors.Is(err, ErrTokenExpired):
		return KindExpired
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	default:
		return KindInternal
	}
}
