// Package service holds the authentication use cases.  Handlers translate
// the error kinds defined here into HTTP status codes.
package service

// Kind classifies a service failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthentication:
		return "authentication"
	default:
		return "internal"
	}
}

// Error is returned by every service operation.  Message is safe to show
// to the client except for KindInternal, whose cause is in Err.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the kind sentinels below, so errors.Is(err, ErrConflict)
// holds for any conflict.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// Kind sentinels for errors.Is.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrConflict       = &Error{Kind: KindConflict}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrInternal       = &Error{Kind: KindInternal}
)

func validationError(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func internalError(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// errInvalidCredentials is the single failure returned for both an unknown
// email and a wrong password.
func errInvalidCredentials() error {
	return &Error{Kind: KindAuthentication, Message: "invalid email or password"}
}

func errEmailTaken() error {
	return &Error{Kind: KindConflict, Message: "email already registered"}
}
