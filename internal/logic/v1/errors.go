// Package v1 provides the business logic for API version 1: authentication,
// users, posts and comments.
//
// Error Handling:
// Every sentinel error in this package carries an ErrorKind. Services wrap
// them with context using fmt.Errorf("%w"); handlers pick a status code by
// switching on KindOf(err), never on the message.
//
// Example Usage:
//
//	if row == nil {
//	    return nil, fmt.Errorf("get user %d: %w", id, ErrUserNotFound)
//	}
//
// Error Checking (in handlers):
//
//	switch logicv1.KindOf(err) {
//	case logicv1.KindNotFound:
//	    c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
//	case logicv1.KindDuplicate:
//	    c.JSON(http.StatusConflict, gin.H{"message": "Email already exists"})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
//	}
package v1

import "errors"

// ErrorKind classifies a failure for transport mapping.
type ErrorKind int

const (
	// KindStorage is an opaque internal failure. HTTP Status: 500.
	KindStorage ErrorKind = iota
	// KindValidation is malformed input. HTTP Status: 400.
	KindValidation
	// KindDuplicate is a unique constraint conflict. HTTP Status: 400 or 409.
	KindDuplicate
	// KindAuthentication is bad credentials or a missing session. HTTP Status: 401.
	KindAuthentication
	// KindAuthorization is a role mismatch. HTTP Status: 403.
	KindAuthorization
	// KindNotFound is a missing resource. HTTP Status: 404.
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	default:
		return "storage"
	}
}

// Error is a sentinel error tagged with a kind.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// KindOf returns the kind of the first tagged error in err's chain.
// Untagged errors are KindStorage.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// MessageOf returns the client-safe message of the first tagged error in
// err's chain, or fallback for untagged errors.
func MessageOf(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return fallback
}

// Sentinel errors. Wrap with fmt.Errorf("%w") when returned.
var (
	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = newError(KindAuthentication, "Invalid email or password")

	// ErrEmailExists indicates the email already belongs to a user.
	ErrEmailExists = newError(KindDuplicate, "User with this email already exists")

	// ErrSlugExists indicates another post already uses the slug.
	ErrSlugExists = newError(KindDuplicate, "Post with this slug already exists")

	ErrUserNotFound = newError(KindNotFound, "User not found")

	ErrPostNotFound = newError(KindNotFound, "Post not found")

	// ErrCommentNotFound also covers comments owned by someone else, so
	// existence is not revealed.
	ErrCommentNotFound = newError(KindNotFound, "Comment not found")

	// ErrNothingToUpdate indicates an update payload with no fields.
	ErrNothingToUpdate = newError(KindValidation, "At least one field is required for update")

	// ErrInvalidPage indicates out-of-range pagination parameters.
	ErrInvalidPage = newError(KindValidation, "page must be >= 1 and limit between 1 and 100")
)
