package domain

import (
	"errors"
	"fmt"
)

// ErrKind groups error codes by how a client should react; the HTTP layer
// turns each kind into exactly one status.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"
	KindAuth           ErrKind = "auth"
	KindForbidden      ErrKind = "forbidden"
	KindNotFound       ErrKind = "not_found"
	KindRateLimited    ErrKind = "rate_limited"
	KindInfrastructure ErrKind = "infrastructure"
	KindInternal       ErrKind = "internal"
)

// Error is returned by every layer below the handlers. Code is part of the
// public contract; Message is safe to show; Cause is only ever logged.
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + " (" + e.Code + "): " + e.Message
	if e.Cause == nil {
		return msg
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	e := New(kind, code, msg)
	e.Cause = cause
	return e
}

// WithMeta attaches key/value pairs given as alternating arguments.
func WithMeta(err *Error, kv ...string) *Error {
	if len(kv) < 2 {
		return err
	}
	if err.Meta == nil {
		err.Meta = make(map[string]string, len(kv)/2)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		err.Meta[kv[i]] = kv[i+1]
	}
	return err
}

func as(err error) (*Error, bool) {
	var de *Error
	ok := errors.As(err, &de)
	return de, ok
}

// Is reports whether err is a domain error carrying code.
func Is(err error, code string) bool {
	de, ok := as(err)
	return ok && de.Code == code
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind ErrKind) bool {
	de, ok := as(err)
	return ok && de.Kind == kind
}

// Validation errors (400)

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), "field", field)
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), "field", field, "reason", reason)
}

func ErrWeakPassword(reason string) *Error {
	return WithMeta(New(KindValidation, "weak_password", "password does not meet requirements"), "reason", reason)
}

func ErrInvalidRole(role string) *Error {
	return WithMeta(New(KindValidation, "invalid_role", "invalid role"), "role", role)
}

// The public contract answers a duplicate registration with 400, not 409.
func ErrEmailAlreadyExists() *Error {
	return New(KindValidation, "email_already_exists", "user already exists")
}

// Unknown email and wrong password share this error so login cannot be
// used to probe which addresses are registered.
func ErrInvalidCredentials() *Error {
	return New(KindValidation, "invalid_credentials", "invalid credentials")
}

// Verification links are user-facing, so a bad one is a 400 rather than a 401.
func ErrVerifyTokenInvalid() *Error {
	return New(KindValidation, "verify_token_invalid", "invalid or expired token")
}

// Auth errors (401)

func ErrTokenMissing() *Error {
	return New(KindAuth, "token_missing", "no token provided")
}

// ErrTokenInvalid covers malformed, wrongly signed and expired tokens alike.
func ErrTokenInvalid() *Error {
	return New(KindAuth, "token_invalid", "invalid token")
}

// Forbidden (403)

// ErrRefreshTokenInvalid covers bad signature, expiry and "not the current
// session token" without distinguishing them.
func ErrRefreshTokenInvalid() *Error {
	return New(KindForbidden, "refresh_token_invalid", "invalid refresh token")
}

func ErrForbidden() *Error {
	return New(KindForbidden, "forbidden", "forbidden")
}

func ErrInsufficientRole(required string) *Error {
	return WithMeta(New(KindForbidden, "insufficient_role", "insufficient role"), "required", required)
}

func ErrEmailNotVerified() *Error {
	return New(KindForbidden, "email_not_verified", "email not verified")
}

// Not Found (404)

func ErrUserNotFound() *Error {
	return New(KindNotFound, "user_not_found", "user not found")
}

// Rate limit (429)

func ErrRateLimited(scope string) *Error {
	return WithMeta(New(KindRateLimited, "rate_limited", "too many requests"), "scope", scope)
}

// Infrastructure / internal (5xx)

func ErrDBUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "db_unavailable", "database unavailable", cause)
}

func ErrPublishFailed(cause error) *Error {
	return Wrap(KindInfrastructure, "publish_failed", "message broker unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "token signing failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}
