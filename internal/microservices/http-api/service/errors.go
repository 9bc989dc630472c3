package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"yamdb/internal/access"
	"yamdb/internal/microservices/http-api/repository"
)

var (
	ErrNotFound                = errors.New("not found")
	ErrPermissionDenied        = errors.New("you do not have permission to perform this action")
	ErrUnauthenticated         = errors.New("authentication credentials were not provided or are invalid")
	ErrInvalidConfirmationCode = errors.New("confirmation code is invalid or expired")
	ErrTooManyRequests         = errors.New("too many confirmation code requests, try again later")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidToken            = errors.New("invalid token")
)

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// OrNil returns nil when no field was rejected.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// notFound maps a missing row onto ErrNotFound and passes other errors through.
func notFound(err error, what string) error {
	if repository.IsNotFound(err) {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return err
}

// authorize applies an access rule. A denied anonymous caller is told to
// authenticate, a denied authenticated caller is refused.
func authorize(rule access.Rule, method string, actor *access.Actor, isOwner bool) error {
	role := access.RoleOf(actor)
	if rule(method, role, isOwner) {
		return nil
	}
	if !role.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return ErrPermissionDenied
}
