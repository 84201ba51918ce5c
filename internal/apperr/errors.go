package apperr

import (
	"errors"
	"fmt"
)

// Kind — категория отказа, которую HTTP-слой превращает в статус-код.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindAlreadyExists
	KindPermissionDenied
	KindPolicyViolation
	KindBlocked
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindPermissionDenied:
		return "permission_denied"
	case KindPolicyViolation:
		return "policy_violation"
	case KindBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Error — типизированный отказ с человекочитаемой деталью.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string { return e.Detail }

// New создает ошибку заданной категории.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, format, args...)
}

func AlreadyExists(format string, args ...interface{}) *Error {
	return New(KindAlreadyExists, format, args...)
}

func PermissionDenied(format string, args ...interface{}) *Error {
	return New(KindPermissionDenied, format, args...)
}

func PolicyViolation(format string, args ...interface{}) *Error {
	return New(KindPolicyViolation, format, args...)
}

func Blocked(format string, args ...interface{}) *Error {
	return New(KindBlocked, format, args...)
}

// KindOf возвращает категорию ошибки или KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is проверяет, относится ли ошибка к указанной категории.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
