package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"okurmen-backend/internal/repository"
)

// Kind classifies an AppError for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindTimeExpired
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTimeExpired:
		return "time_expired"
	case KindStoreUnavailable:
		return "store_unavailable"
	}
	return "internal"
}

// AppError carries a client-safe Message; Err holds the internal cause and
// is never shown to clients.
type AppError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// Is matches another *AppError with the same kind and message, so the
// sentinels below work with errors.Is even when wrapped.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

var (
	ErrTimeExpired        = &AppError{Kind: KindTimeExpired, Message: "Время теста истекло"}
	ErrAlreadySubmitted   = &AppError{Kind: KindConflict, Message: "Тест уже пройден для этого уровня"}
	ErrInvalidToken       = &AppError{Kind: KindUnauthenticated, Message: "Invalid or expired token"}
	ErrInvalidCredentials = &AppError{Kind: KindValidation, Message: "Неверные учетные данные"}
	ErrUserExists         = &AppError{Kind: KindConflict, Message: "Пользователь с таким номером телефона уже существует"}
	ErrForbidden          = &AppError{Kind: KindForbidden, Message: "Access denied"}
	ErrAdminCannotTest    = &AppError{Kind: KindForbidden, Message: "Админ тест тапшыра албайт"}
	ErrNoSession          = &AppError{Kind: KindValidation, Message: "Test session was not started"}
)

func Validation(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(what string) *AppError {
	return &AppError{Kind: KindNotFound, Message: what + " not found"}
}

// KindOf returns the kind of the first AppError in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// storeError classifies an error returned by a repository. what names the
// entity for NotFound messages; op is recorded with the cause.
func storeError(op, what string, err error) error {
	if err == nil {
		return nil
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return NotFound(what)
	case errors.Is(err, repository.ErrDuplicate):
		return &AppError{Kind: KindConflict, Message: what + " already exists", Err: err}
	case isUnavailable(err):
		return &AppError{Kind: KindStoreUnavailable, Message: "Service temporarily unavailable", Err: fmt.Errorf("%s: %w", op, err)}
	}
	return &AppError{Kind: KindInternal, Message: "Server error", Err: fmt.Errorf("%s: %w", op, err)}
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
