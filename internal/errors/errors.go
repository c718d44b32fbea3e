package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrConfig         ErrorType = "CONFIG"
	ErrSync           ErrorType = "SYNC"
	ErrSyncInProgress ErrorType = "SYNC_IN_PROGRESS"
	ErrRefNotFound    ErrorType = "REF_NOT_FOUND"
	ErrObjectNotFound ErrorType = "OBJECT_NOT_FOUND"
	ErrCorruptObject  ErrorType = "CORRUPT_OBJECT"
	ErrPathNotFound   ErrorType = "PATH_NOT_FOUND"
	ErrNotADirectory  ErrorType = "NOT_A_DIRECTORY"
	ErrRepoNotFound   ErrorType = "REPO_NOT_FOUND"
	ErrRepoNotSynced  ErrorType = "REPO_NOT_SYNCED"
	ErrInternal       ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// TypeOf returns the ErrorType of err, unwrapping as needed. Errors that are
// not AppErrors report ErrInternal.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrInternal
}

func isType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsRefNotFound checks if the error is a ref not found error
func IsRefNotFound(err error) bool {
	return isType(err, ErrRefNotFound)
}

// IsObjectNotFound checks if the error is an object not found error
func IsObjectNotFound(err error) bool {
	return isType(err, ErrObjectNotFound)
}

// IsCorruptObject checks if the error is a corrupt object error
func IsCorruptObject(err error) bool {
	return isType(err, ErrCorruptObject)
}

// IsPathNotFound checks if the error is a path not found error
func IsPathNotFound(err error) bool {
	return isType(err, ErrPathNotFound)
}

// IsNotADirectory checks if the error is a not-a-directory error
func IsNotADirectory(err error) bool {
	return isType(err, ErrNotADirectory)
}

// IsRepoNotFound checks if the error is a repository not found error
func IsRepoNotFound(err error) bool {
	return isType(err, ErrRepoNotFound)
}

// IsRepoNotSynced checks if the error is a repository not synced error
func IsRepoNotSynced(err error) bool {
	return isType(err, ErrRepoNotSynced)
}

// IsSyncInProgress checks if the error is a sync in progress error
func IsSyncInProgress(err error) bool {
	return isType(err, ErrSyncInProgress)
}

// IsNotFound checks if the error is any of the not-found style errors
func IsNotFound(err error) bool {
	switch TypeOf(err) {
	case ErrRefNotFound, ErrObjectNotFound, ErrPathNotFound, ErrRepoNotFound:
		return true
	}
	return false
}

// NewConfigError creates a new config error
func NewConfigError(message string, err error) *AppError {
	return New(ErrConfig, message, err)
}

// NewSyncError creates a new sync error
func NewSyncError(message string, err error) *AppError {
	return New(ErrSync, message, err)
}

// NewSyncInProgressError creates a new sync in progress error
func NewSyncInProgressError(name string) *AppError {
	return New(ErrSyncInProgress, fmt.Sprintf("sync already in progress for repository: %s", name), nil)
}

// NewRefNotFoundError creates a new ref not found error
func NewRefNotFoundError(ref string, err error) *AppError {
	return New(ErrRefNotFound, fmt.Sprintf("ref not found: %s", ref), err)
}

// NewObjectNotFoundError creates a new object not found error
func NewObjectNotFoundError(hash string, err error) *AppError {
	return New(ErrObjectNotFound, fmt.Sprintf("object not found: %s", hash), err)
}

// NewCorruptObjectError creates a new corrupt object error
func NewCorruptObjectError(hash string, err error) *AppError {
	return New(ErrCorruptObject, fmt.Sprintf("corrupt object: %s", hash), err)
}

// NewPathNotFoundError creates a new path not found error
func NewPathNotFoundError(path string) *AppError {
	return New(ErrPathNotFound, fmt.Sprintf("path not found: %s", path), nil)
}

// NewNotADirectoryError creates a new not-a-directory error
func NewNotADirectoryError(path string) *AppError {
	return New(ErrNotADirectory, fmt.Sprintf("not a directory: %s", path), nil)
}

// NewRepoNotFoundError creates a new repository not found error
func NewRepoNotFoundError(name string) *AppError {
	return New(ErrRepoNotFound, fmt.Sprintf("repository not found: %s", name), nil)
}

// NewRepoNotSyncedError creates a new repository not synced error
func NewRepoNotSyncedError(name string) *AppError {
	return New(ErrRepoNotSynced, fmt.Sprintf("repository has not been synced yet: %s", name), nil)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return New(ErrInternal, message, err)
}
