// Package errors provides standardized error handling for the Fiapo reader.
// It defines common error types, constants, and helper functions for consistent
// error creation, wrapping, and handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	// Config error kinds
	InvalidConfig
	ConfigNotFound
	// Decode error kinds
	Unreadable
	RenderFailed
	// Session error kinds
	EmptySession
	InvalidPage
	// Search error kinds
	SearchTimeout
	SearchFailed
	SearchNoResults
	// Database error kinds
	DatabaseOperationFailed
)

// String returns a short name for the kind, used in log fields.
func (k ErrorKind) String() string {
	switch k {
	case FileNotFound:
		return "file_not_found"
	case FileAccessDenied:
		return "file_access_denied"
	case InvalidPath:
		return "invalid_path"
	case InvalidConfig:
		return "invalid_config"
	case ConfigNotFound:
		return "config_not_found"
	case Unreadable:
		return "unreadable"
	case RenderFailed:
		return "render_failed"
	case EmptySession:
		return "empty_session"
	case InvalidPage:
		return "invalid_page"
	case SearchTimeout:
		return "search_timeout"
	case SearchFailed:
		return "search_failed"
	case SearchNoResults:
		return "search_no_results"
	case DatabaseOperationFailed:
		return "database_operation_failed"
	default:
		return "unknown"
	}
}

// Common error constants for frequently occurring errors. They compare by kind
// through Is, so wrapped or path-specific errors of the same kind match them.
var (
	ErrFileNotFound  = NewFileError("file not found", "", FileNotFound, nil)
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrUnreadable    = NewDecodeError("document is unreadable", "", -1, Unreadable, nil)
	ErrRenderFailed  = NewDecodeError("page failed to render", "", -1, RenderFailed, nil)
	ErrEmptySession  = NewSessionError("no readable pages in selection", EmptySession, nil)
	ErrInvalidPage   = NewSessionError("page out of range", InvalidPage, nil)
	ErrSearchTimeout = NewSearchError("search request timed out", "", SearchTimeout, nil)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// Is matches any application error of the same, known kind.
func (e *ApplicationError) Is(target error) bool {
	k, ok := target.(interface{ Kind() ErrorKind })
	if !ok || e.kind == Unknown {
		return false
	}
	return k.Kind() == e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// DecodeError represents a failure of the document decoding backend.
// Page is -1 when the failure is not tied to a single page.
type DecodeError struct {
	ApplicationError
	path string
	page int
}

// NewDecodeError creates a new decode error
func NewDecodeError(msg string, path string, page int, kind ErrorKind, err error) *DecodeError {
	return &DecodeError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
		page: page,
	}
}

// Error returns the decode error message
func (e *DecodeError) Error() string {
	if e.path == "" {
		return e.ApplicationError.Error()
	}
	where := e.path
	if e.page >= 0 {
		where = fmt.Sprintf("%s (page %d)", e.path, e.page)
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.msg, where, e.err)
	}
	return fmt.Sprintf("%s: %s", e.msg, where)
}

// Path returns the document path associated with the error
func (e *DecodeError) Path() string {
	return e.path
}

// Page returns the 0-based page index, or -1
func (e *DecodeError) Page() int {
	return e.page
}

// SessionError represents errors raised while building or navigating a session
type SessionError struct {
	ApplicationError
}

// NewSessionError creates a new session error
func NewSessionError(msg string, kind ErrorKind, err error) *SessionError {
	return &SessionError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
	}
}

// SearchError represents errors from the remote catalog search
type SearchError struct {
	ApplicationError
	query string
}

// NewSearchError creates a new search error
func NewSearchError(msg string, query string, kind ErrorKind, err error) *SearchError {
	return &SearchError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		query: query,
	}
}

// Query returns the search query associated with the error
func (e *SearchError) Query() string {
	return e.query
}

// DatabaseError represents errors related to database operations
type DatabaseError struct {
	ApplicationError
	operation string
}

// NewDatabaseError creates a new database error
func NewDatabaseError(msg string, err error) *DatabaseError {
	return &DatabaseError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: DatabaseOperationFailed,
		},
	}
}

// WithOperation adds operation information to the database error
func (e *DatabaseError) WithOperation(operation string) *DatabaseError {
	e.operation = operation
	return e
}

// Error returns the database error message
func (e *DatabaseError) Error() string {
	if e.operation != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: operation=%s: %v", e.msg, e.operation, e.err)
		}
		return fmt.Sprintf("%s: operation=%s", e.msg, e.operation)
	}
	return e.ApplicationError.Error()
}

// Operation returns the database operation associated with the error
func (e *DatabaseError) Operation() string {
	return e.operation
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the first application error in err's chain
func KindOf(err error) ErrorKind {
	for err != nil {
		if k, ok := err.(interface{ Kind() ErrorKind }); ok && k.Kind() != Unknown {
			return k.Kind()
		}
		err = errors.Unwrap(err)
	}
	return Unknown
}

// hasKind reports whether any application error in err's chain is of kind
func hasKind(err error, kind ErrorKind) bool {
	for err != nil {
		if k, ok := err.(interface{ Kind() ErrorKind }); ok && k.Kind() == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	return hasKind(err, FileNotFound)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	return hasKind(err, InvalidConfig)
}

// IsUnreadable checks if the error means a document could not be opened
func IsUnreadable(err error) bool {
	return hasKind(err, Unreadable)
}

// IsRenderFailed checks if the error means a single page failed to render
func IsRenderFailed(err error) bool {
	return hasKind(err, RenderFailed)
}

// IsEmptySession checks if the error means nothing in an import was readable
func IsEmptySession(err error) bool {
	return hasKind(err, EmptySession)
}

// IsSearchTimeout checks if the error is a search timeout
func IsSearchTimeout(err error) bool {
	return hasKind(err, SearchTimeout)
}

// IsDatabaseError checks if the error is a database error
func IsDatabaseError(err error) bool {
	var dbErr *DatabaseError
	return errors.As(err, &dbErr)
}
