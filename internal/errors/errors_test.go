package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	err := New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())

	err = Newf("formatted %s", "error")
	assert.NotNil(t, err)
	assert.Equal(t, "formatted error", err.Error())

	var appErr *ApplicationError
	assert.True(t, As(err, &appErr))
	assert.Equal(t, "formatted error", appErr.Error())
	assert.Equal(t, Unknown, appErr.Kind())
}

func TestWrapping(t *testing.T) {
	origErr := New("original error")
	wrappedErr := Wrap(origErr, "wrapped")
	assert.NotNil(t, wrappedErr)
	assert.Equal(t, "wrapped: original error", wrappedErr.Error())
	assert.Equal(t, origErr, Unwrap(wrappedErr))

	wrappedFormatted := Wrapf(origErr, "formatted %s", "wrapper")
	assert.Equal(t, "formatted wrapper: original error", wrappedFormatted.Error())

	assert.Nil(t, Wrap(nil, "wrapper"))
	assert.Nil(t, Wrapf(nil, "formatted %s", "wrapper"))

	deepWrapped := Wrap(wrappedErr, "deeper")
	assert.Equal(t, "deeper: wrapped: original error", deepWrapped.Error())
	assert.True(t, Is(wrappedErr, origErr))
	assert.True(t, Is(deepWrapped, origErr))

	// Two unrelated unknown-kind errors never match each other
	assert.False(t, Is(New("a"), New("a")))
}

func TestFileError(t *testing.T) {
	fileErr := NewFileError("cannot access", "/path/to/file", FileAccessDenied, nil)
	assert.Equal(t, "cannot access: /path/to/file", fileErr.Error())
	assert.Equal(t, "/path/to/file", fileErr.Path())
	assert.Equal(t, FileAccessDenied, fileErr.Kind())

	origErr := fmt.Errorf("permission denied")
	fileErr = NewFileError("cannot access", "/path/to/file", FileAccessDenied, origErr)
	assert.Equal(t, "cannot access: /path/to/file: permission denied", fileErr.Error())
	assert.Equal(t, origErr, Unwrap(fileErr))

	assert.Equal(t, "file not found", ErrFileNotFound.Error())
	notFoundErr := NewFileError("file not found", "/missing/file", FileNotFound, nil)
	assert.True(t, IsFileNotFound(notFoundErr))
	assert.False(t, IsFileNotFound(fileErr))
	assert.True(t, Is(notFoundErr, ErrFileNotFound))
}

func TestConfigError(t *testing.T) {
	configErr := NewConfigError("invalid value", "look_around", InvalidConfig, nil)
	assert.Equal(t, "invalid value: look_around", configErr.Error())
	assert.Equal(t, "look_around", configErr.Param())

	origErr := fmt.Errorf("value out of range")
	configErr = NewConfigError("invalid value", "look_around", InvalidConfig, origErr)
	assert.Equal(t, "invalid value: look_around: value out of range", configErr.Error())

	assert.True(t, IsInvalidConfig(configErr))
	assert.False(t, IsInvalidConfig(New("some other error")))
	assert.True(t, Is(configErr, ErrInvalidConfig))
}

func TestDecodeError(t *testing.T) {
	t.Run("document level", func(t *testing.T) {
		err := NewDecodeError("cannot open document", "/books/a.pdf", -1, Unreadable, fmt.Errorf("bad xref"))
		assert.Equal(t, "cannot open document: /books/a.pdf: bad xref", err.Error())
		assert.Equal(t, -1, err.Page())
		assert.True(t, IsUnreadable(err))
		assert.False(t, IsRenderFailed(err))
		assert.True(t, Is(err, ErrUnreadable))
	})

	t.Run("page level", func(t *testing.T) {
		err := NewDecodeError("cannot render page", "/books/a.pdf", 3, RenderFailed, nil)
		assert.Equal(t, "cannot render page: /books/a.pdf (page 3)", err.Error())
		assert.Equal(t, 3, err.Page())
		assert.Equal(t, "/books/a.pdf", err.Path())
		assert.True(t, IsRenderFailed(err))
		assert.True(t, Is(Wrap(err, "window fill"), ErrRenderFailed))
		assert.False(t, Is(err, ErrUnreadable))
	})
}

func TestSessionAndSearchErrors(t *testing.T) {
	assert.True(t, IsEmptySession(ErrEmptySession))
	assert.True(t, IsEmptySession(Wrapf(ErrEmptySession, "import of %d files", 2)))
	assert.False(t, IsEmptySession(ErrInvalidPage))

	searchErr := NewSearchError("search request timed out", "berserk", SearchTimeout, nil)
	assert.Equal(t, "berserk", searchErr.Query())
	assert.True(t, IsSearchTimeout(searchErr))
	assert.True(t, Is(searchErr, ErrSearchTimeout))

	dbErr := NewDatabaseError("insert failed", errors.New("locked")).WithOperation("record_import")
	assert.Equal(t, "insert failed: operation=record_import: locked", dbErr.Error())
	assert.True(t, IsDatabaseError(Wrap(dbErr, "history")))
}

func TestErrorChains(t *testing.T) {
	baseErr := errors.New("base error")
	fileErr := NewFileError("file error", "/path/to/file", FileNotFound, baseErr)
	decodeErr := NewDecodeError("decode error", "/path/to/file", -1, Unreadable, fileErr)
	configErr := NewConfigError("config error", "library.path", InvalidConfig, decodeErr)

	assert.Equal(t, "config error: library.path: decode error: /path/to/file: file error: /path/to/file: base error", configErr.Error())

	assert.True(t, Is(configErr, baseErr))
	assert.True(t, Is(configErr, fileErr))

	var fe *FileError
	assert.True(t, As(configErr, &fe))
	assert.Equal(t, "/path/to/file", fe.Path())

	assert.True(t, IsFileNotFound(configErr))
	assert.True(t, IsUnreadable(configErr))
	assert.True(t, IsInvalidConfig(configErr))
	assert.Equal(t, InvalidConfig, KindOf(configErr))
	assert.Equal(t, Unknown, KindOf(baseErr))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "unreadable", Unreadable.String())
	assert.Equal(t, "render_failed", RenderFailed.String())
	assert.Equal(t, "empty_session", EmptySession.String())
	assert.Equal(t, "unknown", ErrorKind(999).String())
}
