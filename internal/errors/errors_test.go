package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := UnsupportedFormat("rocks.xls")
	wrapped := Wrap(base, "upload failed")

	assert.Equal(t, CodeUnsupportedFormat, GetCode(wrapped))
	assert.True(t, HasCode(wrapped, CodeUnsupportedFormat))
	assert.Contains(t, wrapped.Error(), "upload failed")
	assert.Contains(t, wrapped.Error(), "rocks.xls")
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	wrapped := Wrap(stderrors.New("boom"), "something")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("handler: %w", ColumnNotFound("Cu"))
	assert.Equal(t, CodeColumnNotFound, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestWithCode(t *testing.T) {
	cause := stderrors.New("missing")
	err := WithCode(CodeNotFound, cause)
	assert.Equal(t, CodeNotFound, GetCode(err))
	assert.Equal(t, "missing", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, WithCode(CodeNotFound, nil))
}

func TestWithCodeKeepsWrappedContext(t *testing.T) {
	err := WithCode(CodeDatabaseError, fmt.Errorf("failed to list analyses: %w", stderrors.New("connection refused")))
	assert.Equal(t, "failed to list analyses: connection refused", err.Error())

	inner := fmt.Errorf("loading sheet: %w", ColumnNotFound("Cu"))
	err = WithCode(CodeInvalidInput, inner)
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, inner.Error(), err.Error())
	assert.True(t, HasCode(err, CodeColumnNotFound))
}

func TestUnwrapCause(t *testing.T) {
	cause := stderrors.New("bad sheet")
	err := MalformedFile("failed to read workbook", cause)
	assert.ErrorIs(t, err, cause)
}
