package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrPersistenceUnavailable, "store down").
		WithCause(root).
		WithHTTPStatus(503).
		WithRetryable(true).
		WithField(FieldPhone)

	assert.Equal(t, ErrPersistenceUnavailable, GetErrorCode(err))
	assert.True(t, IsRetryable(err))
	assert.True(t, errors.Is(err, root))
	assert.Equal(t, "phone", err.Field)
	assert.Contains(t, err.Error(), "store down")
}

type coderErr struct{}

func (coderErr) Error() string { return "coder" }
func (coderErr) ToTypesError() *Error {
	return NewError(ErrDuplicateRecord, "dup")
}

func TestAsError_FollowsWrapsAndCoders(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("outer: %w", NewError(ErrSessionBusy, "busy"))
	assert.True(t, IsErrorCode(wrapped, ErrSessionBusy))

	viaCoder := fmt.Errorf("outer: %w", coderErr{})
	te, ok := AsError(viaCoder)
	assert.True(t, ok)
	assert.Equal(t, ErrDuplicateRecord, te.Code)

	_, ok = AsError(errors.New("plain"))
	assert.False(t, ok)
	assert.Equal(t, ErrorCode(""), GetErrorCode(nil))
}
