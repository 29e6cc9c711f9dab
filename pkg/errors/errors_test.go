package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := Validation("Subject cannot be empty.")
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "Subject cannot be empty.", err.Error())
	assert.True(t, IsValidation(err))
	assert.False(t, IsNotFound(err))
}

func TestNotFoundError(t *testing.T) {
	err := NotFound("No student found with roll number R9.")
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, IsNotFound(err))
}

func TestFromErrorNormalisesUnknown(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := FromError(cause)
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.ErrorIs(t, err, cause)
}

func TestFromErrorPreservesTyped(t *testing.T) {
	wrapped := Wrap(stderrors.New("boom"), ErrValidation.Code, ErrValidation.Status, "invalid")
	assert.Equal(t, wrapped, FromError(wrapped))
	assert.Nil(t, FromError(nil))
}
