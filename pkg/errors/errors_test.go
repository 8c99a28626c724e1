package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsCodeForErrorsIs(t *testing.T) {
	err := Clone(ErrNoticeNotFound, "notice 7 not found")
	wrapped := fmt.Errorf("handler: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNoticeNotFound))
	assert.False(t, errors.Is(wrapped, ErrValidation))
	assert.Equal(t, "notice 7 not found", err.Message)
	assert.Equal(t, "notice not found", ErrNoticeNotFound.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	cause := errors.New("boom")
	appErr := FromError(cause)

	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, FromError(nil))
}

func TestValidationJoinsMessages(t *testing.T) {
	err := Validation([]Violation{
		{Field: "title", Message: "title is required"},
		{Field: "endDateTime", Message: "endDateTime must be in the future"},
	})

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "title is required, endDateTime must be in the future", err.Message)
	assert.Len(t, err.Violations, 2)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Empty(t, ErrValidation.Violations)
}

func TestCloneWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := CloneWrap(ErrAttachmentWrite, cause, "")

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrAttachmentWrite)
	assert.Equal(t, "failed to save file: disk full", err.Error())
}
