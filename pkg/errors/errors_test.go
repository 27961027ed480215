package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrSessionExpired, "session abc expired")

	assert.True(t, errors.Is(err, ErrSessionExpired))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "session abc expired", err.Error())
	assert.Equal(t, "editing session not found or expired", ErrSessionExpired.Message)
}

func TestWrapUnwraps(t *testing.T) {
	err := Wrap(sql.ErrNoRows, ErrNotFound.Code, http.StatusNotFound, "section not found")

	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "section not found: sql: no rows in result set", err.Error())
}

func TestFromErrorAndHasCode(t *testing.T) {
	plain := errors.New("boom")
	normalised := FromError(plain)
	assert.Equal(t, ErrInternal.Code, normalised.Code)
	assert.Equal(t, http.StatusInternalServerError, normalised.Status)

	wrapped := fmt.Errorf("commit: %w", Clone(ErrSlotUnavailable, ""))
	assert.True(t, HasCode(wrapped, ErrSlotUnavailable.Code))
	assert.False(t, HasCode(nil, ErrSlotUnavailable.Code))
	assert.Nil(t, FromError(nil))
}
