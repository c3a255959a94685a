package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNilIsNil(t *testing.T) {
	assert.NoError(t, Wrap(CodeDBSave, nil))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(CodeIOBackup, fmt.Errorf("write backup: %w", cause))
	require.Error(t, err)

	var ae *Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, CodeIOBackup, ae.Code)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "PJ-IO01")
	assert.Contains(t, err.Error(), "disk full")
}

func TestMessageFallsBackForUnknownCode(t *testing.T) {
	assert.NotEmpty(t, Message(CodeDBVacuum))
	assert.Equal(t, "An unexpected error occurred.", Message(Code("PJ-XX99")))
}
