package spyder_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fwojciec/spyder"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := spyder.Errorf(spyder.ECONFIG, "invalid worker %q", "ftp")

	assert.Equal(t, spyder.ECONFIG, spyder.ErrorCode(err))
	assert.Equal(t, "invalid worker \"ftp\"", spyder.ErrorMessage(err))
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := fmt.Errorf("embed: %w", spyder.WrapError(spyder.EMODEL, cause, "model %q unavailable", "all-minilm"))

	assert.Equal(t, spyder.EMODEL, spyder.ErrorCode(err))
	assert.Equal(t, "model \"all-minilm\" unavailable: connection refused", spyder.ErrorMessage(err))
	assert.ErrorIs(t, err, cause)
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, spyder.ErrorCode(nil))
}

func TestErrorCode_PlainError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, spyder.EINTERNAL, spyder.ErrorCode(errors.New("boom")))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, spyder.ErrorMessage(nil))
}

func TestIsRecoverable(t *testing.T) {
	t.Parallel()

	assert.True(t, spyder.IsRecoverable(spyder.Errorf(spyder.EFETCH, "HTTP 404")))
	assert.True(t, spyder.IsRecoverable(spyder.Errorf(spyder.EUNREADABLE, "bad pdf")))
	assert.False(t, spyder.IsRecoverable(spyder.Errorf(spyder.ECONFIG, "missing root")))
	assert.False(t, spyder.IsRecoverable(errors.New("boom")))
}
