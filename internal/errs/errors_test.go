package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrKindConnectionFailed, "ping failed", cause)

	assert.True(t, IsConnectionFailed(err))
	assert.False(t, IsTimeout(err))
	assert.True(t, errors.Is(err, cause))

	// A further fmt wrap must not hide the kind.
	outer := fmt.Errorf("during setup: %w", err)
	assert.True(t, IsConnectionFailed(outer))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "[not_found] no such table", New(ErrKindNotFound, "no such table").Error())
	assert.Equal(t, "[timeout] count query: context deadline exceeded",
		Wrap(ErrKindTimeout, "count query", errors.New("context deadline exceeded")).Error())
}

func TestKindOfForeignErrors(t *testing.T) {
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}
