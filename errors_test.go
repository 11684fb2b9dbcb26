package simplefs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError__WithMessageUnwrapsToSentinel(t *testing.T) {
	wrapped := ErrNoSpace.WithMessage("no free inodes")
	assert.ErrorIs(t, wrapped, ErrNoSpace)
	assert.Contains(t, wrapped.Error(), "no free inodes")
}

func TestError__WrapErrorUnwrapsToCause(t *testing.T) {
	cause := errors.New("boom")
	wrapped := ErrDiskIO.WrapError(cause)

	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestError__SentinelsAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, ErrNoSpace.WithMessage("x"), ErrDiskIO)
}
