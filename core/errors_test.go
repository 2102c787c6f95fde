package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsShutdown(t *testing.T) {
	err := NewShutdownError(errors.New("connection is bad"))
	assert.True(t, IsShutdown(err))
	assert.True(t, IsShutdown(errors.Wrap(err, "getting item")))
	assert.Contains(t, err.Error(), "shutting down")

	assert.False(t, IsShutdown(errors.New("boom")))
	assert.False(t, IsShutdown(nil))
}
