package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesThroughWrapping(t *testing.T) {
	err := New(InsufficientFunds, "insufficient funds")
	wrapped := fmt.Errorf("contribute: %w", err)

	assert.True(t, Is(wrapped, InsufficientFunds))
	assert.False(t, Is(wrapped, NotFound))
	assert.Equal(t, InsufficientFunds, KindOf(wrapped))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(fmt.Errorf("plain failure")))
	assert.False(t, Is(nil, NotFound))
}

func TestMessageIsClientVisible(t *testing.T) {
	err := New(NotFound, "participant email not found: %s", "x@y.z")
	assert.Equal(t, "participant email not found: x@y.z", err.Error())
	assert.Equal(t, "not_found", err.Kind.String())
}
