package flashsale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusCompleted, StatusCancelled))
	assert.False(t, CanTransition(StatusCancelled, StatusCompleted))
	assert.False(t, CanTransition(StatusCompleted, StatusCompleted))
	assert.False(t, CanTransition(StatusCancelled, StatusCancelled))
}
