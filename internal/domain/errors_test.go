package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidation(t *testing.T) {
	err := fmt.Errorf("create campaign: %w", NewValidationError("min_slots"))

	assert.True(t, IsValidation(err, "min_slots"))
	assert.True(t, IsValidation(err, ""))
	assert.False(t, IsValidation(err, "min_reward"))
	assert.False(t, IsValidation(ErrNotFound, ""))
	assert.Equal(t, "create campaign: validation error: min_slots", err.Error())
}

func TestSubmissionStatusTerminal(t *testing.T) {
	assert.False(t, SubmissionPending.Terminal())
	assert.True(t, SubmissionApproved.Terminal())
	assert.True(t, SubmissionRejected.Terminal())
}
