package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(ConflictError("taken")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", NotFoundError("gone"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestErrorMessage(t *testing.T) {
	err := ValidationError("Rating must be between %d and %d", 1, 5)
	assert.Equal(t, "Rating must be between 1 and 5", err.Error())
}
