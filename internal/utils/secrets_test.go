package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateJWTSecrets(t *testing.T) {
	access, refresh, err := GenerateJWTSecrets()
	require.NoError(t, err)

	assert.Len(t, access, 64)
	assert.Len(t, refresh, 64)
	assert.NotEqual(t, access, refresh)
}
