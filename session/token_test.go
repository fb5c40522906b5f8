package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	t1, err := NewToken()
	require.NoError(t, err)
	t2, err := NewToken()
	require.NoError(t, err)

	assert.Len(t, t1, tokenBytes*2, "token is hex-encoded")
	assert.NotEqual(t, t1, t2, "tokens must be unique")
	assert.Regexp(t, "^[0-9a-f]+$", t1, "token is lowercase hex")
}
