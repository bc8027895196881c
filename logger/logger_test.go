package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopDefault(t *testing.T) {
	// Package-level helpers must be safe before Initialize.
	require.NotNil(t, Logger)
	Infow("safe before init", "key", "value")
	Warnf("also safe: %d", 1)
}

func TestInitializeJSON(t *testing.T) {
	err := Initialize(true)
	require.NoError(t, err)
	assert.True(t, JSONOutput)
	assert.NotNil(t, Logger)
}

func TestInitializeConsole(t *testing.T) {
	err := Initialize(false)
	require.NoError(t, err)
	assert.False(t, JSONOutput)
	Infow("console logger active", "component", "test")
}
