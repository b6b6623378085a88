package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateChannelName(t *testing.T) {
	first := GenerateChannelName("p1")
	second := GenerateChannelName("p1")

	assert.True(t, strings.HasPrefix(first, "call_p1_"))
	assert.NotEqual(t, first, second, "channel names are unique per call")
}

func TestGenerateRTCToken(t *testing.T) {
	first, err := GenerateRTCToken()
	require.NoError(t, err)
	second, err := GenerateRTCToken()
	require.NoError(t, err)

	assert.Len(t, first, 64)
	assert.NotEqual(t, first, second)
}
