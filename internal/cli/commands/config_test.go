package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigShowRedactsToken(t *testing.T) {
	setupTestEnv(t, "http://127.0.0.1:1")

	out, err := execute(t, NewConfigCommand(), "show")
	require.NoError(t, err)

	assert.Contains(t, out, "targetRoomId: g1")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "test-token")
	assert.Contains(t, out, "webhookPath: /webex-webhook")
}

func TestConfigGet(t *testing.T) {
	setupTestEnv(t, "http://127.0.0.1:1")

	out, err := execute(t, NewConfigCommand(), "get", "server.port")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	out, err = execute(t, NewConfigCommand(), "get", "relay.prefix")
	require.NoError(t, err)
	assert.Equal(t, "Anonymous: \n", out)
}

func TestConfigGetRefusesToken(t *testing.T) {
	setupTestEnv(t, "http://127.0.0.1:1")

	_, err := execute(t, NewConfigCommand(), "get", "webex.token")
	assert.Error(t, err)
}
