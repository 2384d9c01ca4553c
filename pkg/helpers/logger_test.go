package helpers

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerStampsServiceFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("user-service", "production")
	logger.SetOutput(&buf)

	logger.WithField("user_id", "u1").Info("user created")
	logger.WithField("app", "override").Warn("explicit field wins")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "user-service", first["app"])
	assert.Equal(t, "production", first["env"])
	assert.Equal(t, "u1", first["user_id"])
	assert.Equal(t, "override", second["app"])
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
}
