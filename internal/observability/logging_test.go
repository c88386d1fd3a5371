package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerAddsContextValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "production")

	ctx := WithRequestID(WithUserID(context.Background(), "user-7"), "req-1")
	logger.With("component", "test").InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "user-7", record["user_id"])
	assert.Equal(t, "req-1", record["request_id"])
	assert.Equal(t, "test", record["component"])
}

func TestLoggerTextOutsideProduction(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "development").Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}
