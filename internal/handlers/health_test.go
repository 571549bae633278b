package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_ReportsServiceIdentity(t *testing.T) {
	ctx, recorder := newTestContext(t, http.MethodGet, "", nil, nil)

	HealthCheck(ctx)

	require.Equal(t, http.StatusOK, recorder.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "funding-portal-api", payload["service"])
	assert.NotEmpty(t, payload["uptime"])
	assert.NotEmpty(t, payload["timestamp"])
}
