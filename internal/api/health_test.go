package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	api, _, _, err := setupAPIForTest()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "http://localhost/health", nil)
	w := httptest.NewRecorder()

	api.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var data HealthCheckResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	require.Equal(t, apiTestVersion, data.Version)
	require.Equal(t, "SIWE", data.Name)
}
