package observability

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestFieldsHook(t *testing.T) {
	var buffer bytes.Buffer

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(&buffer)
	logger.AddHook(&fieldsHook{fields: logrus.Fields{"service": "siwe", "region": "eu"}})

	logger.WithField("region", "us").Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.NewDecoder(&buffer).Decode(&entry))
	require.Equal(t, "siwe", entry["service"])
	require.Equal(t, "us", entry["region"])
}

func TestGetLogEntryWithoutRequestLogger(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	entry := GetLogEntry(req)
	require.NotNil(t, entry)
	require.NotNil(t, entry.Entry)

	// no request logger in the chain, so this is a no-op
	LogEntrySetField(req, "address", "0x0")
}

func TestRoutePatternFallsBackToPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/nonce", nil)
	require.Equal(t, "/nonce", routePattern(req))
}
