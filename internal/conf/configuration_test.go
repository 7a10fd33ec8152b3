package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	defer os.Clearenv()
	os.Exit(m.Run())
}

func setRequiredEnv(t *testing.T) {
	t.Setenv("SIWE_MESSAGE_DOMAIN", "example.com")
	t.Setenv("SIWE_MESSAGE_URI", "https://example.com")
}

func TestGlobal(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SIWE_API_REQUEST_ID_HEADER", "X-Request-ID")
	t.Setenv("SIWE_MESSAGE_STATEMENT", "Sign in to Example App")
	t.Setenv("SIWE_LOG_LEVEL", "debug")

	gc, err := LoadGlobal("")
	require.NoError(t, err)
	require.NotNil(t, gc)

	assert.Equal(t, "X-Request-ID", gc.API.RequestIDHeader)
	assert.Equal(t, "9998", gc.API.Port)
	assert.Equal(t, 10*time.Second, gc.API.MaxRequestDuration)
	assert.Equal(t, DefaultRPCURL, gc.Chain.RPCURL)
	assert.Equal(t, int64(DefaultChainID), gc.Chain.ID)
	assert.Equal(t, "example.com", gc.Message.Domain)
	assert.Equal(t, "Sign in to Example App", gc.Message.Statement)
	assert.Equal(t, "1", gc.Message.Version)
	assert.Empty(t, gc.Message.Scheme)
	assert.Equal(t, 5*time.Minute, gc.Message.Validity)
	assert.Equal(t, "debug", gc.Logging.Level)
	assert.Equal(t, float64(30), gc.RateLimitVerify)
	assert.Equal(t, float64(60), gc.RateLimitNonce)
	assert.Empty(t, gc.Nonce.Secret)
	assert.Equal(t, 10*time.Minute, gc.Nonce.TTL)
}

func TestGlobalChainOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SIWE_CHAIN_RPC_URL", "http://localhost:8545")
	t.Setenv("SIWE_CHAIN_ID", "31337")

	gc, err := LoadGlobal("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", gc.Chain.RPCURL)
	assert.Equal(t, int64(31337), gc.Chain.ID)
}

func TestGlobalSchemeFromURI(t *testing.T) {
	t.Setenv("SIWE_MESSAGE_DOMAIN", "localhost:3000")
	t.Setenv("SIWE_MESSAGE_URI", "http://localhost:3000")

	gc, err := LoadGlobal("")
	require.NoError(t, err)
	assert.Equal(t, "http", gc.Message.Scheme)
}

func TestGlobalInvalid(t *testing.T) {
	t.Run("missing domain", func(t *testing.T) {
		t.Setenv("SIWE_MESSAGE_URI", "https://example.com")
		_, err := LoadGlobal("")
		require.Error(t, err)
	})

	t.Run("bad uri", func(t *testing.T) {
		t.Setenv("SIWE_MESSAGE_DOMAIN", "example.com")
		t.Setenv("SIWE_MESSAGE_URI", "not a uri")
		_, err := LoadGlobal("")
		require.Error(t, err)
	})

	t.Run("bad rpc url", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SIWE_CHAIN_RPC_URL", "ftp://example.com")
		_, err := LoadGlobal("")
		require.Error(t, err)
	})

	t.Run("short nonce secret", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SIWE_NONCE_SECRET", "too-short")
		_, err := LoadGlobal("")
		require.Error(t, err)
	})

	t.Run("zero nonce ttl", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SIWE_NONCE_TTL", "0s")
		_, err := LoadGlobal("")
		require.Error(t, err)
	})

	t.Run("unsupported metrics exporter", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SIWE_METRICS_ENABLED", "true")
		t.Setenv("SIWE_METRICS_EXPORTER", "statsd")
		_, err := LoadGlobal("")
		require.Error(t, err)
	})
}

func TestLoadGlobalFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siwe.env")
	require.NoError(t, os.WriteFile(path, []byte("SIWE_MESSAGE_DOMAIN=file.example.com\nSIWE_MESSAGE_URI=https://file.example.com\n"), 0600))

	gc, err := LoadGlobal(path)
	require.NoError(t, err)
	assert.Equal(t, "file.example.com", gc.Message.Domain)

	os.Unsetenv("SIWE_MESSAGE_DOMAIN")
	os.Unsetenv("SIWE_MESSAGE_URI")
}

func TestLoadChain(t *testing.T) {
	cc, err := LoadChain("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRPCURL, cc.RPCURL)
	assert.Equal(t, int64(DefaultChainID), cc.ID)
	assert.Equal(t, 5*time.Second, cc.DialTimeout)
}

func TestCORSAllAllowedHeaders(t *testing.T) {
	c := &CORSConfiguration{AllowedHeaders: []string{"X-Custom", "Accept"}}
	assert.Equal(t, []string{"Accept", "Content-Type", "X-Custom"}, c.AllAllowedHeaders([]string{"Accept", "Content-Type"}))
}
