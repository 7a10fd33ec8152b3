package siwe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMessage(t *testing.T) {
	t.Run("canonical order", func(t *testing.T) {
		// field order in the literal does not matter
		m := &Message{
			RequestID:      "req-1",
			NotBefore:      "2024-12-31T00:00:00.000Z",
			ExpirationTime: "2025-01-02T00:00:00.000Z",
			IssuedAt:       "2025-01-01T00:00:00.000Z",
			Nonce:          "12345678",
			ChainID:        "1",
			Version:        "1",
			URI:            "https://example.com",
			Statement:      "Sign in to Example App",
			Address:        testAddress,
			Domain:         "example.com",
		}

		require.Equal(t, testMessage, GenerateMessage(m))
		require.Equal(t, testMessage, m.String())
	})

	t.Run("without optional fields", func(t *testing.T) {
		m := &Message{
			Domain:   "example.com",
			Address:  testAddress,
			URI:      "https://example.com",
			Version:  "1",
			ChainID:  "10",
			Nonce:    "abcd1234",
			IssuedAt: "2024-01-01T00:00:00.000Z",
		}

		expected := "example.com wants you to sign in with your Ethereum account:\n" +
			testAddress + "\n\n\n" +
			"URI: https://example.com\nVersion: 1\nChain ID: 10\nNonce: abcd1234\nIssued At: 2024-01-01T00:00:00.000Z\n"
		require.Equal(t, expected, GenerateMessage(m))
	})

	t.Run("address placeholder", func(t *testing.T) {
		m := fullMessage()
		m.Address = ""

		parsed, err := ParseMessage(GenerateMessage(m))
		require.NoError(t, err)
		assert.Equal(t, AddressPlaceholder, parsed.Address)
	})

	t.Run("scheme prefix", func(t *testing.T) {
		m := fullMessage()
		m.Scheme = "https"

		out := GenerateMessage(m)
		assert.Contains(t, out, "https://example.com wants you to sign in with your Ethereum account:\n")
	})
}

func TestMessageRoundTrip(t *testing.T) {
	m := fullMessage()

	parsed, err := ParseMessage(GenerateMessage(m))
	require.NoError(t, err)
	require.Equal(t, m, parsed)

	require.Equal(t, GenerateMessage(m), GenerateMessage(parsed))
}

func TestMessageEndToEnd(t *testing.T) {
	m := &Message{
		Domain:   "example.com",
		Address:  "0xABC0000000000000000000000000000000000001",
		URI:      "https://example.com",
		Version:  "1",
		ChainID:  "1",
		Nonce:    "abcd1234",
		IssuedAt: "2024-01-01T00:00:00.000Z",
	}

	parsed, err := ParseMessage(GenerateMessage(m))
	require.NoError(t, err)

	assert.Equal(t, "example.com", parsed.Domain)
	assert.Equal(t, "0xABC0000000000000000000000000000000000001", parsed.Address)
	assert.Equal(t, "https://example.com", parsed.URI)
	assert.Equal(t, "1", parsed.Version)
	assert.Equal(t, "1", parsed.ChainID)
	assert.Equal(t, "abcd1234", parsed.Nonce)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", parsed.IssuedAt)
	assert.Equal(t, m, parsed)
}
