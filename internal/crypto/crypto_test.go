package crypto

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("entropy source unavailable")
}

func TestGenerateNonce(t *testing.T) {
	nonce, err := GenerateNonce()
	require.NoError(t, err)
	assert.Len(t, nonce, 2*NonceBytes)

	decoded, err := hex.DecodeString(nonce)
	assert.NoError(t, err, "Nonce should be hex encoded")
	assert.Len(t, decoded, NonceBytes)
}

func TestGenerateNonceUnique(t *testing.T) {
	seen := make(map[string]struct{}, 10000)

	for i := 0; i < 10000; i++ {
		nonce, err := GenerateNonce()
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(nonce), MinNonceLength)

		_, duplicate := seen[nonce]
		require.False(t, duplicate, "Nonces MUST always be random")
		seen[nonce] = struct{}{}
	}
}

func TestGenerateNonceEntropyError(t *testing.T) {
	_, err := generateNonceFrom(failingReader{})
	require.ErrorIs(t, err, ErrEntropy)

	_, err = generateNonceFrom(strings.NewReader("short"))
	require.ErrorIs(t, err, ErrEntropy)
}
