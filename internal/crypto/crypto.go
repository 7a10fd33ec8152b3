package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
)

const (
	// NonceBytes is the amount of randomness in a nonce.
	NonceBytes = 12

	// MinNonceLength is the shortest nonce ERC-4361 accepts.
	MinNonceLength = 8
)

// ErrEntropy means the random source could not produce a usable nonce. It is
// a configuration problem and should not be retried.
var ErrEntropy = errors.New("crypto: error during nonce creation")

// GenerateNonce returns a random hex nonce of NonceBytes bytes (24 hex
// characters).
func GenerateNonce() (string, error) {
	return generateNonceFrom(rand.Reader)
}

func generateNonceFrom(r io.Reader) (string, error) {
	b := make([]byte, NonceBytes)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", errors.Wrap(ErrEntropy, err.Error())
	}

	nonce := hex.EncodeToString(b)
	if len(nonce) < MinNonceLength {
		return "", ErrEntropy
	}

	return nonce, nil
}
