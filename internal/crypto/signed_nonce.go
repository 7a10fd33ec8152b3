package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"io"
	"time"

	"github.com/pkg/errors"
)

const (
	signedNonceTimeLength      = 8
	signedNonceRandomLength    = 8
	signedNonceSignatureLength = 16
	signedNonceLength          = signedNonceTimeLength + signedNonceRandomLength + signedNonceSignatureLength

	// NonceKeyLength is the size of keys made by GenerateNonceKey.
	NonceKeyLength = 32
)

var (
	ErrNonceSignature = errors.New("crypto: nonce was not issued by this server")
	ErrNonceExpired   = errors.New("crypto: nonce is too old")
)

// GenerateNonceKey returns a random HMAC key for a NonceSigner.
func GenerateNonceKey() ([]byte, error) {
	key := make([]byte, NonceKeyLength)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, errors.Wrap(ErrEntropy, err.Error())
	}
	return key, nil
}

// NonceSigner issues nonces that carry their issue time and a truncated
// HMAC-SHA-256, so any instance sharing the key can tell its own nonces apart
// from ones a client made up. The hex encoding keeps them alphanumeric.
type NonceSigner struct {
	key    []byte
	ttl    time.Duration
	random io.Reader
}

func NewNonceSigner(key []byte, ttl time.Duration) *NonceSigner {
	return &NonceSigner{
		key:    key,
		ttl:    ttl,
		random: rand.Reader,
	}
}

// TTL is how long an issued nonce is accepted.
func (s *NonceSigner) TTL() time.Duration {
	return s.ttl
}

func (s *NonceSigner) Issue(now time.Time) (string, error) {
	raw := make([]byte, 0, signedNonceLength)
	raw = binary.BigEndian.AppendUint64(raw, uint64(now.Unix()))

	random := make([]byte, signedNonceRandomLength)
	if _, err := io.ReadFull(s.random, random); err != nil {
		return "", errors.Wrap(ErrEntropy, err.Error())
	}
	raw = append(raw, random...)
	raw = append(raw, s.sign(raw)...)

	return hex.EncodeToString(raw), nil
}

// Check returns the issue time of nonce. It fails with ErrNonceSignature for
// nonces this key did not sign, and with ErrNonceExpired once the TTL passed.
func (s *NonceSigner) Check(nonce string, now time.Time) (time.Time, error) {
	raw, err := hex.DecodeString(nonce)
	if err != nil || len(raw) != signedNonceLength {
		return time.Time{}, ErrNonceSignature
	}

	payload := raw[:signedNonceLength-signedNonceSignatureLength]
	if !hmac.Equal(s.sign(payload), raw[len(payload):]) {
		return time.Time{}, ErrNonceSignature
	}

	issuedAt := time.Unix(int64(binary.BigEndian.Uint64(payload[:signedNonceTimeLength])), 0)
	if now.Sub(issuedAt) > s.ttl || issuedAt.After(now.Add(time.Minute)) {
		return time.Time{}, ErrNonceExpired
	}

	return issuedAt, nil
}

func (s *NonceSigner) sign(payload []byte) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write(payload)
	return h.Sum(nil)[:signedNonceSignatureLength]
}
