package siwe

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// erc191Prefix is prepended to the message text before it is hashed and
// handed to the wallet contract.
const erc191Prefix = "\x19Ethereum Signed Message:\n"

// Environment marks where a Verifier runs. Only EnvironmentBackend may verify.
type Environment int

const (
	EnvironmentUntrusted Environment = iota
	EnvironmentBackend
)

// Payload is what the wallet returns after signing a message.
type Payload struct {
	Message   string `json:"message"`
	Signature string `json:"signature"`
	Address   string `json:"address"`
}

// VerifyParams are the values the message must carry. Empty values are not
// checked.
type VerifyParams struct {
	Nonce     string
	Statement string
	RequestID string
}

type VerifyResult struct {
	IsValid bool     `json:"is_valid"`
	Message *Message `json:"message"`
}

// Verifier checks signed SIWE messages against smart contract wallets.
type Verifier struct {
	env    Environment
	reader ChainReader

	// now can be overridden in tests.
	now func() time.Time
}

type VerifierOption func(*Verifier)

// WithClock sets the clock used for Expiration Time and Not Before checks.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		v.now = now
	}
}

// NewVerifier creates a Verifier. When reader is nil the shared client for
// DefaultRPCURL is used.
func NewVerifier(env Environment, reader ChainReader, opts ...VerifierOption) (*Verifier, error) {
	if reader == nil {
		r, err := DefaultChainReader()
		if err != nil {
			return nil, err
		}
		reader = r
	}

	v := &Verifier{
		env:    env,
		reader: reader,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// SignedMessage returns the ERC-191 prefixed form of message. The length is
// counted in UTF-16 code units, which is what browser wallets write.
func SignedMessage(message string) []byte {
	return []byte(erc191Prefix + strconv.Itoa(messageLength(message)) + message)
}

func messageLength(message string) int {
	return len(utf16.Encode([]rune(message)))
}

// Verify parses payload.Message, checks its validity window and the expected
// values in params, then asks the wallet contract at payload.Address to
// validate the signature. Nothing is retried.
func (v *Verifier) Verify(ctx context.Context, payload Payload, params VerifyParams) (*VerifyResult, error) {
	if v.env != EnvironmentBackend {
		return nil, ErrEnvironment
	}

	msg, err := ParseMessage(payload.Message)
	if err != nil {
		return nil, err
	}

	now := v.now()

	if msg.ExpirationTime != "" {
		expirationTime, err := parseTimestamp(msg.ExpirationTime)
		if err != nil {
			return nil, ErrInvalidExpirationTime
		}
		if expirationTime.Before(now) {
			return nil, ErrExpiredMessage
		}
	}

	if msg.NotBefore != "" {
		notBefore, err := parseTimestamp(msg.NotBefore)
		if err != nil {
			return nil, ErrInvalidNotBefore
		}
		if notBefore.After(now) {
			return nil, ErrNotYetValid
		}
	}

	if params.Nonce != "" && msg.Nonce != params.Nonce {
		return nil, ErrNonceMismatch
	}

	if params.Statement != "" && msg.Statement != params.Statement {
		return nil, ErrStatementMismatch
	}

	if params.RequestID != "" && msg.RequestID != params.RequestID {
		return nil, ErrRequestIDMismatch
	}

	if !common.IsHexAddress(payload.Address) {
		return nil, ErrInvalidAddress
	}

	if !strings.EqualFold(payload.Address, msg.Address) {
		return nil, ErrAddressMismatch
	}

	signature, err := hexutil.Decode(payload.Signature)
	if err != nil {
		return nil, &signatureError{cause: err}
	}

	checker, err := NewSignatureChecker(common.HexToAddress(payload.Address), v.reader)
	if err != nil {
		return nil, err
	}

	signed := SignedMessage(payload.Message)

	var dataHash [32]byte
	copy(dataHash[:], accounts.TextHash(signed))

	if err := checker.CheckSignatures(ctx, dataHash, signed, signature); err != nil {
		return nil, &signatureError{cause: err}
	}

	return &VerifyResult{
		IsValid: true,
		Message: msg,
	}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		ts, err = time.Parse(time.RFC3339Nano, value)
		if err != nil {
			return time.Time{}, err
		}
	}
	return ts, nil
}
