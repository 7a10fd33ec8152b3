package siwe

import (
	"errors"
	"fmt"
)

// ErrMalformedMessage is matched by every structural parse failure.
var ErrMalformedMessage = errors.New("siwe: malformed message")

// Static errors
var (
	ErrInvalidHeader         = fmt.Errorf("%w: first line does not end in %q", ErrMalformedMessage, headerSuffix)
	ErrMissingAddress        = fmt.Errorf("%w: address line is missing", ErrMalformedMessage)
	ErrMissingSeparator      = fmt.Errorf("%w: blank line after address is missing", ErrMalformedMessage)
	ErrExtraLines            = fmt.Errorf("%w: extra lines in the input", ErrMalformedMessage)
	ErrInvalidExpirationTime = fmt.Errorf("%w: Expiration Time is not a valid ISO8601 timestamp", ErrMalformedMessage)
	ErrInvalidNotBefore      = fmt.Errorf("%w: Not Before is not a valid ISO8601 timestamp", ErrMalformedMessage)

	ErrExpiredMessage              = errors.New("siwe: expired message")
	ErrNotYetValid                 = errors.New("siwe: Not Before time has not passed")
	ErrNonceMismatch               = errors.New("siwe: nonce mismatch")
	ErrStatementMismatch           = errors.New("siwe: statement mismatch")
	ErrRequestIDMismatch           = errors.New("siwe: request ID mismatch")
	ErrInvalidAddress              = errors.New("siwe: wallet address is not a valid Ethereum address")
	ErrAddressMismatch             = errors.New("siwe: wallet address does not match the address in the message")
	ErrSignatureVerificationFailed = errors.New("siwe: signature verification failed")
	ErrEnvironment                 = errors.New("siwe: verify can only be called in a trusted backend")
	ErrNoContractCode              = errors.New("siwe: no contract code at wallet address")
)

// MissingTagError reports a mandatory tagged line that is absent or out of
// order.
type MissingTagError struct {
	Tag string
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("%s: missing %q", ErrMalformedMessage.Error(), e.Tag)
}

func (e *MissingTagError) Is(target error) bool {
	return target == ErrMalformedMessage
}

func errMissingTag(tag string) error {
	return &MissingTagError{Tag: tag}
}

func errDuplicateTag(tag string) error {
	return fmt.Errorf("%w: %q appears more than once", ErrMalformedMessage, tag)
}

// signatureError keeps the underlying cause of a failed on-chain check while
// matching ErrSignatureVerificationFailed.
type signatureError struct {
	cause error
}

func (e *signatureError) Error() string {
	return ErrSignatureVerificationFailed.Error() + ": " + e.cause.Error()
}

func (e *signatureError) Is(target error) bool {
	return target == ErrSignatureVerificationFailed
}

func (e *signatureError) Unwrap() error {
	return e.cause
}
