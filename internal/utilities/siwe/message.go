package siwe

import (
	"strings"
)

const (
	headerSuffix = " wants you to sign in with your Ethereum account:"

	tagURI            = "URI: "
	tagVersion        = "Version: "
	tagChainID        = "Chain ID: "
	tagNonce          = "Nonce: "
	tagIssuedAt       = "Issued At: "
	tagExpirationTime = "Expiration Time: "
	tagNotBefore      = "Not Before: "
	tagRequestID      = "Request ID: "

	// AddressPlaceholder is written in place of a missing address so the
	// wallet can fill it in before signing.
	AddressPlaceholder = "{address}"
)

// Message is the structured form of a SIWE message. Optional fields are empty
// when absent. Timestamps are kept verbatim as they appear in the text.
// REF: https://eips.ethereum.org/EIPS/eip-4361
type Message struct {
	// Scheme is only used when generating; parsing leaves it inside Domain.
	Scheme string `json:"scheme,omitempty"`

	Domain         string `json:"domain"`
	Address        string `json:"address"`
	Statement      string `json:"statement,omitempty"`
	URI            string `json:"uri"`
	Version        string `json:"version"`
	ChainID        string `json:"chain_id"`
	Nonce          string `json:"nonce"`
	IssuedAt       string `json:"issued_at"`
	ExpirationTime string `json:"expiration_time,omitempty"`
	NotBefore      string `json:"not_before,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
}

// GenerateMessage renders m as the canonical text to be signed. Fields are
// always emitted in the same order and optional trailer fields are written
// only when set.
func GenerateMessage(m *Message) string {
	var sb strings.Builder

	if m.Scheme != "" {
		sb.WriteString(m.Scheme + "://")
	}
	sb.WriteString(m.Domain + headerSuffix + "\n")

	if m.Address != "" {
		sb.WriteString(m.Address + "\n")
	} else {
		sb.WriteString(AddressPlaceholder + "\n")
	}
	sb.WriteString("\n")

	if m.Statement != "" {
		sb.WriteString(m.Statement + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString(tagURI + m.URI + "\n")
	sb.WriteString(tagVersion + m.Version + "\n")
	sb.WriteString(tagChainID + m.ChainID + "\n")
	sb.WriteString(tagNonce + m.Nonce + "\n")
	sb.WriteString(tagIssuedAt + m.IssuedAt + "\n")

	if m.ExpirationTime != "" {
		sb.WriteString(tagExpirationTime + m.ExpirationTime + "\n")
	}
	if m.NotBefore != "" {
		sb.WriteString(tagNotBefore + m.NotBefore + "\n")
	}
	if m.RequestID != "" {
		sb.WriteString(tagRequestID + m.RequestID + "\n")
	}

	return sb.String()
}

func (m *Message) String() string {
	return GenerateMessage(m)
}
