package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/supabase/siwe/internal/api/apierrors"
	"github.com/supabase/siwe/internal/conf"
	"github.com/supabase/siwe/internal/crypto"
	"github.com/supabase/siwe/internal/utilities/siwe"
)

// siweTimeFormat matches the millisecond ISO 8601 timestamps wallets emit.
const siweTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// MessageParams are the per-request values of a message to be signed. Missing
// values come from the message configuration.
type MessageParams struct {
	Address   string `json:"address"`
	Statement string `json:"statement"`
	Nonce     string `json:"nonce"`
	RequestID string `json:"request_id"`
	ChainID   string `json:"chain_id"`
	NotBefore string `json:"not_before"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Nonce   string `json:"nonce"`
}

func (p *MessageParams) validate() error {
	if p.Address != "" && !common.IsHexAddress(p.Address) {
		return apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "Address is not a valid Ethereum address")
	}

	if strings.Contains(p.Statement, "\n") {
		return apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "Statement must be a single line")
	}

	if p.Nonce != "" && len(p.Nonce) < crypto.MinNonceLength {
		return apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "Nonce must be at least %d characters", crypto.MinNonceLength)
	}

	if p.ChainID != "" {
		if id, err := strconv.ParseInt(p.ChainID, 10, 64); err != nil || id <= 0 {
			return apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "Chain ID must be a positive integer")
		}
	}

	if p.NotBefore != "" {
		if _, err := time.Parse(time.RFC3339Nano, p.NotBefore); err != nil {
			return apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "Not before must be an RFC 3339 timestamp")
		}
	}

	return nil
}

// Message composes the text a wallet is asked to sign. A supplied nonce must
// be one issued by Nonce.
func (a *API) Message(w http.ResponseWriter, r *http.Request) error {
	params := &MessageParams{}
	if err := retrieveRequestParams(r, params); err != nil {
		return err
	}

	if err := params.validate(); err != nil {
		return err
	}

	generated := params.Nonce == ""
	if !generated {
		if _, err := a.nonces.check(params.Nonce, a.Now()); err != nil {
			return err
		}
	}

	msg, err := ComposeMessage(a.config, params, a.Now(), a.nonces.signer)
	if err != nil {
		return err
	}

	if generated {
		noncesIssuedCounter.Add(r.Context(), 1)
	}

	return sendJSON(w, http.StatusOK, &MessageResponse{
		Message: siwe.GenerateMessage(msg),
		Nonce:   msg.Nonce,
	})
}

// ComposeMessage builds a message from params, falling back to the message
// configuration. signer issues the nonce when params has none.
func ComposeMessage(globalConfig *conf.GlobalConfiguration, params *MessageParams, now time.Time, signer *crypto.NonceSigner) (*siwe.Message, error) {
	config := globalConfig.Message

	if err := params.validate(); err != nil {
		return nil, err
	}

	nonce := params.Nonce
	if nonce == "" {
		var err error
		if nonce, err = signer.Issue(now); err != nil {
			return nil, apierrors.NewInternalServerError("Unable to generate nonce").WithInternalError(err)
		}
	}

	statement := params.Statement
	if statement == "" {
		statement = config.Statement
	}

	chainID := params.ChainID
	if chainID == "" {
		chainID = strconv.FormatInt(globalConfig.Chain.ID, 10)
	}

	now = now.UTC()

	msg := &siwe.Message{
		Scheme:    config.Scheme,
		Domain:    config.Domain,
		Address:   params.Address,
		Statement: statement,
		URI:       config.URI,
		Version:   config.Version,
		ChainID:   chainID,
		Nonce:     nonce,
		IssuedAt:  now.Format(siweTimeFormat),
		NotBefore: params.NotBefore,
		RequestID: params.RequestID,
	}

	if config.Validity > 0 {
		msg.ExpirationTime = now.Add(config.Validity).Format(siweTimeFormat)
	}

	return msg, nil
}
