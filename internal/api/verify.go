package api

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/supabase/siwe/internal/api/apierrors"
	"github.com/supabase/siwe/internal/observability"
	"github.com/supabase/siwe/internal/utilities/siwe"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var verificationsCounter = observability.ObtainMetricCounter("siwe_verifications", "Number of SIWE verifications by result")

// VerifyParams is the body of a verify request. The nonce must be one issued
// by this server and not yet spent.
type VerifyParams struct {
	Payload   siwe.Payload `json:"payload"`
	Nonce     string       `json:"nonce"`
	Statement string       `json:"statement"`
	RequestID string       `json:"request_id"`
}

func (p *VerifyParams) validate() error {
	if p.Payload.Message == "" {
		return apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "Missing message")
	}
	if p.Payload.Signature == "" {
		return apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "Missing signature")
	}
	if p.Payload.Address == "" {
		return apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "Missing address")
	}
	if p.Nonce == "" {
		return apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "Missing nonce")
	}
	return nil
}

// Verify checks a signed message against the signing wallet contract. The
// nonce is spent on success, so a captured payload cannot be replayed.
func (a *API) Verify(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	now := a.Now()

	params := &VerifyParams{}
	if err := retrieveRequestParams(r, params); err != nil {
		return err
	}

	if err := params.validate(); err != nil {
		return err
	}

	issuedAt, nonceErr := a.nonces.check(params.Nonce, now)
	if nonceErr != nil {
		verificationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", nonceErr.ErrorCode)))
		return nonceErr
	}

	result, err := a.verifier.Verify(ctx, params.Payload, siwe.VerifyParams{
		Nonce:     params.Nonce,
		Statement: params.Statement,
		RequestID: params.RequestID,
	})
	if err != nil {
		httpError := verificationError(err)

		verificationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", httpError.ErrorCode)))
		observability.LogEntrySetFields(r, logrus.Fields{
			"address": params.Payload.Address,
			"revert":  siwe.IsRevert(err),
		})

		return httpError
	}

	if err := a.nonces.consume(params.Nonce, issuedAt, now); err != nil {
		verificationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", apierrors.ErrorCodeSIWENonceReused)))
		return err
	}

	verificationsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "valid")))
	observability.LogEntrySetField(r, "address", result.Message.Address)

	return sendJSON(w, http.StatusOK, result)
}
