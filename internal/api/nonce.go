package api

import (
	"net/http"

	"github.com/supabase/siwe/internal/observability"
)

var noncesIssuedCounter = observability.ObtainMetricCounter("siwe_nonces_issued", "Number of nonces issued")

type NonceResponse struct {
	Nonce string `json:"nonce"`
}

// Nonce issues a fresh signed nonce. Verify accepts it once, within the
// configured nonce TTL.
func (a *API) Nonce(w http.ResponseWriter, r *http.Request) error {
	nonce, err := a.nonces.issue(a.Now())
	if err != nil {
		return err
	}

	noncesIssuedCounter.Add(r.Context(), 1)

	return sendJSON(w, http.StatusCreated, &NonceResponse{Nonce: nonce})
}
