package api

import (
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/supabase/siwe/internal/api/apierrors"
	"github.com/supabase/siwe/internal/conf"
	"github.com/supabase/siwe/internal/crypto"
)

var errNonceReused = errors.New("nonce has already been used")

// NewNonceSigner builds the signer for the configured nonce secret. Without a
// secret a random key is used, so nonces only verify on this process.
func NewNonceSigner(config *conf.NonceConfiguration) (*crypto.NonceSigner, error) {
	key := []byte(config.Secret)
	if len(key) == 0 {
		generated, err := crypto.GenerateNonceKey()
		if err != nil {
			return nil, err
		}
		key = generated
		logrus.Warn("SIWE_NONCE_SECRET is not set, nonces will not verify on other instances or after a restart")
	}

	return crypto.NewNonceSigner(key, config.TTL), nil
}

// nonceLedger only accepts nonces this server signed, and each of them once.
// Spent nonces are remembered in memory until they would expire anyway.
type nonceLedger struct {
	signer *crypto.NonceSigner
	spent  *cache.Cache
}

func newNonceLedger(signer *crypto.NonceSigner) *nonceLedger {
	return &nonceLedger{
		signer: signer,
		spent:  cache.New(signer.TTL(), signer.TTL()),
	}
}

func (l *nonceLedger) issue(now time.Time) (string, error) {
	nonce, err := l.signer.Issue(now)
	if err != nil {
		return "", apierrors.NewInternalServerError("Unable to generate nonce").WithInternalError(err)
	}
	return nonce, nil
}

// check rejects nonces that were not issued here, have expired or were spent.
func (l *nonceLedger) check(nonce string, now time.Time) (time.Time, *HTTPError) {
	issuedAt, err := l.signer.Check(nonce, now)
	if err != nil {
		return time.Time{}, apierrors.NewUnauthorizedError(apierrors.ErrorCodeSIWENonceInvalid, "Nonce was not issued by this server or has expired").WithInternalError(err)
	}

	if _, spent := l.spent.Get(nonce); spent {
		return time.Time{}, apierrors.NewUnauthorizedError(apierrors.ErrorCodeSIWENonceReused, "Nonce has already been used").WithInternalError(errNonceReused)
	}

	return issuedAt, nil
}

// consume marks nonce as spent. Of two concurrent requests with the same
// nonce only one succeeds.
func (l *nonceLedger) consume(nonce string, issuedAt, now time.Time) error {
	// keep it a little past the TTL so the signer rejects it first
	retention := issuedAt.Add(l.signer.TTL()).Sub(now) + time.Minute
	if retention < time.Minute {
		retention = time.Minute
	}

	if err := l.spent.Add(nonce, struct{}{}, retention); err != nil {
		return apierrors.NewUnauthorizedError(apierrors.ErrorCodeSIWENonceReused, "Nonce has already been used").WithInternalError(errNonceReused)
	}

	return nil
}
