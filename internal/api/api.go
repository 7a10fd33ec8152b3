package api

import (
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/sebest/xff"
	"github.com/sirupsen/logrus"
	"github.com/supabase/siwe/internal/conf"
	"github.com/supabase/siwe/internal/observability"
	"github.com/supabase/siwe/internal/utilities/siwe"
)

const defaultVersion = "unknown version"

// API is the main REST API
type API struct {
	handler  http.Handler
	config   *conf.GlobalConfiguration
	verifier *siwe.Verifier
	nonces   *nonceLedger
	version  string

	// overrideTime can be used to override the clock used by handlers. Should only be used in tests!
	overrideTime func() time.Time
}

func (a *API) Now() time.Time {
	if a.overrideTime != nil {
		return a.overrideTime()
	}

	return time.Now()
}

// NewAPI instantiates a new REST API
func NewAPI(globalConfig *conf.GlobalConfiguration, reader siwe.ChainReader) (*API, error) {
	return NewAPIWithVersion(globalConfig, reader, defaultVersion)
}

// NewAPIWithVersion creates a new REST API using the specified version. The
// reader is used for every contract read made while verifying signatures.
func NewAPIWithVersion(globalConfig *conf.GlobalConfiguration, reader siwe.ChainReader, version string) (*API, error) {
	api := &API{config: globalConfig, version: version}

	verifier, err := siwe.NewVerifier(siwe.EnvironmentBackend, reader, siwe.WithClock(api.Now))
	if err != nil {
		return nil, err
	}
	api.verifier = verifier

	signer, err := NewNonceSigner(&globalConfig.Nonce)
	if err != nil {
		return nil, err
	}
	api.nonces = newNonceLedger(signer)

	xffmw, _ := xff.Default()
	logger := observability.NewStructuredLogger(logrus.StandardLogger())

	r := newRouter()
	r.Use(addRequestID(globalConfig))

	// request tracing should be added only when tracing or metrics is enabled
	if globalConfig.Tracing.Enabled || globalConfig.Metrics.Enabled {
		r.UseBypass(observability.RequestTracing())
	}

	r.UseBypass(xffmw.Handler)
	r.UseBypass(recoverer)

	r.Get("/health", api.HealthCheck)

	r.Route("/", func(r *router) {
		r.UseBypass(logger)
		r.UseBypass(timeoutMiddleware(globalConfig.API.MaxRequestDuration))

		r.With(api.limitHandler(newLimiter(globalConfig.RateLimitNonce))).Get("/nonce", api.Nonce)
		r.With(api.limitHandler(newLimiter(globalConfig.RateLimitNonce))).Post("/message", api.Message)
		r.With(api.limitHandler(newLimiter(globalConfig.RateLimitVerify))).Post("/verify", api.Verify)
	})

	corsHandler := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   globalConfig.CORS.AllAllowedHeaders([]string{"Accept", "Content-Type", "X-Client-IP", "X-Client-Info"}),
		ExposedHeaders:   []string{errorCodeHeader},
		AllowCredentials: true,
	})

	api.handler = corsHandler.Handler(r)
	return api, nil
}

type HealthCheckResponse struct {
	Version     string `json:"version"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HealthCheck endpoint indicates if the siwe api service is available
func (a *API) HealthCheck(w http.ResponseWriter, r *http.Request) error {
	return sendJSON(w, http.StatusOK, HealthCheckResponse{
		Version:     a.version,
		Name:        "SIWE",
		Description: "SIWE issues and verifies Sign-In with Ethereum messages",
	})
}

// ServeHTTP makes the API usable as a plain http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
