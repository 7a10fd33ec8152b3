package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/pkg/errors"
	"github.com/supabase/siwe/internal/api/apierrors"
	"github.com/supabase/siwe/internal/observability"
	"github.com/supabase/siwe/internal/utilities"
	"github.com/supabase/siwe/internal/utilities/siwe"
)

// HTTPError is an error with a message and an HTTP status code.
type HTTPError = apierrors.HTTPError

const errorCodeHeader = "x-siwe-error-code"

// Recoverer is a middleware that recovers from panics, logs the panic (and a
// backtrace), and returns a HTTP 500 (Internal Server Error) status if
// possible. Recoverer prints a request ID if one is provided.
func recoverer(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				logEntry := observability.GetLogEntry(r)
				if logEntry != nil {
					logEntry.Panic(rvr, debug.Stack())
				} else {
					fmt.Fprintf(os.Stderr, "Panic: %+v\n", rvr)
					debug.PrintStack()
				}

				se := &HTTPError{
					HTTPStatus: http.StatusInternalServerError,
					Message:    http.StatusText(http.StatusInternalServerError),
				}
				HandleResponseError(se, w, r)
			}
		}()
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}

// ErrorCause is an error interface that contains the method Cause() for returning root cause errors
type ErrorCause interface {
	Cause() error
}

func HandleResponseError(err error, w http.ResponseWriter, r *http.Request) {
	log := observability.GetLogEntry(r).Entry
	errorID := utilities.GetRequestID(r.Context())

	switch e := err.(type) {
	case *HTTPError:
		switch {
		case e.HTTPStatus >= http.StatusInternalServerError:
			e.ErrorID = errorID
			// this will get us the stack trace too
			log.WithError(e.Cause()).Error(e.Error())
		case e.HTTPStatus == http.StatusTooManyRequests:
			log.WithError(e.Cause()).Warn(e.Error())
		default:
			log.WithError(e.Cause()).Info(e.Error())
		}

		if e.ErrorCode == "" {
			if e.HTTPStatus == http.StatusInternalServerError {
				e.ErrorCode = apierrors.ErrorCodeUnexpectedFailure
			} else {
				e.ErrorCode = apierrors.ErrorCodeUnknown
			}
		}

		w.Header().Set(errorCodeHeader, e.ErrorCode)

		if jsonErr := sendJSON(w, e.HTTPStatus, e); jsonErr != nil && jsonErr != context.DeadlineExceeded {
			log.WithError(jsonErr).Warn("Failed to send JSON on ResponseWriter")
		}

	case ErrorCause:
		HandleResponseError(e.Cause(), w, r)

	default:
		log.WithError(e).Errorf("Unhandled server error: %s", e.Error())

		httpError := HTTPError{
			HTTPStatus: http.StatusInternalServerError,
			ErrorCode:  apierrors.ErrorCodeUnexpectedFailure,
			Message:    "Unexpected failure, please check server logs for more information",
			ErrorID:    errorID,
		}

		w.Header().Set(errorCodeHeader, httpError.ErrorCode)

		if jsonErr := sendJSON(w, http.StatusInternalServerError, httpError); jsonErr != nil && jsonErr != context.DeadlineExceeded {
			log.WithError(jsonErr).Warn("Failed to send JSON on ResponseWriter")
		}
	}
}

// verificationError maps a verifier failure to the response sent to the
// client. The original error is kept as the internal cause.
func verificationError(err error) *HTTPError {
	var httpError *HTTPError

	switch {
	case errors.Is(err, siwe.ErrMalformedMessage):
		httpError = apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "Invalid SIWE message: %v", err)
	case errors.Is(err, siwe.ErrInvalidAddress):
		httpError = apierrors.NewBadRequestError(apierrors.ErrorCodeValidationFailed, "Address is not a valid Ethereum address")
	case errors.Is(err, siwe.ErrExpiredMessage):
		httpError = apierrors.NewUnauthorizedError(apierrors.ErrorCodeSIWEMessageExpired, "SIWE message is expired")
	case errors.Is(err, siwe.ErrNotYetValid):
		httpError = apierrors.NewUnauthorizedError(apierrors.ErrorCodeSIWEMessageNotYetValid, "SIWE message is not yet valid")
	case errors.Is(err, siwe.ErrNonceMismatch):
		httpError = apierrors.NewUnauthorizedError(apierrors.ErrorCodeSIWENonceMismatch, "Nonce does not match")
	case errors.Is(err, siwe.ErrStatementMismatch):
		httpError = apierrors.NewUnauthorizedError(apierrors.ErrorCodeSIWEStatementMismatch, "Statement does not match")
	case errors.Is(err, siwe.ErrRequestIDMismatch):
		httpError = apierrors.NewUnauthorizedError(apierrors.ErrorCodeSIWERequestIDMismatch, "Request ID does not match")
	case errors.Is(err, siwe.ErrAddressMismatch):
		httpError = apierrors.NewUnauthorizedError(apierrors.ErrorCodeSIWEAddressMismatch, "Address does not match the signed message")
	case errors.Is(err, siwe.ErrSignatureVerificationFailed):
		httpError = apierrors.NewUnauthorizedError(apierrors.ErrorCodeSIWESignatureInvalid, "Signature verification failed").
			WithInternalMessage("signature rejected (revert: %t, no contract code: %t): %v", siwe.IsRevert(err), errors.Is(err, siwe.ErrNoContractCode), err)
	case errors.Is(err, siwe.ErrEnvironment):
		httpError = apierrors.NewInternalServerError("SIWE verification is not available").
			WithInternalMessage("verifier is not configured for a trusted backend: %v", err)
	default:
		httpError = apierrors.NewInternalServerError("Unable to verify SIWE message")
	}

	return httpError.WithInternalError(err)
}
