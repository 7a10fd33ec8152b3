package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/supabase/siwe/internal/api/apierrors"
	"github.com/supabase/siwe/internal/conf"
	"github.com/supabase/siwe/internal/observability"
	"github.com/supabase/siwe/internal/utilities/siwe"
)

func TestHandleResponseErrorWithHTTPError(t *testing.T) {
	examples := []struct {
		HTTPError    *HTTPError
		ExpectedBody string
	}{
		{
			HTTPError:    apierrors.NewBadRequestError(apierrors.ErrorCodeBadJSON, "Unable to parse JSON"),
			ExpectedBody: "{\"code\":400,\"error_code\":\"" + apierrors.ErrorCodeBadJSON + "\",\"msg\":\"Unable to parse JSON\"}",
		},
		{
			HTTPError: &HTTPError{
				HTTPStatus: http.StatusBadRequest,
				Message:    "Uncoded failure",
			},
			ExpectedBody: "{\"code\":400,\"error_code\":\"" + apierrors.ErrorCodeUnknown + "\",\"msg\":\"Uncoded failure\"}",
		},
		{
			HTTPError:    apierrors.NewUnauthorizedError(apierrors.ErrorCodeSIWENonceMismatch, "Nonce does not match"),
			ExpectedBody: "{\"code\":401,\"error_code\":\"" + apierrors.ErrorCodeSIWENonceMismatch + "\",\"msg\":\"Nonce does not match\"}",
		},
	}

	for _, example := range examples {
		rec := httptest.NewRecorder()
		req, err := http.NewRequest(http.MethodPost, "http://example.com", nil)
		require.NoError(t, err)

		HandleResponseError(example.HTTPError, rec, req)

		require.Equal(t, example.HTTPError.HTTPStatus, rec.Code)
		require.Equal(t, example.ExpectedBody, rec.Body.String())
		require.Equal(t, example.HTTPError.ErrorCode, rec.Header().Get(errorCodeHeader))
	}
}

func TestHandleResponseErrorUnhandled(t *testing.T) {
	rec := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodPost, "http://example.com", nil)
	require.NoError(t, err)

	HandleResponseError(errors.New("boom"), rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var data HTTPError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&data))
	require.Equal(t, apierrors.ErrorCodeUnexpectedFailure, data.ErrorCode)
}

func TestRecoverer(t *testing.T) {
	var logBuffer bytes.Buffer
	config, err := conf.LoadGlobal(apiTestConfig)
	require.NoError(t, err)
	require.NoError(t, observability.ConfigureLogging(&config.Logging))

	// logrus should write to the buffer so we can check if the logs are output correctly
	logrus.SetOutput(&logBuffer)
	panicHandler := recoverer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic")
	}))

	w := httptest.NewRecorder()
	req, err := http.NewRequest(http.MethodPost, "http://example.com", nil)
	require.NoError(t, err)

	panicHandler.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var data HTTPError

	// panic should return an internal server error
	require.NoError(t, json.NewDecoder(w.Body).Decode(&data))
	require.Equal(t, apierrors.ErrorCodeUnexpectedFailure, data.ErrorCode)
	require.Equal(t, http.StatusInternalServerError, data.HTTPStatus)
	require.Equal(t, "Internal Server Error", data.Message)

	// panic should log the error message internally
	var logs map[string]interface{}
	require.NoError(t, json.NewDecoder(&logBuffer).Decode(&logs))
	require.Equal(t, "request panicked", logs["msg"])
	require.Equal(t, "test panic", logs["panic"])
	require.NotEmpty(t, logs["stack"])
}

func TestVerificationError(t *testing.T) {
	examples := []struct {
		err    error
		status int
		code   string
	}{
		{siwe.ErrExtraLines, http.StatusBadRequest, apierrors.ErrorCodeValidationFailed},
		{&siwe.MissingTagError{Tag: "Nonce"}, http.StatusBadRequest, apierrors.ErrorCodeValidationFailed},
		{siwe.ErrInvalidExpirationTime, http.StatusBadRequest, apierrors.ErrorCodeValidationFailed},
		{siwe.ErrInvalidAddress, http.StatusBadRequest, apierrors.ErrorCodeValidationFailed},
		{siwe.ErrExpiredMessage, http.StatusUnauthorized, apierrors.ErrorCodeSIWEMessageExpired},
		{siwe.ErrNotYetValid, http.StatusUnauthorized, apierrors.ErrorCodeSIWEMessageNotYetValid},
		{siwe.ErrNonceMismatch, http.StatusUnauthorized, apierrors.ErrorCodeSIWENonceMismatch},
		{siwe.ErrStatementMismatch, http.StatusUnauthorized, apierrors.ErrorCodeSIWEStatementMismatch},
		{siwe.ErrRequestIDMismatch, http.StatusUnauthorized, apierrors.ErrorCodeSIWERequestIDMismatch},
		{siwe.ErrAddressMismatch, http.StatusUnauthorized, apierrors.ErrorCodeSIWEAddressMismatch},
		{siwe.ErrSignatureVerificationFailed, http.StatusUnauthorized, apierrors.ErrorCodeSIWESignatureInvalid},
		{siwe.ErrEnvironment, http.StatusInternalServerError, apierrors.ErrorCodeUnexpectedFailure},
	}

	for _, example := range examples {
		httpError := verificationError(example.err)
		require.Equal(t, example.status, httpError.HTTPStatus, example.err.Error())
		require.Equal(t, example.code, httpError.ErrorCode, example.err.Error())
		require.Equal(t, example.err, httpError.Cause())
	}
}

func TestVerificationErrorInternalMessage(t *testing.T) {
	t.Run("revert is logged", func(t *testing.T) {
		err := fmt.Errorf("%w: execution reverted: GS026", siwe.ErrSignatureVerificationFailed)

		httpError := verificationError(err)
		require.Equal(t, "Signature verification failed", httpError.Message)
		require.Contains(t, httpError.Error(), "revert: true")
		require.Contains(t, httpError.Error(), "no contract code: false")
	})

	t.Run("missing contract code is logged", func(t *testing.T) {
		err := fmt.Errorf("%w: %w", siwe.ErrSignatureVerificationFailed, siwe.ErrNoContractCode)

		httpError := verificationError(err)
		require.Equal(t, apierrors.ErrorCodeSIWESignatureInvalid, httpError.ErrorCode)
		require.Contains(t, httpError.Error(), "no contract code: true")
	})

	t.Run("environment is a configuration error", func(t *testing.T) {
		httpError := verificationError(siwe.ErrEnvironment)
		require.Equal(t, http.StatusInternalServerError, httpError.HTTPStatus)
		require.Equal(t, "SIWE verification is not available", httpError.Message)
		require.Contains(t, httpError.Error(), "trusted backend")
	})

	t.Run("unknown errors keep the generic message", func(t *testing.T) {
		httpError := verificationError(errors.New("boom"))
		require.Equal(t, "Unable to verify SIWE message", httpError.Message)
		require.Equal(t, "500: Unable to verify SIWE message", httpError.Error())
	})
}
