package apierrors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPErrors(t *testing.T) {
	sentinel := errors.New("sentinel")

	tests := []struct {
		from error
		exp  *HTTPError
	}{
		{
			from: NewHTTPError(
				http.StatusBadRequest,
				ErrorCodeBadJSON,
				"Unable to parse JSON: %v",
				errors.New("bad syntax"),
			),
			exp: &HTTPError{
				HTTPStatus: http.StatusBadRequest,
				ErrorCode:  ErrorCodeBadJSON,
				Message:    "Unable to parse JSON: bad syntax",
			},
		},
		{
			from: NewBadRequestError(ErrorCodeValidationFailed, "error: %v", sentinel),
			exp: &HTTPError{
				HTTPStatus: http.StatusBadRequest,
				ErrorCode:  ErrorCodeValidationFailed,
				Message:    "error: " + sentinel.Error(),
			},
		},
		{
			from: NewUnauthorizedError(ErrorCodeSIWENonceMismatch, "nonce does not match"),
			exp: &HTTPError{
				HTTPStatus: http.StatusUnauthorized,
				ErrorCode:  ErrorCodeSIWENonceMismatch,
				Message:    "nonce does not match",
			},
		},
		{
			from: NewTooManyRequestsError(ErrorCodeOverRequestRateLimit, "error: %v", sentinel),
			exp: &HTTPError{
				HTTPStatus: http.StatusTooManyRequests,
				ErrorCode:  ErrorCodeOverRequestRateLimit,
				Message:    "error: " + sentinel.Error(),
			},
		},
		{
			from: NewInternalServerError("error: %v", sentinel),
			exp: &HTTPError{
				HTTPStatus: http.StatusInternalServerError,
				ErrorCode:  ErrorCodeUnexpectedFailure,
				Message:    "error: " + sentinel.Error(),
			},
		},
	}

	for idx, test := range tests {
		t.Logf("tests #%v - from %v exp %#v", idx, test.from, test.exp)

		got, ok := test.from.(*HTTPError)
		require.True(t, ok)

		require.Equal(t, test.exp.HTTPStatus, got.HTTPStatus)
		require.Equal(t, test.exp.ErrorCode, got.ErrorCode)
		require.Equal(t, test.exp.Message, got.Message)
		require.Equal(t, test.exp.Error(), got.Error())
		require.Equal(t, test.exp.Cause(), got.Cause())
	}

	err := NewUnauthorizedError(ErrorCodeSIWESignatureInvalid, "Signature verification failed").
		WithInternalError(sentinel).
		WithInternalMessage(sentinel.Error())

	require.Equal(t, sentinel.Error(), err.Error())
	require.Equal(t, sentinel, err.Cause())
	require.True(t, err.Is(sentinel))
}
