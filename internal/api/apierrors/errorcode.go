package apierrors

type ErrorCode = string

const (
	// ErrorCodeUnknown should not be used directly, it only indicates a failure in the error handling system in such a way that an error code was not assigned properly.
	ErrorCodeUnknown ErrorCode = "unknown"

	// ErrorCodeUnexpectedFailure signals an unexpected failure such as a 500 Internal Server Error.
	ErrorCodeUnexpectedFailure ErrorCode = "unexpected_failure"

	ErrorCodeValidationFailed     ErrorCode = "validation_failed"
	ErrorCodeBadJSON              ErrorCode = "bad_json"
	ErrorCodeRequestTimeout       ErrorCode = "request_timeout"
	ErrorCodeOverRequestRateLimit ErrorCode = "over_request_rate_limit"

	ErrorCodeSIWEMessageExpired     ErrorCode = "siwe_message_expired"
	ErrorCodeSIWEMessageNotYetValid ErrorCode = "siwe_message_not_yet_valid"
	ErrorCodeSIWENonceMismatch      ErrorCode = "siwe_nonce_mismatch"
	ErrorCodeSIWENonceInvalid       ErrorCode = "siwe_nonce_invalid"
	ErrorCodeSIWENonceReused        ErrorCode = "siwe_nonce_reused"
	ErrorCodeSIWEStatementMismatch  ErrorCode = "siwe_statement_mismatch"
	ErrorCodeSIWERequestIDMismatch  ErrorCode = "siwe_request_id_mismatch"
	ErrorCodeSIWEAddressMismatch    ErrorCode = "siwe_address_mismatch"
	ErrorCodeSIWESignatureInvalid   ErrorCode = "siwe_signature_invalid"
)
