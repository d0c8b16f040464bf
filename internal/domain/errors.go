package domain

import "fmt"

// Reason identifies why a file was rejected or an upload failed.
type Reason string

const (
	// Validation rejections. Terminal for the paste event, never retried.
	ReasonUnsupportedType   Reason = "unsupported_type"
	ReasonTooLarge          Reason = "too_large"
	ReasonSignatureMismatch Reason = "signature_mismatch"

	// Upload failures. Transport-level ones are retried up to the budget.
	ReasonTransportFailure  Reason = "transport_failure"
	ReasonNonSuccessStatus  Reason = "non_success_status"
	ReasonMalformedResponse Reason = "malformed_response"

	// Relay gate failures.
	ReasonRateLimited      Reason = "rate_limited"
	ReasonUnauthorized     Reason = "unauthorized"
	ReasonPermissionDenied Reason = "permission_denied"
	ReasonInvalidRequest   Reason = "invalid_request"
)

// UploadError is the structured failure an uploader surfaces. Message is
// user-presentable; Reason drives retry and metrics decisions.
type UploadError struct {
	Reason  Reason
	Message string
}

func (e *UploadError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Reason)
}

func NewUploadError(reason Reason, format string, args ...any) *UploadError {
	return &UploadError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Retryable reports whether a failed attempt with this reason may be tried
// again. Validation and gate rejections are final.
func (e *UploadError) Retryable() bool {
	switch e.Reason {
	case ReasonTransportFailure, ReasonNonSuccessStatus, ReasonMalformedResponse:
		return true
	}
	return false
}
