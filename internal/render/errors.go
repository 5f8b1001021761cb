package render

import (
	"errors"
	"fmt"
)

// VerifyErrorCode categorizes verification failures.
type VerifyErrorCode string

const (
	// ErrCodeFrameworkNotReady means the identity framework has not loaded.
	ErrCodeFrameworkNotReady VerifyErrorCode = "FRAMEWORK_NOT_READY"

	// ErrCodeMetaNotFound means the sender's meta is not known yet.
	ErrCodeMetaNotFound VerifyErrorCode = "META_NOT_FOUND"

	// ErrCodeInvalidSender means the sender could not be resolved to an ID.
	ErrCodeInvalidSender VerifyErrorCode = "INVALID_SENDER"

	// ErrCodeSignatureMismatch means the signature did not verify.
	ErrCodeSignatureMismatch VerifyErrorCode = "SIGNATURE_MISMATCH"
)

// VerifyError describes why a message was not verified.
type VerifyError struct {
	Code    VerifyErrorCode
	Message string
	Sender  string
	Err     error
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	if e.Sender != "" {
		return fmt.Sprintf("%s: %s (sender=%s)", e.Code, e.Message, e.Sender)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *VerifyError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a later readiness event can fix the failure.
func (e *VerifyError) Retryable() bool {
	return e.Code == ErrCodeFrameworkNotReady || e.Code == ErrCodeMetaNotFound
}

// IsRetryable returns true if err is a VerifyError that re-suspends the
// message. Uses errors.As to handle wrapped errors.
func IsRetryable(err error) bool {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return ve.Retryable()
	}
	return false
}

// IsDropped returns true if err is a VerifyError that drops the message.
func IsDropped(err error) bool {
	var ve *VerifyError
	if errors.As(err, &ve) {
		return !ve.Retryable()
	}
	return false
}

func newVerifyError(code VerifyErrorCode, sender, msg string, err error) *VerifyError {
	return &VerifyError{Code: code, Message: msg, Sender: sender, Err: err}
}
