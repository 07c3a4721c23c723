// Package errors defines the client-facing error taxonomy for the channel
// layer. Every error carries a machine-stable code, a human-readable message
// and the HTTP status it maps to. Internal detail never reaches the caller.
package errors

import (
	"errors"
	"net/http"
)

// Stable error codes.
const (
	CodeInvalidName         = "INVALID_NAME"
	CodeInvalidDescription  = "INVALID_DESCRIPTION"
	CodeInvalidFee          = "INVALID_FEE"
	CodeInvalidAddress      = "INVALID_ADDRESS"
	CodeInvalidURL          = "INVALID_URL"
	CodeInvalidContactLink  = "INVALID_CONTACT_LINK"
	CodeDuplicateChannel    = "DUPLICATE_CHANNEL"
	CodeNotFound            = "NOT_FOUND"
	CodeInvalidPayerAddress = "INVALID_PAYER_ADDRESS"
	CodeInsufficientFunds   = "INSUFFICIENT_FUNDS"
	CodeLedgerUnavailable   = "LEDGER_UNAVAILABLE"
	CodeStorageRead         = "STORAGE_READ_ERROR"
	CodeStorageWrite        = "STORAGE_WRITE_ERROR"
	CodeRateLimited         = "RATE_LIMITED"
	CodeInternal            = "INTERNAL"
)

// Error is a typed service error.
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"error"`
	HTTPStatus int    `json:"-"`
}

func (e *Error) Error() string { return e.Message }

// New constructs a typed error.
func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: status}
}

func InvalidName(msg string) *Error {
	return New(CodeInvalidName, msg, http.StatusBadRequest)
}

func InvalidDescription(msg string) *Error {
	return New(CodeInvalidDescription, msg, http.StatusBadRequest)
}

func InvalidFee(msg string) *Error {
	return New(CodeInvalidFee, msg, http.StatusBadRequest)
}

func InvalidAddress(msg string) *Error {
	return New(CodeInvalidAddress, msg, http.StatusBadRequest)
}

func InvalidURL(msg string) *Error {
	return New(CodeInvalidURL, msg, http.StatusBadRequest)
}

func InvalidContactLink(msg string) *Error {
	return New(CodeInvalidContactLink, msg, http.StatusBadRequest)
}

func DuplicateChannel(route string) *Error {
	return New(CodeDuplicateChannel, "channel already registered for route "+route, http.StatusConflict)
}

func NotFound(msg string) *Error {
	return New(CodeNotFound, msg, http.StatusNotFound)
}

func InvalidPayerAddress(msg string) *Error {
	return New(CodeInvalidPayerAddress, msg, http.StatusBadRequest)
}

func InsufficientFunds(msg string) *Error {
	return New(CodeInsufficientFunds, msg, http.StatusBadRequest)
}

func LedgerUnavailable(msg string) *Error {
	return New(CodeLedgerUnavailable, msg, http.StatusServiceUnavailable)
}

func StorageRead(msg string) *Error {
	return New(CodeStorageRead, msg, http.StatusInternalServerError)
}

func StorageWrite(msg string) *Error {
	return New(CodeStorageWrite, msg, http.StatusInternalServerError)
}

func RateLimited() *Error {
	return New(CodeRateLimited, "too many requests", http.StatusTooManyRequests)
}

// From coerces any error into a typed Error. Unknown errors map to a generic
// internal error so no internal state leaks to the client.
func From(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return New(CodeInternal, "internal error", http.StatusInternalServerError)
}

// Code returns the stable code for an error, or CodeInternal for untyped ones.
func Code(err error) string {
	return From(err).Code
}
