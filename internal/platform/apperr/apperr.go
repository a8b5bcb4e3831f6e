// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the centralized error handling framework for the reader.

It provides a rich error type that bridges the gap between low-level storage
backend failures and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable Code and a user-facing message.
  - Taxonomy: Configuration, Transport, Network and Decode errors mirror the
    ways a listing or a document download can fail.
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeValidation    = "VALIDATION_ERROR"
	CodeBusy          = "BUSY"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeTransport     = "TRANSPORT_ERROR"
	CodeNetwork       = "NETWORK_ERROR"
	CodeDecode        = "DECODE_ERROR"
	CodeInternal      = "INTERNAL_ERROR"
)

// AppError is the canonical error type for the reader API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging only and is never sent to clients
// to avoid leaking internal implementation details (e.g., the API key in a URL).
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "TRANSPORT_ERROR").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"error"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// UpstreamStatus is the storage backend's status for TRANSPORT_ERROR.
	UpstreamStatus int `json:"upstream_status,omitempty"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Story") // Returns "Story not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// Busy creates a 409 [AppError] for an action already in flight.
func Busy(msg string) *AppError {
	return &AppError{
		Code:       CodeBusy,
		Message:    msg,
		HTTPStatus: http.StatusConflict,
	}
}

// Decode creates a 422 [AppError] for a payload that is not a readable document.
func Decode(msg string) *AppError {
	return &AppError{
		Code:       CodeDecode,
		Message:    msg,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// # Server & Upstream Errors (5xx)

// Configuration creates a 503 [AppError] for missing startup settings.
func Configuration(msg string) *AppError {
	return &AppError{
		Code:       CodeConfiguration,
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// Transport creates a 502 [AppError] for a non-success storage backend status.
func Transport(upstreamStatus int, cause error) *AppError {
	return &AppError{
		Code:           CodeTransport,
		Message:        fmt.Sprintf("HTTP %d", upstreamStatus),
		HTTPStatus:     http.StatusBadGateway,
		UpstreamStatus: upstreamStatus,
		Cause:          cause,
	}
}

// Network creates a 502 [AppError] for a request that never got a response.
func Network(cause error) *AppError {
	return &AppError{
		Code:       CodeNetwork,
		Message:    "Storage backend unreachable",
		HTTPStatus: http.StatusBadGateway,
		Cause:      cause,
	}
}

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging but is never sent to the client.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// HasCode reports whether err carries an [*AppError] with the given code.
func HasCode(err error, code string) bool {
	ae := As(err)
	return ae != nil && ae.Code == code
}
