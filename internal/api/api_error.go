// Package api provides the HTTP surface of the waitlist service: a chi
// router, context-state response handling, and the signup, count, and admin
// handlers.
//
// This file contains the error types used for structured API error
// responses. The wire shape is a flat {"error": "<message>"} object, which is
// the contract the landing page depends on.
package api

import (
	"net/http"
)

// APIError represents an API error response. Status is carried out-of-band;
// only the message is serialized.
type APIError struct {
	Message string `json:"error"`
	Status  int    `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// Is implements errors.Is for comparing errors by status.
func (e *APIError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Status == t.Status
}

// With returns a copy of the error with a custom message.
func (e *APIError) With(message string) *APIError {
	if e == nil {
		return nil
	}
	dup := *e
	dup.Message = message
	return &dup
}

// Predefined sentinel errors
var (
	ErrBadRequest       = &APIError{Message: "Bad request", Status: http.StatusBadRequest}
	ErrUnauthorized     = &APIError{Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrMethodNotAllowed = &APIError{Message: "Method not allowed", Status: http.StatusMethodNotAllowed}
	ErrRateLimited      = &APIError{Message: "Too many signups. Please try again later.", Status: http.StatusTooManyRequests}
	ErrInternal         = &APIError{Message: "Internal server error", Status: http.StatusInternalServerError}
)
