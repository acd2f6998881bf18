// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidResponse indicates the exchange produced nothing usable: the
// request URL could not be built or the response body could not be read.
var ErrInvalidResponse = errors.New("backend: invalid response")

// HTTPStatusError is returned for any response with status >= 400.
type HTTPStatusError struct {
	StatusCode int
	// ServerMessage is the "error" field of the response envelope. It is nil
	// when the body was not a decodable envelope.
	ServerMessage *string
}

func (e *HTTPStatusError) Error() string {
	if e.ServerMessage != nil {
		return fmt.Sprintf("backend: HTTP %d: %s", e.StatusCode, *e.ServerMessage)
	}
	return fmt.Sprintf("backend: HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Message returns the server message, if one was decoded.
func (e *HTTPStatusError) Message() (string, bool) {
	if e.ServerMessage == nil {
		return "", false
	}
	return *e.ServerMessage, true
}

// DecodeError wraps a failure to decode a successful response body.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("backend: decode %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StatusCode extracts the HTTP status from err, if it is an HTTPStatusError.
func StatusCode(err error) (int, bool) {
	var se *HTTPStatusError
	if errors.As(err, &se) {
		return se.StatusCode, true
	}
	return 0, false
}

// IsUnauthorized reports whether err is an HTTP 401.
func IsUnauthorized(err error) bool {
	code, ok := StatusCode(err)
	return ok && code == http.StatusUnauthorized
}

// errorEnvelope is the backend's failure body.
type errorEnvelope struct {
	Error *string `json:"error"`
}

// newStatusError builds an HTTPStatusError, decoding the server message
// best-effort. Decode failure leaves ServerMessage nil.
func newStatusError(statusCode int, body []byte) *HTTPStatusError {
	se := &HTTPStatusError{StatusCode: statusCode}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		msg := *env.Error
		se.ServerMessage = &msg
	}
	return se
}
