package facebook

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the closed set of adapter failure classes.
type ErrorKind string

const (
	KindAuthInvalid       ErrorKind = "auth_invalid"
	KindPermissionDenied  ErrorKind = "permission_denied"
	KindNotFound          ErrorKind = "not_found"
	KindRateLimited       ErrorKind = "rate_limited"
	KindTransientNetwork  ErrorKind = "transient_network"
	KindMalformedResponse ErrorKind = "malformed_response"
)

// Graph API error codes used for classification.
const (
	codeUnknown          = 1
	codeService          = 2
	codeTooManyCalls     = 4
	codePermission       = 10
	codeUserRequestLimit = 17
	codeRateLimit        = 32
	codeInvalidParameter = 100
	codeAccessToken      = 190
	codePageRequestLimit = 613
	codePermissionFirst  = 200
	codePermissionLast   = 299
)

type APIError struct {
	Kind      ErrorKind
	Status    int
	Code      int
	Subcode   int
	Type      string
	Message   string
	FBTraceID string
	Err       error
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("facebook api error (%s): status=%d code=%d subcode=%d message=%s",
			e.Kind, e.Status, e.Code, e.Subcode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("facebook api error (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("facebook api error (%s): status=%d %s", e.Kind, e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the same request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.Kind == KindRateLimited || e.Kind == KindTransientNetwork
}

// KindOf returns the adapter kind carried by err, or "" for foreign errors.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsRetryable reports whether err is an adapter error worth retrying.
func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

type graphErrorBody struct {
	Error *struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		Subcode   int    `json:"error_subcode"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func classify(status, code int) ErrorKind {
	switch {
	case code == codeAccessToken:
		return KindAuthInvalid
	case code == codeTooManyCalls, code == codeUserRequestLimit, code == codeRateLimit, code == codePageRequestLimit:
		return KindRateLimited
	case code == codePermission, code >= codePermissionFirst && code <= codePermissionLast:
		return KindPermissionDenied
	case code == codeInvalidParameter:
		return KindNotFound
	case code == codeUnknown, code == codeService:
		return KindTransientNetwork
	}

	switch {
	case status == http.StatusUnauthorized:
		return KindAuthInvalid
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindTransientNetwork
	}
	return KindPermissionDenied
}
