package notion

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the API that this package distinguishes.
const (
	CodeUnauthorized       = "unauthorized"
	CodeRestrictedResource = "restricted_resource"
	CodeObjectNotFound     = "object_not_found"
	CodeValidation         = "validation_error"
)

// Error is an error response from the Notion API.
type Error struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion: %s (%d %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("notion: %s (%d)", e.Message, e.Status)
}

// IsAuthError reports whether err means the integration token is invalid or
// lacks access. Such errors are fatal for the whole run.
func IsAuthError(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch {
	case apiErr.Status == http.StatusUnauthorized:
		return true
	case apiErr.Code == CodeUnauthorized:
		return true
	case apiErr.Code == CodeRestrictedResource:
		return true
	case apiErr.Status == http.StatusForbidden:
		return true
	}
	return false
}

// IsNotFound reports whether err is an object_not_found API error.
func IsNotFound(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusNotFound || apiErr.Code == CodeObjectNotFound
}
