package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// Error is the decoded form of the storage API's error body,
// {"statusCode": ..., "error": ..., "message": ...}. HTTPStatus is the
// status of the response that carried it; the service reports statusCode
// as either a number or a string depending on version, so it is kept as
// received.
type Error struct {
	HTTPStatus int
	StatusCode string
	Code       string
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("storage: %s (status %d)", e.Message, e.HTTPStatus)
	}
	return fmt.Sprintf("storage: request failed with status %d", e.HTTPStatus)
}

// IsNotFound reports whether err represents a missing bucket or object.
func IsNotFound(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.HTTPStatus == http.StatusNotFound || apiErr.StatusCode == "404"
}

// newAPIError reads the response body and builds an *Error. A body that is
// not the expected JSON shape is preserved verbatim in Message.
func newAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var raw struct {
		StatusCode json.Number `json:"statusCode"`
		Code       string      `json:"error"`
		Message    string      `json:"message"`
	}
	apiErr := &Error{HTTPStatus: resp.StatusCode}
	if err := json.Unmarshal(body, &raw); err == nil && raw.Message != "" {
		apiErr.StatusCode = raw.StatusCode.String()
		apiErr.Code = raw.Code
		apiErr.Message = raw.Message
	} else {
		apiErr.Message = string(body)
	}
	return apiErr
}
