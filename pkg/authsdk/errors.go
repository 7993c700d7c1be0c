package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoRefreshToken is returned when a session operation needs the
	// refresh cookie but the session does not hold one.
	ErrNoRefreshToken = errors.New("authsdk: no refresh token")

	// ErrMissingRefreshCookie is returned when login or refresh succeeded but
	// the response did not set the refresh cookie.
	ErrMissingRefreshCookie = errors.New("authsdk: response did not set the refresh cookie")
)

// APIError is a non-2xx answer from the service. Errors holds the field
// errors of the body when the service sent any.
type APIError struct {
	StatusCode int
	Errors     []FieldMessage
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("authsdk: HTTP %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return fmt.Sprintf("authsdk: HTTP %d: %s", e.StatusCode, strings.Join(parts, "; "))
}

// Field returns the message reported for field, if any.
func (e *APIError) Field(field string) (string, bool) {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Message, true
		}
	}
	return "", false
}

// StatusCode extracts the HTTP status of an *APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, code int) bool {
	return StatusCode(err) == code
}

// parseErrorResponse turns a non-2xx response into an *APIError. A body that
// is not an errorsMessages document is ignored.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	var msgs ErrorsMessages
	if err := json.Unmarshal(body, &msgs); err == nil {
		apiErr.Errors = msgs.ErrorsMessages
	}
	return apiErr
}
