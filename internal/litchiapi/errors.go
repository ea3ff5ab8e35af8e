package litchiapi

import "fmt"

// AuthError reports a rejected login.
type AuthError struct {
	Body string
}

func (e *AuthError) Error() string { return "authentication error: " + e.Body }

// HTTPError reports a non-2xx response from the API.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error (code: %d): %s", e.Status, e.Body)
}

// ResponseFormatError reports a 2xx response missing an expected field.
type ResponseFormatError struct {
	Msg  string
	Body string
}

func (e *ResponseFormatError) Error() string {
	return fmt.Sprintf("response format error: %s (%s)", e.Msg, e.Body)
}

// MissionFormatError reports a mission object that could not be decoded.
type MissionFormatError struct {
	Msg string
}

func (e *MissionFormatError) Error() string { return "invalid mission JSON format: " + e.Msg }
