package errors

import "fmt"

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeIO          ErrorType = "io"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a fetch or persistence error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s error (code %d) for %s: %s", e.Type, e.Code, e.URL, e.Message)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error
func New(errorType ErrorType, code int, url, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
		URL:     url,
	}
}

// FromStatusCode maps a non-2xx HTTP status code to a typed error
func FromStatusCode(statusCode int, url string) *Error {
	switch {
	case statusCode == 404:
		return New(ErrorTypeNotFound, statusCode, url, "resource not found")
	case statusCode == 429:
		return New(ErrorTypeRateLimit, statusCode, url, "rate limit exceeded")
	case statusCode >= 500:
		return New(ErrorTypeServerError, statusCode, url, "server error")
	default:
		return New(ErrorTypeUnknown, statusCode, url, "unexpected status code: %d", statusCode)
	}
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500
	}
}
