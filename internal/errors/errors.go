package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrInvalidOperation = new(ErrCodeInvalidOperation, "invalid operation")
	ErrHTTPClient       = new(ErrCodeHTTPClient, "http client error")
	ErrSystem           = new(ErrCodeSystemError, "system error")

	// Pricing taxonomy
	ErrInvalidDateRange    = new(ErrCodeInvalidDateRange, "invalid date range")
	ErrRuleNotFound        = new(ErrCodeRuleNotFound, "pricing rule not found")
	ErrNoApplicableRule    = new(ErrCodeNoApplicableRule, "no applicable pricing rule")
	ErrNoMatchingTier      = new(ErrCodeNoMatchingTier, "no matching pricing tier")
	ErrInvalidRuleConfig   = new(ErrCodeInvalidRuleConfig, "invalid pricing rule configuration")
	ErrUpstreamUnavailable = new(ErrCodeUpstreamUnavailable, "pricing catalog unavailable")
)

// statusCodes maps errors to http status codes.
// Ordered from the most specific sentinel so that an error carrying several marks
// resolves to the same status every time.
var statusCodes = []struct {
	err    error
	status int
}{
	{ErrInvalidDateRange, http.StatusBadRequest},
	{ErrRuleNotFound, http.StatusNotFound},
	{ErrNoApplicableRule, http.StatusUnprocessableEntity},
	{ErrNoMatchingTier, http.StatusUnprocessableEntity},
	{ErrInvalidRuleConfig, http.StatusUnprocessableEntity},
	{ErrUpstreamUnavailable, http.StatusBadGateway},
	{ErrNotFound, http.StatusNotFound},
	{ErrValidation, http.StatusBadRequest},
	{ErrInvalidOperation, http.StatusBadRequest},
	{ErrHTTPClient, http.StatusInternalServerError},
	{ErrSystem, http.StatusInternalServerError},
}

const (
	ErrCodeHTTPClient       = "http_client_error"
	ErrCodeSystemError      = "system_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeValidation       = "validation_error"
	ErrCodeInvalidOperation = "invalid_operation"

	ErrCodeInvalidDateRange    = "invalid_date_range"
	ErrCodeRuleNotFound        = "rule_not_found"
	ErrCodeNoApplicableRule    = "no_applicable_rule"
	ErrCodeNoMatchingTier      = "no_matching_tier"
	ErrCodeInvalidRuleConfig   = "invalid_rule_config"
	ErrCodeUpstreamUnavailable = "upstream_unavailable"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

// New creates a new InternalError carrying the given code
func New(code string, message string) *InternalError {
	return new(code, message)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

func IsInvalidDateRange(err error) bool {
	return errors.Is(err, ErrInvalidDateRange)
}

func IsRuleNotFound(err error) bool {
	return errors.Is(err, ErrRuleNotFound)
}

func IsNoApplicableRule(err error) bool {
	return errors.Is(err, ErrNoApplicableRule)
}

func IsNoMatchingTier(err error) bool {
	return errors.Is(err, ErrNoMatchingTier)
}

func IsInvalidRuleConfig(err error) bool {
	return errors.Is(err, ErrInvalidRuleConfig)
}

func IsUpstreamUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}

func HTTPStatusFromErr(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}
