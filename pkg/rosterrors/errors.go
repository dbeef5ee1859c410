// Package rosterrors provides the roster engine's unified error framework.
package rosterrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error classification.
type Code string

const (
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeTimeout      Code = "TIMEOUT"

	// Input validation, §4.1.
	CodeInputError Code = "INPUT_ERROR"

	// ICPMP / capacity, §4.2.
	CodeCapacityExceeded Code = "CAPACITY_EXCEEDED"

	// Solver, §4.4/4.5.
	CodeSolverInfeasible Code = "SOLVER_INFEASIBLE"
	CodeSolverFailed     Code = "SOLVER_FAILED"

	// Async job lifecycle, §4.7.
	CodeJobNotFound Code = "JOB_NOT_FOUND"
	CodeJobExpired  Code = "JOB_EXPIRED"
	CodeJobNotReady Code = "JOB_NOT_READY"
)

// AppError is the engine's structured error envelope.
type AppError struct {
	Code       Code                   `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
	Cause      error                  `json:"-"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New creates an AppError, assigning its HTTP status from code.
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: codeToHTTPStatus(code)}
}

// Wrap attaches code/message to an existing error.
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: codeToHTTPStatus(code), Cause: err}
}

func codeToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput, CodeInputError:
		return http.StatusBadRequest
	case CodeNotFound, CodeJobNotFound:
		return http.StatusNotFound
	case CodeJobExpired:
		return http.StatusGone
	case CodeJobNotReady:
		return http.StatusTooEarly
	case CodeTimeout:
		return http.StatusGatewayTimeout
	case CodeSolverInfeasible, CodeCapacityExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Is reports whether err is an AppError carrying code.
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the Code from err, or CodeUnknown.
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetHTTPStatus extracts the HTTP status from err.
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// InputError builds a field-scoped input validation error.
func InputError(field, reason string) *AppError {
	return New(CodeInputError, fmt.Sprintf("field '%s' invalid: %s", field, reason)).WithField("field", field)
}

// CapacityExceeded reports ICPMP being unable to source enough eligible
// employees for a requirement.
func CapacityExceeded(requirementID, reason string) *AppError {
	return New(CodeCapacityExceeded, fmt.Sprintf("requirement '%s': %s", requirementID, reason)).
		WithField("requirementId", requirementID)
}

// SolverInfeasible reports the solver exhausting its search without a
// feasible assignment under the hard constraint set.
func SolverInfeasible(reason string) *AppError {
	return New(CodeSolverInfeasible, reason)
}

// JobNotFound reports an unknown async job id.
func JobNotFound(jobID string) *AppError {
	return New(CodeJobNotFound, fmt.Sprintf("job '%s' not found", jobID)).WithField("jobId", jobID)
}

// JobExpired reports a job whose result TTL has lapsed.
func JobExpired(jobID string) *AppError {
	return New(CodeJobExpired, fmt.Sprintf("job '%s' result has expired", jobID)).WithField("jobId", jobID)
}

// JobNotReady reports a job still queued or running.
func JobNotReady(jobID string) *AppError {
	return New(CodeJobNotReady, fmt.Sprintf("job '%s' has not completed yet", jobID)).WithField("jobId", jobID)
}

// ValidationError is one field-level finding from pkg/validator.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors aggregates ValidationError entries for the input
// validator's error return (§4.1).
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (ve *ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s - %s", ve.Errors[0].Field, ve.Errors[0].Message)
}

func (ve *ValidationErrors) Add(field, message string) {
	ve.Errors = append(ve.Errors, ValidationError{Field: field, Message: message})
}

func (ve *ValidationErrors) HasErrors() bool { return len(ve.Errors) > 0 }

// ToAppError flattens the validation errors into a single AppError with
// one field entry per finding.
func (ve *ValidationErrors) ToAppError() *AppError {
	err := New(CodeInputError, "validation failed")
	err.Fields = make(map[string]interface{})
	for _, e := range ve.Errors {
		err.Fields[e.Field] = e.Message
	}
	return err
}
