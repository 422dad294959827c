// Package report assembles daily, weekly and historical feedback reports
// and wraps them in the envelopes printed by the CLI and served over HTTP.
package report

import (
	"errors"
	"fmt"
	"time"
)

// Status is the outcome of a report run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusNoData  Status = "no_data"
)

// Reasons for a no_data envelope.
const (
	NoDataFutureDate = "future_date"
	NoDataNoFeedback = "no_feedback"
)

// Envelope is the JSON object every successful run prints. Exactly one of
// the date field groups is set, depending on the report.
type Envelope struct {
	Status  Status `json:"status"`
	Type    string `json:"type,omitempty"`
	Message string `json:"message,omitempty"`

	Date string `json:"date,omitempty"`

	WeekStart string `json:"weekStart,omitempty"`
	WeekEnd   string `json:"weekEnd,omitempty"`

	StartDate    string `json:"startDate,omitempty"`
	EndDate      string `json:"endDate,omitempty"`
	AnalysisType string `json:"analysisType,omitempty"`

	Data any `json:"data,omitempty"`
}

// NoData reports whether the envelope carries the no_data status.
func (e *Envelope) NoData() bool {
	return e != nil && e.Status == StatusNoData
}

// Code is an error taxonomy label.
type Code string

const (
	CodeInvalidDate Code = "INVALID_DATE"
	CodeInvalidArgs Code = "INVALID_ARGS"
	CodeUsage       Code = "USAGE_ERROR"
	CodeDatabase    Code = "DATABASE_ERROR"
	CodeAnalysis    Code = "ANALYSIS_ERROR"
)

// Error is a report failure tagged with a taxonomy code.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.text())
}

func (e *Error) text() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: cause}
}

// AsError converts any error to an *Error. Untagged errors become
// ANALYSIS_ERROR.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return re
	}
	return &Error{Code: CodeAnalysis, Message: err.Error(), Err: err}
}

// ErrorEnvelope is the JSON object printed for a failed run.
type ErrorEnvelope struct {
	Error     bool   `json:"error"`
	Type      Code   `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
}

// Render returns the single object to print for a run: the error envelope
// when err is set, otherwise env.
func Render(env *Envelope, err error, now time.Time) any {
	if err != nil {
		re := AsError(err)
		return &ErrorEnvelope{
			Error:     true,
			Type:      re.Code,
			Message:   re.text(),
			Timestamp: now.Format(time.RFC3339),
		}
	}
	if env == nil {
		return &ErrorEnvelope{
			Error:     true,
			Type:      CodeAnalysis,
			Message:   "report produced no result",
			Timestamp: now.Format(time.RFC3339),
		}
	}
	return env
}
