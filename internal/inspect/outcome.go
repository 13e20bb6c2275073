package inspect

import "encoding/json"

// Status is the outcome tag of one inspector invocation.
type Status string

// Outcome status constants.
const (
	StatusSuccess       Status = "success"
	StatusError         Status = "error"
	StatusNotApplicable Status = "not_applicable"
	StatusSkipped       Status = "skipped"
)

// Outcome is the result of running one inspector against one artifact.
// Exactly one outcome exists per (inspector, artifact) execution; it is
// immutable once constructed. An inspector's own failure is expressed as an
// Error outcome, never as a returned error, so one inspector failing never
// aborts the others.
type Outcome struct {
	status  Status
	value   any
	message string
	reason  string
	warning bool
	partial bool
}

// Success creates a successful outcome. value may carry inspector-specific
// data; a map[string]any value is treated as metrics by the orchestrator.
func Success(value any) Outcome {
	return Outcome{status: StatusSuccess, value: value}
}

// Failure creates an error outcome with the given message.
func Failure(message string) Outcome {
	return Outcome{status: StatusError, message: message}
}

// NotApplicable creates an outcome for an artifact outside the inspector's remit.
func NotApplicable() Outcome {
	return Outcome{status: StatusNotApplicable}
}

// Skipped creates an outcome for an invocation deliberately not performed.
func Skipped(reason string) Outcome {
	return Outcome{status: StatusSkipped, reason: reason}
}

// WithWarning returns a copy annotated as a warning.
func (o Outcome) WithWarning() Outcome {
	o.warning = true
	return o
}

// WithPartial returns a copy annotated as partial.
func (o Outcome) WithPartial() Outcome {
	o.partial = true
	return o
}

// Status returns the outcome tag.
func (o Outcome) Status() Status { return o.status }

// IsSuccess reports whether the outcome is a success.
func (o Outcome) IsSuccess() bool { return o.status == StatusSuccess }

// Value returns the success payload, or nil.
func (o Outcome) Value() any { return o.value }

// Message returns the error message for Error outcomes.
func (o Outcome) Message() string { return o.message }

// Reason returns the skip reason for Skipped outcomes.
func (o Outcome) Reason() string { return o.reason }

// Warning reports whether the outcome carries the warning annotation.
func (o Outcome) Warning() bool { return o.warning }

// Partial reports whether the outcome carries the partial annotation.
func (o Outcome) Partial() bool { return o.partial }

// Metrics returns the success payload as a metrics map, or nil if the
// payload is absent or of another shape.
func (o Outcome) Metrics() map[string]any {
	m, _ := o.value.(map[string]any)
	return m
}

// MarshalJSON serializes the outcome for report artifacts.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Status  Status `json:"status"`
		Value   any    `json:"value,omitempty"`
		Message string `json:"message,omitempty"`
		Reason  string `json:"reason,omitempty"`
		Warning bool   `json:"warning,omitempty"`
		Partial bool   `json:"partial,omitempty"`
	}{o.status, o.value, o.message, o.reason, o.warning, o.partial})
}
