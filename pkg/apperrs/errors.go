// Package apperrs defines the error taxonomy surfaced by HTTP handlers.
// Handlers map these to status buckets: validation 400, not-found 404,
// everything else 500 with the backend message preserved.
package apperrs

import "fmt"

// ValidationError indicates a missing or malformed caller-supplied field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NotFoundError indicates an unknown video, session, or result key.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ConfigurationError indicates a required environment value is absent.
// Required identifiers are never silently defaulted.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("required configuration %s is not set", e.Key)
}

// JobSubmissionError indicates the external analysis service rejected the
// job request (bad ARN, permission denial, malformed input).
type JobSubmissionError struct {
	Err error
}

func (e *JobSubmissionError) Error() string {
	return fmt.Sprintf("failed to start analysis job: %v", e.Err)
}

func (e *JobSubmissionError) Unwrap() error { return e.Err }

// JobFailedError indicates the external job reached a Failed or Cancelled
// terminal state. Message is the backend's error text, verbatim.
type JobFailedError struct {
	Status  string
	Message string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("analysis job %s: %s", e.Status, e.Message)
}

// JobTimeoutError indicates the poll loop exceeded its ceiling.
type JobTimeoutError struct {
	Elapsed string
}

func (e *JobTimeoutError) Error() string {
	return fmt.Sprintf("analysis job timed out after %s", e.Elapsed)
}

// ResultRetrievalError indicates the job reported success but its outputs
// could not be read. Hard failure; the source job will not re-run.
type ResultRetrievalError struct {
	Msg string
}

func (e *ResultRetrievalError) Error() string { return e.Msg }

// AgentNotConfiguredError indicates no conversational agent identifier is
// configured for this deployment.
type AgentNotConfiguredError struct{}

func (e *AgentNotConfiguredError) Error() string {
	return "conversational agent is not configured"
}
