package domain

import (
	"errors"
	"fmt"
)

// NotFoundError reports an unknown application, job, or resume id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// InvalidStatusError reports a status outside the closed status set.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid application status: %q", e.Status)
}

// ValidationError reports a malformed request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// PersistenceError reports that the durable store rejected an operation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// AgentError reports an agent call that failed in transport or was rejected.
type AgentError struct {
	Action  string
	Message string
	Err     error
}

func (e *AgentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("agent %s failed: %s: %v", e.Action, e.Message, e.Err)
	}
	return fmt.Sprintf("agent %s failed: %s", e.Action, e.Message)
}

func (e *AgentError) Unwrap() error {
	return e.Err
}

// StorageError reports an object storage failure for resume files.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Error codes carried in API error bodies.
const (
	CodeBadRequest         = "bad_request"
	CodeNotFound           = "not_found"
	CodeInvalidStatus      = "invalid_status"
	CodePersistenceFailure = "persistence_failure"
	CodeAgentFailure       = "agent_failure"
	CodeStorageFailure     = "storage_failure"
	CodeInternal           = "internal_error"
)

// ErrorCode classifies err for API responses.
func ErrorCode(err error) string {
	var (
		nf *NotFoundError
		is *InvalidStatusError
		ve *ValidationError
		pe *PersistenceError
		ae *AgentError
		se *StorageError
	)
	switch {
	case errors.As(err, &is):
		return CodeInvalidStatus
	case errors.As(err, &ve):
		return CodeBadRequest
	case errors.As(err, &nf):
		return CodeNotFound
	case errors.As(err, &pe):
		return CodePersistenceFailure
	case errors.As(err, &ae):
		return CodeAgentFailure
	case errors.As(err, &se):
		return CodeStorageFailure
	default:
		return CodeInternal
	}
}
