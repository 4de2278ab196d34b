package domain

// SubmissionStatus discriminates the two branches of a submission outcome.
type SubmissionStatus string

const (
	StatusOK    SubmissionStatus = "ok"
	StatusError SubmissionStatus = "error"
)

// ErrorKind enumerates the closed taxonomy of classified failures.
type ErrorKind string

const (
	ErrValidation        ErrorKind = "VALIDATION_ERROR"
	ErrParentTask        ErrorKind = "OET_PARENT_TASK_ERROR"
	ErrBackendAuth       ErrorKind = "OET_AUTH_ERROR"
	ErrBackendValidation ErrorKind = "OET_VALIDATION_ERROR"
	ErrGenericBackend    ErrorKind = "OET_ERROR"
	ErrService           ErrorKind = "OET_SERVICE_ERROR"
)

// SubmissionResult is the typed outcome of one incident submission.
// Exactly one branch is populated: StatusOK carries TaskID/Message,
// StatusError carries Code and optionally OetCode, Errors, Retryable.
type SubmissionResult struct {
	Status    SubmissionStatus
	TaskID    string
	Message   string
	Code      ErrorKind
	OetCode   string
	Errors    []string
	Retryable bool
}

// OK builds a success result. taskID may be empty when the backend
// message did not carry a task number.
func OK(taskID, message string) SubmissionResult {
	return SubmissionResult{Status: StatusOK, TaskID: taskID, Message: message}
}

// Rejected builds a local validation failure carrying field errors.
func Rejected(errs []string) SubmissionResult {
	return SubmissionResult{Status: StatusError, Code: ErrValidation, Errors: errs}
}

// BackendFailure builds a classified backend failure.
func BackendFailure(kind ErrorKind, oetCode, message string) SubmissionResult {
	return SubmissionResult{Status: StatusError, Code: kind, OetCode: oetCode, Message: message}
}

// RetryableFailure builds a transport-timeout failure, the only kind
// callers may retry.
func RetryableFailure(message string) SubmissionResult {
	return SubmissionResult{Status: StatusError, Code: ErrService, Message: message, Retryable: true}
}
