package domain

// Status is the outcome of an orchestrator operation. The transport layer maps
// each value onto exactly one HTTP status code.
type Status int

const (
	StatusSuccess Status = iota
	StatusCreated
	StatusNoContent
	StatusBadRequest
	StatusUnauthorized
	StatusForbidden
	StatusNotFound
	StatusServerError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusCreated:
		return "created"
	case StatusNoContent:
		return "no_content"
	case StatusBadRequest:
		return "bad_request"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusForbidden:
		return "forbidden"
	case StatusNotFound:
		return "not_found"
	case StatusServerError:
		return "server_error"
	default:
		return "unknown"
	}
}

// FieldError names the offending input field and a human readable message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// None is the payload of operations that only report a status.
type None = struct{}

// Result is the uniform return value of every orchestrator operation.
// Expected business failures are carried in Status and Errors. Err holds the
// diagnostic cause of a StatusServerError and is for logs only.
type Result[T any] struct {
	Status Status
	Errors []FieldError
	Data   T
	Err    error
}

// Ok returns a successful result carrying data.
func Ok[T any](status Status, data T) Result[T] {
	return Result[T]{Status: status, Data: data}
}

// Fail returns a business failure with zero or more field errors.
func Fail[T any](status Status, errs ...FieldError) Result[T] {
	return Result[T]{Status: status, Errors: errs}
}

// Internal wraps an unexpected collaborator failure.
func Internal[T any](err error) Result[T] {
	return Result[T]{Status: StatusServerError, Err: err}
}

// Succeeded reports whether the status is one of the 2xx outcomes.
func (r Result[T]) Succeeded() bool {
	return r.Status <= StatusNoContent
}
