package errs

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type ValidationError struct {
	ErrorMessage
}

type InvalidJSONError struct {
	ErrorMessage
}

type UnauthorizedError struct {
	ErrorMessage
}

type RateLimitedError struct {
	ErrorMessage
	RetryAfterSeconds int
}

type DatabaseError struct {
	ErrorMessage
	Operation string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewInvalidJSONError() *InvalidJSONError {
	return &InvalidJSONError{
		ErrorMessage: ErrorMessage{Message: "request body is not valid JSON"},
	}
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewRateLimitedError(retryAfterSeconds int) *RateLimitedError {
	return &RateLimitedError{
		ErrorMessage:      ErrorMessage{Message: "too many requests"},
		RetryAfterSeconds: retryAfterSeconds,
	}
}

func NewDatabaseError(operation string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: err.Error()},
		Operation:    operation,
	}
}
