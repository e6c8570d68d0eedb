package usecase

// Stable error codes surfaced to API callers.
const (
	CodeValidation    = "validation_failed"
	CodeNoUpdates     = "no_updates"
	CodeNotFound      = "not_found"
	CodeNotApplicable = "not_applicable"
	CodeForbidden     = "forbidden"
	CodeInternal      = "internal_error"
)

// DomainError is a business-rule failure the caller can correct: validation,
// state conflicts, authorization. Fields carries the field->message map for
// validation failures.
type DomainError struct {
	Code    string
	Message string
	Fields  map[string]string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	_, ok := err.(*DomainError)
	return ok
}

func NewValidationError(errs []ValidationError) *DomainError {
	fields := make(map[string]string, len(errs))
	for _, e := range errs {
		if _, dup := fields[e.Field]; !dup {
			fields[e.Field] = e.Message
		}
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed",
		Fields:  fields,
	}
}

// TechnicalError is an infrastructure failure. It is logged internally and
// surfaced to callers as a generic failure without internal detail.
type TechnicalError struct {
	Code    string
	Message string
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func IsTechnicalError(err error) bool {
	_, ok := err.(*TechnicalError)
	return ok
}
