package errs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bookcatalog/catalog-service/catalog/internal/model"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidQuery       = errors.New("query is empty")
	ErrInvalidPaging      = errors.New("page and size must be positive")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ValidationError aggregates every failing field rule of a candidate.
type ValidationError struct {
	Violations []model.Violation
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

type ValidationErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func NewValidationErrorResponse(violations []model.Violation) ValidationErrorResponse {
	resp := ValidationErrorResponse{
		Message: "validation failed",
		Errors:  make(map[string]string, len(violations)),
	}
	for _, v := range violations {
		resp.Errors[v.Field] = v.Reason
	}
	return resp
}
