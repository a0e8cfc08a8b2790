package repo

import (
	"fmt"

	"reviewpilot-core/internal/apperror"
)

// Predefined domain errors

func ErrRepositoryNotFound(id string) *apperror.Error {
	return &apperror.Error{
		Kind:    apperror.KindNotFound,
		Code:    "REPOSITORY_NOT_FOUND",
		Message: fmt.Sprintf("repository %s not found", id),
	}
}

func ErrInvalidRepositoryData(field string, err error) *apperror.Error {
	return &apperror.Error{
		Kind:    apperror.KindValidation,
		Code:    "INVALID_REPOSITORY_DATA",
		Message: fmt.Sprintf("invalid %s", field),
		Err:     err,
	}
}
