package user

import (
	"fmt"

	"reviewpilot-core/internal/apperror"
)

// Predefined domain errors

func ErrUserNotFound(id string) *apperror.Error {
	return &apperror.Error{
		Kind:    apperror.KindNotFound,
		Code:    "USER_NOT_FOUND",
		Message: fmt.Sprintf("user %s not found", id),
	}
}

func ErrInvalidUserData(field string, err error) *apperror.Error {
	return &apperror.Error{
		Kind:    apperror.KindValidation,
		Code:    "INVALID_USER_DATA",
		Message: fmt.Sprintf("invalid %s", field),
		Err:     err,
	}
}
