package service

import (
	"errors"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
)

// invalid превращает ошибку валидации в ответ 400 с её текстом.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
}
