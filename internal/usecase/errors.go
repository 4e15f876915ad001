package usecase

import (
	"errors"
	"fmt"

	"care-booking/internal/data/entity"
	"care-booking/internal/data/repository"
	"care-booking/pkg/utils"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidBooking      = errors.New("invalid booking")
	ErrGatewayVerification = errors.New("payment verification failed")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrVersionConflict     = repository.ErrVersionConflict
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("already exists")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
)

func validationError(errs map[string]string) error {
	return fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
}

func transitionError(from, to entity.BookingStatus) error {
	return fmt.Errorf("%w: cannot transition booking from %s to %s", ErrInvalidTransition, from, to)
}
