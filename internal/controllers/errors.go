package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/kshadid/thegiftspace/internal/domain"
)

// toHTTPError maps domain errors to fiber errors so every controller
// reports the same status codes.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUploadNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrSlugTaken), errors.Is(err, domain.ErrEmailTaken):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrRegistryLocked):
		return fiber.NewError(fiber.StatusLocked, err.Error())
	case errors.Is(err, domain.ErrFileTooLarge):
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, domain.ErrChunkOutOfSequence), errors.Is(err, domain.ErrChunkSizeMismatch):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUploadIncomplete):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Internal server error")
	}
}
