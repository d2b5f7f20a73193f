package serverutils

import (
	"errors"

	"household-finance-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates service errors into the REST contract.
// Controllers just return errors; the mapping lives in one place.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var admission *service.AdmissionError
		if errors.As(err, &admission) {
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":        "User limit reached",
				"currentUsers": admission.CurrentUsers,
				"maxUsers":     admission.MaxUsers,
			})
		}

		var validation *service.ValidationError
		if errors.As(err, &validation) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validation.Message})
		}

		switch {
		case errors.Is(err, service.ErrAccessDenied):
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
		case errors.Is(err, service.ErrNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not found"})
		case errors.Is(err, service.ErrInvitationExpired):
			return ctx.Status(fiber.StatusGone).JSON(fiber.Map{"error": "Invitation expired"})
		case errors.Is(err, service.ErrInvitationUsed):
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Invitation already accepted"})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
