// FILE: internal/controller/invitation_controller.go
package controller

import (
	"household-finance-be/internal/dto"
	"household-finance-be/internal/pkg/serverutils"
	"household-finance-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IInvitationController interface {
	RegisterRoutes(r fiber.Router)
	Accept(ctx *fiber.Ctx) error
}

type invitationController struct {
	service service.IInvitationService
}

func NewInvitationController(service service.IInvitationService) IInvitationController {
	return &invitationController{service: service}
}

func (c *invitationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/invitation/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("accept", c.Accept)
}

func (c *invitationController) Accept(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.AcceptInvitationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Accept(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success accept invitation", res))
}
