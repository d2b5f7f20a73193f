// FILE: internal/controller/household_controller.go
package controller

import (
	"household-finance-be/internal/dto"
	"household-finance-be/internal/pkg/serverutils"
	"household-finance-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IHouseholdController interface {
	RegisterRoutes(r fiber.Router)
	Register(ctx *fiber.Ctx) error
	Admission(ctx *fiber.Ctx) error
	SendInvitation(ctx *fiber.Ctx) error
	Members(ctx *fiber.Ctx) error
	Deactivate(ctx *fiber.Ctx) error
	Reactivate(ctx *fiber.Ctx) error
}

type householdController struct {
	service     service.IHouseholdService
	admission   service.IAdmissionService
	invitations service.IInvitationService
}

func NewHouseholdController(
	service service.IHouseholdService,
	admission service.IAdmissionService,
	invitations service.IInvitationService,
) IHouseholdController {
	return &householdController{
		service:     service,
		admission:   admission,
		invitations: invitations,
	}
}

func (c *householdController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/household/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Register)
	h.Get(":id/admission", c.Admission)
	h.Post(":id/invitations", c.SendInvitation)
	h.Get(":id/members", c.Members)
	h.Post(":id/members/:userId/deactivate", c.Deactivate)
	h.Post(":id/members/:userId/reactivate", c.Reactivate)
}

func (c *householdController) Register(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.RegisterHouseholdRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Register(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success register household", res))
}

func (c *householdController) Admission(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	householdId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid household id")
	}

	res, err := c.admission.CanAdmit(ctx.Context(), userId, householdId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success check admission", res))
}

func (c *householdController) SendInvitation(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	householdId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid household id")
	}

	var req dto.SendInvitationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.invitations.Send(ctx.Context(), userId, householdId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send invitation", res))
}

func (c *householdController) Members(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	householdId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid household id")
	}

	res, err := c.service.Members(ctx.Context(), userId, householdId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get members", res))
}

func (c *householdController) Deactivate(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	actorId, _ := uuid.Parse(userIdStr)
	householdId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid household id")
	}
	targetId, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	if err := c.service.Deactivate(ctx.Context(), actorId, householdId, targetId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success deactivate member", nil))
}

func (c *householdController) Reactivate(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	actorId, _ := uuid.Parse(userIdStr)
	householdId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid household id")
	}
	targetId, err := uuid.Parse(ctx.Params("userId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}

	if err := c.service.Reactivate(ctx.Context(), actorId, householdId, targetId); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reactivate member", nil))
}
