package handler

import (
	"errors"

	"household-finance-be/internal/identity"
	"household-finance-be/internal/pkg/logger"
	"household-finance-be/internal/realtime"
	"household-finance-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// GatewayHandler upgrades websocket connections. Authentication happens
// BEFORE the upgrade: a bad credential is refused with an HTTP status and no
// session state is ever created.
type GatewayHandler struct {
	verifier   identity.Verifier
	households service.IHouseholdService
	hub        *realtime.Hub
	logger     logger.ILogger
}

func NewGatewayHandler(
	verifier identity.Verifier,
	households service.IHouseholdService,
	hub *realtime.Hub,
	log logger.ILogger,
) *GatewayHandler {
	return &GatewayHandler{
		verifier:   verifier,
		households: households,
		hub:        hub,
		logger:     log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *GatewayHandler) ServeWs(c *fiber.Ctx) error {
	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header (Tooling/Non-browser standard)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	ident, err := h.verifier.Verify(c.UserContext(), tokenStr)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrAccountLocked):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account locked"})
		case errors.Is(err, identity.ErrAccountInactive):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Account inactive"})
		case errors.Is(err, identity.ErrInvalidCredential):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
		default:
			h.logger.Error("GatewayHandler", "Verification failed", map[string]interface{}{"error": err.Error()})
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Verification failed"})
		}
	}

	memberships, err := h.households.ActiveMemberships(c.UserContext(), ident.UserID)
	if err != nil {
		h.logger.Error("GatewayHandler", "Membership load failed", map[string]interface{}{"user_id": ident.UserID, "error": err.Error()})
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load memberships"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("GatewayHandler", "Starting realtime session", map[string]interface{}{"user_id": ident.UserID})
			h.hub.Connect(conn, ident, memberships)
			h.logger.Info("GatewayHandler", "Realtime session ended", map[string]interface{}{"user_id": ident.UserID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *GatewayHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
