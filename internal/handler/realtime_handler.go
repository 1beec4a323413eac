package handler

import (
	"collab-workspace-be/internal/pkg/logger"
	"collab-workspace-be/internal/pkg/serverutils"
	internalWS "collab-workspace-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const principalLocal = "ws_principal"

type RealtimeHandler struct {
	hub      *internalWS.Hub
	router   *internalWS.Router
	verifier *serverutils.TokenVerifier
	logger   logger.ILogger
}

func NewRealtimeHandler(hub *internalWS.Hub, router *internalWS.Router, verifier *serverutils.TokenVerifier, log logger.ILogger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:      hub,
		router:   router,
		verifier: verifier,
		logger:   log,
	}
}

// Handshake verifies the bearer token once, before the upgrade. A rejected
// connection never reaches the router.
func (h *RealtimeHandler) Handshake(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userId, err := h.verifier.Verify(serverutils.TokenFromRequest(c))
	if err != nil {
		h.logger.Warn("RealtimeHandler", "Rejected websocket handshake", map[string]interface{}{
			"ip":    c.IP(),
			"error": err.Error(),
		})
		return err
	}

	c.Locals(principalLocal, userId.String())
	return c.Next()
}

// ServeWs runs the connection until the client goes away.
func (h *RealtimeHandler) ServeWs() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		principal, _ := conn.Locals(principalLocal).(string)
		h.logger.Info("RealtimeHandler", "Starting WebSocket session", map[string]interface{}{"user_id": principal})
		internalWS.ServeWs(h.hub, h.router, conn, principal)
		h.logger.Info("RealtimeHandler", "WebSocket session ended", map[string]interface{}{"user_id": principal})
	})
}

func (h *RealtimeHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.Handshake, h.ServeWs())
}
