package ingress

import (
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// PushEnvelope is the push subscription's delivery format: the raw message
// body arrives base64-encoded inside a JSON wrapper.
type PushEnvelope struct {
	Message struct {
		Data       string            `json:"data"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// Verifier validates the Authorization header of a push delivery.
type Verifier interface {
	Verify(header string) error
}

type pushBinding struct {
	handler *Handler
	auth    Verifier
}

// Register wires the push binding and health endpoint onto e. auth may be
// nil when the push subscription is not configured with OIDC tokens.
func Register(e *echo.Echo, h *Handler, auth Verifier) {
	b := &pushBinding{handler: h, auth: auth}
	e.POST("/", b.handlePush)
	e.GET("/health", b.handleHealth)
}

func (b *pushBinding) handlePush(c echo.Context) error {
	if c.Request().Header.Get("ce-specversion") == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "not a valid CloudEvent"})
	}
	if b.auth != nil {
		if err := b.auth.Verify(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			log.WithError(err).Warn("rejected push delivery")
			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var envelope PushEnvelope
	if err := c.Bind(&envelope); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid envelope"})
	}
	raw, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid message data"})
	}

	if err := b.handler.Handle(c.Request().Context(), raw); err != nil {
		log.WithError(err).Error("provisioning failed")
		// 200 so the push broker does not redeliver a poison message.
		return c.JSON(http.StatusOK, map[string]string{"status": "error", "detail": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "success"})
}

func (b *pushBinding) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"status": "healthy"})
}
