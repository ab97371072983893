package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/reversi-online/backend/internal/domain"
)

// Counter reports how many entries a registry holds.
type Counter interface {
	Count() int
}

// MemberLister lists the users with a live connection.
type MemberLister interface {
	Counter
	Members() []domain.User
}

type StatusHandler struct {
	Sessions    Counter
	Connections MemberLister
}

func NewStatusHandler(sessions Counter, connections MemberLister) *StatusHandler {
	return &StatusHandler{Sessions: sessions, Connections: connections}
}

type healthResponse struct {
	Status      string `json:"status"`
	Sessions    int    `json:"sessions"`
	Connections int    `json:"connections"`
}

// Health is the liveness probe
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Sessions:    h.Sessions.Count(),
		Connections: h.Connections.Count(),
	})
}

// GetMembers returns the same list a MEMBERS message carries.
func (h *StatusHandler) GetMembers(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Members{Members: h.Connections.Members()})
}
