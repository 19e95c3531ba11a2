package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"roundtable/backend/internal/ai"
	"roundtable/backend/internal/apperr"
	"roundtable/backend/internal/interview"
	"roundtable/backend/internal/room"
	"roundtable/backend/internal/roomstore"
)

// Handler holds the services behind the HTTP surface.
type Handler struct {
	Rooms      *room.Service
	Interviews *interview.Registry
	Store      roomstore.Store
	AI         *ai.Client // nil in offline mode
}

func NewHandler(rooms *room.Service, interviews *interview.Registry, store roomstore.Store, aiClient *ai.Client) *Handler {
	return &Handler{
		Rooms:      rooms,
		Interviews: interviews,
		Store:      store,
		AI:         aiClient,
	}
}

// writeError maps a classified error onto its HTTP status.
func writeError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}

// hostSecret extracts the host secret from X-Host-Secret or a Bearer
// Authorization header. The secret is compared by equality downstream.
func hostSecret(c *gin.Context) string {
	if s := c.GetHeader("X-Host-Secret"); s != "" {
		return s
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[len("Bearer "):])
	}
	return ""
}
