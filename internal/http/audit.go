package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/snipsnap/internal/entities"
)

type AuditController struct {
	events ActivityReader
}

func NewAuditController(events ActivityReader) *AuditController {
	return &AuditController{events: events}
}

// GetActivity returns the caller's audit events, most recent first
// GET /api/activity?page=1&limit=25&type=auth
func (ac *AuditController) GetActivity(c *gin.Context) {
	limit, offset, _ := parsePagination(c, 25)

	eventType := entities.AuditEventType(c.Query("type"))
	if eventType != "" && !isKnownEventType(eventType) {
		respondBadRequest(c, "unknown event type")
		return
	}

	events, total, err := ac.events.GetEvents(GetUserID(c), eventType, limit, offset)
	if err != nil {
		respondInternalError(c, err, "get activity")
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(events, total, limit, offset))
}

func isKnownEventType(t entities.AuditEventType) bool {
	switch t {
	case entities.AuditEventAuth,
		entities.AuditEventAccount,
		entities.AuditEventSnip,
		entities.AuditEventSharing:
		return true
	}
	return false
}
