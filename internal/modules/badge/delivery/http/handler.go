package http

import (
	"net/http"

	badgeService "anoa.com/cpquest/internal/modules/badge/service"
	"anoa.com/cpquest/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BadgeHandler struct {
	service badgeService.BadgeService
}

func NewBadgeHandler(service badgeService.BadgeService) *BadgeHandler {
	return &BadgeHandler{service: service}
}

// Check re-evaluates the caller's auto badges, e.g. right after the host
// recorded a problem share or a resource approval.
func (h *BadgeHandler) Check(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	granted, err := h.service.CheckAndAward(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	if granted == nil {
		granted = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"data": granted})
}

func (h *BadgeHandler) Grant(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	granted, err := h.service.GrantManual(c.Request.Context(), userID, c.Param("badge_id"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	status := http.StatusOK
	if granted {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"granted": granted})
}
