package http

import (
	"context"
	"net/http"

	"anoa.com/cpquest/internal/entity"
	duelDto "anoa.com/cpquest/internal/modules/duel/dto"
	duelService "anoa.com/cpquest/internal/modules/duel/service"
	"anoa.com/cpquest/pkg/apperror"
	"anoa.com/cpquest/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DuelHandler struct {
	service duelService.DuelService
}

func NewDuelHandler(service duelService.DuelService) *DuelHandler {
	return &DuelHandler{service: service}
}

func (h *DuelHandler) Challenge(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req duelDto.ChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	duel, err := h.service.Challenge(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": duelDto.FromEntity(duel)})
}

func (h *DuelHandler) Accept(c *gin.Context) {
	h.respond(c, h.service.Accept)
}

func (h *DuelHandler) Decline(c *gin.Context) {
	h.respond(c, h.service.Decline)
}

func (h *DuelHandler) GetDuel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid format"})
		return
	}

	duel, err := h.service.GetDuel(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": duelDto.FromEntity(duel)})
}

type duelAction func(ctx context.Context, duelID, userID uuid.UUID) (*entity.Duel, error)

func (h *DuelHandler) respond(c *gin.Context, action duelAction) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	duelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrInvalidInput)
		return
	}

	duel, err := action(c.Request.Context(), duelID, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": duelDto.FromEntity(duel)})
}
