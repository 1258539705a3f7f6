package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/DavidSemke/TechstackApi/internal/models"
	"github.com/DavidSemke/TechstackApi/internal/objects"
	"github.com/DavidSemke/TechstackApi/internal/server/biz"
)

type ReactionHandlersParams struct {
	fx.In

	ReactionService *biz.ReactionService
}

func NewReactionHandlers(params ReactionHandlersParams) *ReactionHandlers {
	return &ReactionHandlers{
		ReactionService: params.ReactionService,
	}
}

type ReactionHandlers struct {
	ReactionService *biz.ReactionService
}

type CreateReactionRequest struct {
	Type       string `json:"type"       binding:"required"`
	TargetType string `json:"targetType" binding:"required"`
	TargetID   uint   `json:"targetID"   binding:"required"`
}

func (h *ReactionHandlers) CreateReaction(c *gin.Context) {
	var req CreateReactionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	reaction, err := h.ReactionService.CreateReaction(c.Request.Context(), biz.CreateReactionInput{
		Type:       models.ReactionType(req.Type),
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
	})
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, biz.ConvertReactionToReactionInfo(reaction))
}

func (h *ReactionHandlers) GetReaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	reaction, err := h.ReactionService.GetReaction(c.Request.Context(), id)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, biz.ConvertReactionToReactionInfo(reaction))
}

func (h *ReactionHandlers) ListReactions(c *gin.Context) {
	reactions, err := h.ReactionService.ListReactions(c.Request.Context())
	if err != nil {
		BizError(c, err)
		return
	}

	infos := lo.Map(reactions, func(r models.Reaction, _ int) *objects.ReactionInfo {
		return biz.ConvertReactionToReactionInfo(&r)
	})

	c.JSON(http.StatusOK, gin.H{"reactions": infos})
}

type UpdateReactionRequest struct {
	Type string `json:"type" binding:"required"`
}

func (h *ReactionHandlers) UpdateReaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateReactionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	reaction, err := h.ReactionService.UpdateReaction(c.Request.Context(), id, models.ReactionType(req.Type))
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, biz.ConvertReactionToReactionInfo(reaction))
}

func (h *ReactionHandlers) DeleteReaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.ReactionService.DeleteReaction(c.Request.Context(), id); err != nil {
		BizError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
