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

type TagHandlersParams struct {
	fx.In

	TagService *biz.TagService
}

func NewTagHandlers(params TagHandlersParams) *TagHandlers {
	return &TagHandlers{
		TagService: params.TagService,
	}
}

type TagHandlers struct {
	TagService *biz.TagService
}

type TagRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h *TagHandlers) CreateTag(c *gin.Context) {
	var req TagRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	tag, err := h.TagService.CreateTag(c.Request.Context(), req.Title)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, biz.ConvertTagToTagInfo(tag))
}

func (h *TagHandlers) GetTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	tag, err := h.TagService.GetTag(c.Request.Context(), id)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, biz.ConvertTagToTagInfo(tag))
}

func (h *TagHandlers) ListTags(c *gin.Context) {
	tags, err := h.TagService.ListTags(c.Request.Context())
	if err != nil {
		BizError(c, err)
		return
	}

	infos := lo.Map(tags, func(t models.Tag, _ int) *objects.TagInfo {
		return biz.ConvertTagToTagInfo(&t)
	})

	c.JSON(http.StatusOK, gin.H{"tags": infos})
}

func (h *TagHandlers) UpdateTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req TagRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	tag, err := h.TagService.UpdateTag(c.Request.Context(), id, req.Title)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, biz.ConvertTagToTagInfo(tag))
}

func (h *TagHandlers) DeleteTag(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.TagService.DeleteTag(c.Request.Context(), id); err != nil {
		BizError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
