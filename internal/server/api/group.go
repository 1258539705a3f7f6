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

type GroupHandlersParams struct {
	fx.In

	GroupService *biz.GroupService
}

func NewGroupHandlers(params GroupHandlersParams) *GroupHandlers {
	return &GroupHandlers{
		GroupService: params.GroupService,
	}
}

type GroupHandlers struct {
	GroupService *biz.GroupService
}

type GroupRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *GroupHandlers) CreateGroup(c *gin.Context) {
	var req GroupRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	group, err := h.GroupService.CreateGroup(c.Request.Context(), req.Name)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, biz.ConvertGroupToGroupInfo(group))
}

func (h *GroupHandlers) GetGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	group, err := h.GroupService.GetGroup(c.Request.Context(), id)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, biz.ConvertGroupToGroupInfo(group))
}

func (h *GroupHandlers) ListGroups(c *gin.Context) {
	groups, err := h.GroupService.ListGroups(c.Request.Context())
	if err != nil {
		BizError(c, err)
		return
	}

	infos := lo.Map(groups, func(g models.Group, _ int) *objects.GroupInfo {
		return biz.ConvertGroupToGroupInfo(&g)
	})

	c.JSON(http.StatusOK, gin.H{"groups": infos})
}

func (h *GroupHandlers) UpdateGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req GroupRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	group, err := h.GroupService.UpdateGroup(c.Request.Context(), id, req.Name)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, biz.ConvertGroupToGroupInfo(group))
}

func (h *GroupHandlers) DeleteGroup(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.GroupService.DeleteGroup(c.Request.Context(), id); err != nil {
		BizError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
