package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/DavidSemke/TechstackApi/internal/objects"
	"github.com/DavidSemke/TechstackApi/internal/server/biz"
)

type ProfileHandlersParams struct {
	fx.In

	ProfileService *biz.ProfileService
}

func NewProfileHandlers(params ProfileHandlersParams) *ProfileHandlers {
	return &ProfileHandlers{
		ProfileService: params.ProfileService,
	}
}

type ProfileHandlers struct {
	ProfileService *biz.ProfileService
}

func (h *ProfileHandlers) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	profile, err := h.ProfileService.GetProfile(ctx, id)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.ProfileService.ConvertProfileToProfileInfo(ctx, profile))
}

func (h *ProfileHandlers) ListProfiles(c *gin.Context) {
	ctx := c.Request.Context()

	profiles, err := h.ProfileService.ListProfiles(ctx)
	if err != nil {
		BizError(c, err)
		return
	}

	infos := make([]*objects.ProfileInfo, 0, len(profiles))
	for i := range profiles {
		infos = append(infos, h.ProfileService.ConvertProfileToProfileInfo(ctx, &profiles[i]))
	}

	c.JSON(http.StatusOK, gin.H{"profiles": infos})
}

// CreateProfile and DeleteProfile exist only to reply method-not-allowed:
// a profile's lifecycle is bound to its user.
func (h *ProfileHandlers) CreateProfile(c *gin.Context) {
	BizError(c, h.ProfileService.CreateProfile(c.Request.Context()))
}

func (h *ProfileHandlers) DeleteProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	BizError(c, h.ProfileService.DeleteProfile(c.Request.Context(), id))
}

type UpdateProfileRequest struct {
	Pic *string `json:"pic"`
	Bio *string `json:"bio"`
}

func (h *ProfileHandlers) UpdateProfile(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateProfileRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	profile, err := h.ProfileService.UpdateProfile(ctx, id, biz.UpdateProfileInput{
		Pic: req.Pic,
		Bio: req.Bio,
	})
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.ProfileService.ConvertProfileToProfileInfo(ctx, profile))
}

func (h *ProfileHandlers) FollowProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.ProfileService.FollowProfile(c.Request.Context(), id); err != nil {
		BizError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProfileHandlers) UnfollowProfile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.ProfileService.UnfollowProfile(c.Request.Context(), id); err != nil {
		BizError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
