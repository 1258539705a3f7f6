package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/fx"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/models"
	"github.com/DavidSemke/TechstackApi/internal/objects"
	"github.com/DavidSemke/TechstackApi/internal/server/biz"
)

type UserHandlersParams struct {
	fx.In

	UserService *biz.UserService
}

func NewUserHandlers(params UserHandlersParams) *UserHandlers {
	return &UserHandlers{
		UserService: params.UserService,
	}
}

type UserHandlers struct {
	UserService *biz.UserService
}

func (h *UserHandlers) ListUsers(c *gin.Context) {
	users, err := h.UserService.ListUsers(c.Request.Context())
	if err != nil {
		BizError(c, err)
		return
	}

	infos := lo.Map(users, func(u models.User, _ int) *objects.UserInfo {
		return biz.ConvertUserToUserInfo(&u)
	})

	c.JSON(http.StatusOK, gin.H{"users": infos})
}

func (h *UserHandlers) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.UserService.GetUser(c.Request.Context(), id)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, biz.ConvertUserToUserInfo(user))
}

// Me returns the authenticated caller's own record.
func (h *UserHandlers) Me(c *gin.Context) {
	ctx := c.Request.Context()

	actor := authz.IdentityFromContext(ctx)
	if !actor.Authenticated() {
		JSONError(c, http.StatusUnauthorized, biz.ErrUnauthenticated)
		return
	}

	user, err := h.UserService.GetUser(ctx, actor.UserID)
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, biz.ConvertUserToUserInfo(user))
}

type UpdateUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Email    string  `json:"email"    binding:"omitempty,email"`
	Password *string `json:"password"`
}

func (h *UserHandlers) UpdateUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateUserRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	user, err := h.UserService.UpdateUser(c.Request.Context(), id, biz.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, biz.ConvertUserToUserInfo(user))
}

type PatchUserRequest struct {
	Username *string   `json:"username"`
	Email    *string   `json:"email"`
	Password *string   `json:"password"`
	Groups   *[]string `json:"groups"`
}

// PatchUser applies a partial update. The raw payload is decoded twice:
// once for the values and once for the set of keys present, which the
// group-patch guard needs to tell a pure group patch from a mixed one.
func (h *UserHandlers) PatchUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	var keyed map[string]json.RawMessage

	if err := json.Unmarshal(raw, &keyed); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	var req PatchUserRequest

	if err := json.Unmarshal(raw, &req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	user, err := h.UserService.PatchUser(c.Request.Context(), id, biz.PatchUserInput{
		Fields:   lo.Keys(keyed),
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Groups:   req.Groups,
	})
	if err != nil {
		BizError(c, err)
		return
	}

	c.JSON(http.StatusOK, biz.ConvertUserToUserInfo(user))
}

type DeleteUserRequest struct {
	CurrentPassword string `json:"currentPassword"`
}

func (h *UserHandlers) DeleteUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	// The password confirmation is optional in the payload; the service
	// decides whether the caller needs one.
	var req DeleteUserRequest

	_ = c.ShouldBindJSON(&req)

	if err := h.UserService.DeleteUser(c.Request.Context(), id, req.CurrentPassword); err != nil {
		BizError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
