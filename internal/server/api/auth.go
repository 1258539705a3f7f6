package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/DavidSemke/TechstackApi/internal/objects"
	"github.com/DavidSemke/TechstackApi/internal/server/biz"
)

type AuthHandlersParams struct {
	fx.In

	AuthService *biz.AuthService
	UserService *biz.UserService
}

func NewAuthHandlers(params AuthHandlersParams) *AuthHandlers {
	return &AuthHandlers{
		AuthService: params.AuthService,
		UserService: params.UserService,
	}
}

type AuthHandlers struct {
	AuthService *biz.AuthService
	UserService *biz.UserService
}

type SignInRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignInResponse struct {
	User  *objects.UserInfo `json:"user"`
	Token string            `json:"token"`
}

// SignIn handles user authentication.
func (h *AuthHandlers) SignIn(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req SignInRequest
	)

	err := c.ShouldBindJSON(&req)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	user, err := h.AuthService.AuthenticateUser(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, biz.ErrInvalidPassword) {
			JSONError(c, http.StatusUnauthorized, errors.New("Invalid username or password"))
			return
		}

		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)

		return
	}

	token, err := h.AuthService.GenerateJWTToken(ctx, user)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)
		return
	}

	c.JSON(http.StatusOK, SignInResponse{
		User:  biz.ConvertUserToUserInfo(user),
		Token: token,
	})
}

type SignUpRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email"    binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

// SignUp registers a new account and signs it in.
func (h *AuthHandlers) SignUp(c *gin.Context) {
	var (
		ctx = c.Request.Context()
		req SignUpRequest
	)

	err := c.ShouldBindJSON(&req)
	if err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("Invalid request format"))
		return
	}

	user, err := h.UserService.CreateUser(ctx, biz.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		BizError(c, err)
		return
	}

	token, err := h.AuthService.GenerateJWTToken(ctx, user)
	if err != nil {
		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)
		return
	}

	c.JSON(http.StatusCreated, SignInResponse{
		User:  biz.ConvertUserToUserInfo(user),
		Token: token,
	})
}
