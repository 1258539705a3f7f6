package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/models"
	"github.com/DavidSemke/TechstackApi/internal/server/biz"
	"github.com/DavidSemke/TechstackApi/internal/server/db"
)

var authTestDBSeq atomic.Int64

func newAuthFixture(t *testing.T) (*biz.AuthService, *models.User, string) {
	t.Helper()

	dsn := fmt.Sprintf("file:mwtest%d?mode=memory&cache=shared", authTestDBSeq.Add(1))
	conn := db.New(db.Config{Dialect: "sqlite", DSN: dsn})
	require.NoError(t, db.Migrate(conn))

	auth := biz.NewAuthService(biz.AuthServiceParams{
		Config: biz.AuthConfig{SecretKey: "middleware-secret"},
		DB:     conn,
	})

	hashed, err := biz.HashPassword("password-123")
	require.NoError(t, err)

	user := &models.User{Username: "mw-user", Password: hashed}
	require.NoError(t, conn.Create(user).Error)

	token, err := auth.GenerateJWTToken(context.Background(), user)
	require.NoError(t, err)

	return auth, user, token
}

func identityRouter(auth *biz.AuthService, requireAuth bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(WithAuth(auth))

	if requireAuth {
		router.Use(RequireAuth())
	}

	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, authz.IdentityFromContext(c.Request.Context()).String())
	})

	return router
}

func TestWithAuth(t *testing.T) {
	auth, user, token := newAuthFixture(t)
	router := identityRouter(auth, false)

	t.Run("no header leaves the request anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("valid token resolves the user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, fmt.Sprintf("user:%d", user.ID), w.Body.String())
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing bearer prefix is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	auth, _, token := newAuthFixture(t)
	router := identityRouter(auth, true)

	t.Run("anonymous is rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("authenticated passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
