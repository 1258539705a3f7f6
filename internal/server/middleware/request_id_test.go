package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/DavidSemke/TechstackApi/internal/log"
)

func TestWithRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(WithRequestID())
	router.GET("/", func(c *gin.Context) {
		id, ok := log.GetRequestID(c.Request.Context())
		assert.True(t, ok)
		c.String(http.StatusOK, id)
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
		assert.Equal(t, w.Header().Get("X-Request-Id"), w.Body.String())
	})

	t.Run("echoes a caller-provided id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get("X-Request-Id"))
		assert.Equal(t, "req-42", w.Body.String())
	})
}
