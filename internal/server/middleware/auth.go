package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DavidSemke/TechstackApi/internal/authz"
	"github.com/DavidSemke/TechstackApi/internal/server/biz"
)

// ExtractBearerToken pulls the JWT out of the Authorization header.
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("Authorization header is required")
	}

	if !strings.HasPrefix(header, "Bearer ") {
		return "", errors.New("Authorization header must start with 'Bearer '")
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", errors.New("Token is required")
	}

	return token, nil
}

// WithAuth resolves the caller's identity for every request. A missing
// Authorization header leaves the request anonymous; a present but
// invalid token is rejected outright rather than silently downgraded.
// Per-action authorization happens in the services, so even fully
// anonymous requests proceed into the handlers.
func WithAuth(auth *biz.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Header.Get("Authorization") == "" {
			c.Next()
			return
		}

		token, err := ExtractBearerToken(c.Request)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		user, err := auth.AuthenticateJWTToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, biz.ErrInvalidJWT) {
				AbortWithError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			} else {
				AbortWithError(c, http.StatusInternalServerError, errors.New("Failed to validate token"))
			}

			return
		}

		ctx := authz.NewIdentityContext(c.Request.Context(), biz.IdentityForUser(user))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireAuth rejects requests that did not authenticate. Routes behind
// it can assume a signed-in identity.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := authz.IdentityFromContext(c.Request.Context())
		if !id.Authenticated() {
			AbortWithError(c, http.StatusUnauthorized, errors.New("Authentication required"))
			return
		}

		c.Next()
	}
}
