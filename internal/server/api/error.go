package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DavidSemke/TechstackApi/internal/objects"
	"github.com/DavidSemke/TechstackApi/internal/server/biz"
	"github.com/DavidSemke/TechstackApi/internal/validate"
)

// JSONError returns a JSON error response and adds the error to gin context for access logging.
func JSONError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, objects.ErrorResponse{
		Error: objects.Error{
			Type:    http.StatusText(status),
			Message: err.Error(),
		},
	})
}

// BizError maps a service error onto the HTTP error taxonomy. Validation
// failures carry every violation message in the details list.
func BizError(c *gin.Context, err error) {
	var violations validate.Violations

	switch {
	case errors.As(err, &violations):
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, objects.ErrorResponse{
			Error: objects.Error{
				Type:    http.StatusText(http.StatusBadRequest),
				Message: "Validation failed",
				Details: violations.Messages(),
			},
		})
	case errors.Is(err, biz.ErrUnauthenticated), errors.Is(err, biz.ErrInvalidJWT):
		JSONError(c, http.StatusUnauthorized, err)
	case errors.Is(err, biz.ErrPermissionDenied):
		JSONError(c, http.StatusForbidden, err)
	case errors.Is(err, biz.ErrNotFound):
		JSONError(c, http.StatusNotFound, err)
	case errors.Is(err, biz.ErrMethodNotAllowed):
		JSONError(c, http.StatusMethodNotAllowed, err)
	default:
		JSONError(c, http.StatusInternalServerError, biz.ErrInternal)
	}
}

// pathID parses the numeric :id path parameter, replying 404 on garbage
// so probing with junk IDs is indistinguishable from a missing row.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		JSONError(c, http.StatusNotFound, biz.ErrNotFound)
		return 0, false
	}

	return uint(id), true
}
