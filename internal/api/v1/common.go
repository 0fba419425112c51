package v1

import (
	"strconv"

	ierr "github.com/hiretrack/hiretrack/internal/errors"
	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive numeric path parameter
func parseIDParam(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, ierr.NewErrorf("invalid %s %q", name, raw).
			WithHintf("Invalid %s", name).
			Mark(ierr.ErrValidation)
	}
	return id, nil
}

func invalidRequest(err error) error {
	return ierr.WithError(err).
		WithHint("Invalid request format").
		Mark(ierr.ErrValidation)
}
