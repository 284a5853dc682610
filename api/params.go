package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/airreservation/internal/domain"
)

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", domain.ErrInvalidInput, name)
	}
	return id, nil
}
