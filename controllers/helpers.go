package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vnkhanh/educenter-backend/middleware"
	"github.com/vnkhanh/educenter-backend/services"
)

// fail hands err to middleware.ErrorHandler.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
}

func actor(c *gin.Context) services.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}

func bind(c *gin.Context, in any) bool {
	if err := c.ShouldBindJSON(in); err != nil {
		fail(c, bindingError(err))
		return false
	}
	return true
}

func uuidParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, services.NewValidationError("id must be a valid UUID"))
		return uuid.Nil, false
	}
	return id, true
}

func uintParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		fail(c, services.NewValidationError("id must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}
