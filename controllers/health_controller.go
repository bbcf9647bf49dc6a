package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type HealthController struct {
	db  *gorm.DB
	rdb *redis.Client
}

// NewHealthController accepts a nil redis client when redis is disabled.
func NewHealthController(db *gorm.DB, rdb *redis.Client) *HealthController {
	return &HealthController{db: db, rdb: rdb}
}

func (h *HealthController) Check(c *gin.Context) {
	response := gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Unix(),
		"db":        "ok",
		"redis":     "disabled",
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	sqlDB, err := h.db.DB()
	if err != nil {
		response["db"] = "error: cannot get DB instance"
		response["status"] = "degraded"
		status = http.StatusInternalServerError
	} else if err := sqlDB.PingContext(ctx); err != nil {
		response["db"] = "error: cannot connect to DB"
		response["status"] = "degraded"
		status = http.StatusInternalServerError
	}

	if h.rdb != nil {
		response["redis"] = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			response["redis"] = "error: cannot connect to redis"
			response["status"] = "degraded"
			status = http.StatusInternalServerError
		}
	}
	c.JSON(status, response)
}
