package controllers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/logger"
	"github.com/vnkhanh/educenter-backend/services"
)

type ExportController struct {
	svc *services.ExportService
}

func NewExportController(svc *services.ExportService) *ExportController {
	return &ExportController{svc: svc}
}

type exportFunc func(ctx context.Context, actor services.Actor) (*services.Workbook, error)

func (h *ExportController) stream(build exportFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		book, err := build(c.Request.Context(), actor(c))
		if err != nil {
			fail(c, err)
			return
		}
		defer book.Close()

		c.Header("Content-Type", book.ContentType())
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", book.FileName))
		c.Status(http.StatusOK)
		if _, err := book.WriteTo(c.Writer); err != nil {
			// Headers are already sent; the client sees a truncated file.
			logger.Errorf("write %s: %v", book.FileName, err)
		}
	}
}

func (h *ExportController) Comments() gin.HandlerFunc    { return h.stream(h.svc.Comments) }
func (h *ExportController) EduCenters() gin.HandlerFunc  { return h.stream(h.svc.EduCenters) }
func (h *ExportController) Resources() gin.HandlerFunc   { return h.stream(h.svc.Resources) }
func (h *ExportController) Profile() gin.HandlerFunc     { return h.stream(h.svc.Profile) }
func (h *ExportController) Enrollments() gin.HandlerFunc { return h.stream(h.svc.Enrollments) }
