package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
)

type EnrollmentController struct {
	svc *services.EnrollmentService
}

func NewEnrollmentController(svc *services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{svc: svc}
}

func (h *EnrollmentController) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), actor(c), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *EnrollmentController) Mine(c *gin.Context) {
	page, err := h.svc.Mine(c.Request.Context(), actor(c), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *EnrollmentController) Get(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	enrollment, err := h.svc.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (h *EnrollmentController) Create(c *gin.Context) {
	var in services.EnrollmentInput
	if !bind(c, &in) {
		return
	}
	enrollment, err := h.svc.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

func (h *EnrollmentController) Update(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	var in services.EnrollmentInput
	if !bind(c, &in) {
		return
	}
	enrollment, err := h.svc.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, enrollment)
}

func (h *EnrollmentController) Delete(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Enrollment deleted successfully"})
}
