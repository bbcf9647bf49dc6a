package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
)

type EduCenterController struct {
	svc *services.EduCenterService
}

func NewEduCenterController(svc *services.EduCenterService) *EduCenterController {
	return &EduCenterController{svc: svc}
}

func (h *EduCenterController) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *EduCenterController) Get(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	center, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, center)
}

func (h *EduCenterController) Create(c *gin.Context) {
	var in services.EduCenterInput
	if !bind(c, &in) {
		return
	}
	center, err := h.svc.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, center)
}

func (h *EduCenterController) Update(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	var in services.EduCenterInput
	if !bind(c, &in) {
		return
	}
	center, err := h.svc.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, center)
}

func (h *EduCenterController) Delete(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Education center deleted successfully"})
}
