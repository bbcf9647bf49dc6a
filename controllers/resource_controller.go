package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
)

type ResourceController struct {
	svc *services.ResourceService
}

func NewResourceController(svc *services.ResourceService) *ResourceController {
	return &ResourceController{svc: svc}
}

func (h *ResourceController) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *ResourceController) Get(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	resource, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

func (h *ResourceController) Create(c *gin.Context) {
	var in services.ResourceInput
	if !bind(c, &in) {
		return
	}
	resource, err := h.svc.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resource)
}

func (h *ResourceController) Update(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	var in services.ResourceInput
	if !bind(c, &in) {
		return
	}
	resource, err := h.svc.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

func (h *ResourceController) Delete(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Resource deleted successfully"})
}
