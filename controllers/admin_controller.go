package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
)

type AdminController struct {
	svc *services.AdminService
}

func NewAdminController(svc *services.AdminService) *AdminController {
	return &AdminController{svc: svc}
}

func (h *AdminController) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *AdminController) Get(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	admin, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, admin)
}

func (h *AdminController) Create(c *gin.Context) {
	var in services.AdminInput
	if !bind(c, &in) {
		return
	}
	admin, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, admin)
}

func (h *AdminController) Update(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	var in services.UserUpdateInput
	if !bind(c, &in) {
		return
	}
	admin, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, admin)
}

func (h *AdminController) Delete(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin deleted successfully"})
}
