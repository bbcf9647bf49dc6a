package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
)

type BranchController struct {
	svc *services.BranchService
}

func NewBranchController(svc *services.BranchService) *BranchController {
	return &BranchController{svc: svc}
}

func (h *BranchController) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *BranchController) Get(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	branch, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

func (h *BranchController) Create(c *gin.Context) {
	var in services.BranchInput
	if !bind(c, &in) {
		return
	}
	branch, err := h.svc.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, branch)
}

func (h *BranchController) Update(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	var in services.BranchInput
	if !bind(c, &in) {
		return
	}
	branch, err := h.svc.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, branch)
}

func (h *BranchController) Delete(c *gin.Context) {
	id, ok := uuidParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Branch deleted successfully"})
}
