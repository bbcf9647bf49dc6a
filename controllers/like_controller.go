package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
)

type LikeController struct {
	svc *services.LikeService
}

func NewLikeController(svc *services.LikeService) *LikeController {
	return &LikeController{svc: svc}
}

func (h *LikeController) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *LikeController) Get(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	like, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, like)
}

func (h *LikeController) Create(c *gin.Context) {
	var in services.LikeInput
	if !bind(c, &in) {
		return
	}
	like, err := h.svc.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, like)
}

func (h *LikeController) Delete(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Like removed"})
}
