package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
)

type CommentController struct {
	svc *services.CommentService
}

func NewCommentController(svc *services.CommentService) *CommentController {
	return &CommentController{svc: svc}
}

func (h *CommentController) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *CommentController) Get(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	comment, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentController) Create(c *gin.Context) {
	var in services.CommentInput
	if !bind(c, &in) {
		return
	}
	comment, err := h.svc.Create(c.Request.Context(), actor(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *CommentController) Update(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	var in services.CommentInput
	if !bind(c, &in) {
		return
	}
	comment, err := h.svc.Update(c.Request.Context(), actor(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *CommentController) Delete(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
