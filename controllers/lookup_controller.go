package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
)

// LookupController serves subjects, fields, regions and resource categories.
type LookupController[T any] struct {
	svc *services.LookupService[T]
}

func NewLookupController[T any](svc *services.LookupService[T]) *LookupController[T] {
	return &LookupController[T]{svc: svc}
}

func (h *LookupController[T]) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *LookupController[T]) Get(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	row, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *LookupController[T]) Create(c *gin.Context) {
	var in services.LookupInput
	if !bind(c, &in) {
		return
	}
	row, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *LookupController[T]) Update(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	var in services.LookupInput
	if !bind(c, &in) {
		return
	}
	row, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *LookupController[T]) Delete(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": h.svc.Label() + " deleted successfully"})
}
