package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
)

type SessionController struct {
	svc *services.SessionService
}

func NewSessionController(svc *services.SessionService) *SessionController {
	return &SessionController{svc: svc}
}

func (h *SessionController) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), actor(c), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *SessionController) Delete(c *gin.Context) {
	id, ok := uintParam(c)
	if !ok {
		return
	}
	session, err := h.svc.Delete(c.Request.Context(), actor(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deletedSession": session})
}
