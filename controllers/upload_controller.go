package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/educenter-backend/services"
	"github.com/vnkhanh/educenter-backend/utils"
)

var allowedUploadExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true,
	".pdf": true, ".doc": true, ".docx": true, ".xlsx": true, ".pptx": true,
}

type UploadController struct {
	storage utils.Storage
	maxSize int64
}

func NewUploadController(storage utils.Storage, maxSize int64) *UploadController {
	return &UploadController{storage: storage, maxSize: maxSize}
}

// Upload stores the multipart "file" field and returns its public URL.
func (h *UploadController) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		fail(c, services.NewValidationError("file is required"))
		return
	}
	if h.maxSize > 0 && fileHeader.Size > h.maxSize {
		fail(c, services.NewValidationError(fmt.Sprintf("file cannot be larger than %d bytes", h.maxSize)))
		return
	}
	if !allowedUploadExt[strings.ToLower(filepath.Ext(fileHeader.Filename))] {
		fail(c, services.NewValidationError("file type is not allowed"))
		return
	}
	url, err := h.storage.Save(c.Request.Context(), fileHeader)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}
