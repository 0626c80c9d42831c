package handlers

import (
	"errors"
	"net/http"

	"pos-api/apperr"
	"pos-api/uploads"

	"github.com/gin-gonic/gin"
)

// Upload stores a single image sent as form field "image" and returns
// the reference to save on a menu
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		h.respondError(c, apperr.Validation("form field \"image\" with a file is required"))
		return
	}
	if err != nil {
		h.badRequest(c, err)
		return
	}
	saved, err := h.uploads.Save(fh)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"url":      uploads.URL(saved.Ref, h.publicBase(c)),
		"filename": saved.Ref,
		"size":     saved.Size,
		"mimetype": saved.MimeType,
	})
}
