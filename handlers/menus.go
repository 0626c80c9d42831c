package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"pos-api/apperr"
	"pos-api/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// MenuRequest is the JSON form of a menu create or update. Multipart
// requests carry the same fields as form values plus an "image" file.
type MenuRequest struct {
	Name       *string          `json:"name"`
	Price      *decimal.Decimal `json:"price" binding:"omitempty,gte=0"`
	CategoryID json.RawMessage  `json:"categoryId"`
	Status     *string          `json:"status"`
	ImageURL   *string          `json:"imageUrl"`
}

// ListMenus returns all menus; ?status=AVAILABLE|UNAVAILABLE&categoryId=
func (h *Handler) ListMenus(c *gin.Context) {
	categoryID, err := queryInt(c, "categoryId")
	if err != nil {
		h.respondError(c, err)
		return
	}
	menus, err := h.catalog.ListMenus(c.Request.Context(), c.Query("status"), uint(categoryID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	for i := range menus {
		h.withImageURL(c, &menus[i])
	}
	c.JSON(http.StatusOK, menus)
}

// GetMenu returns a single menu with its category
func (h *Handler) GetMenu(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	m, err := h.catalog.GetMenu(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.withImageURL(c, m)
	c.JSON(http.StatusOK, m)
}

// CreateMenu adds a dish from JSON or multipart form data
func (h *Handler) CreateMenu(c *gin.Context) {
	in, err := h.menuInput(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	m, err := h.catalog.CreateMenu(c.Request.Context(), in)
	if err != nil {
		h.discardUpload(c, in.ImageRef)
		h.respondError(c, err)
		return
	}
	h.withImageURL(c, m)
	c.JSON(http.StatusCreated, m)
}

// UpdateMenu changes the fields present in the request; others are kept
func (h *Handler) UpdateMenu(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	in, err := h.menuInput(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	m, err := h.catalog.UpdateMenu(c.Request.Context(), id, in)
	if err != nil {
		h.discardUpload(c, in.ImageRef)
		h.respondError(c, err)
		return
	}
	h.withImageURL(c, m)
	c.JSON(http.StatusOK, m)
}

// menuInput reads a menu from either body format. An uploaded image is
// stored right away and takes precedence over imageUrl.
func (h *Handler) menuInput(c *gin.Context) (services.MenuInput, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		var req MenuRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return services.MenuInput{}, apperr.Validation("%s", err.Error())
		}
		categoryID, err := optionalID(req.CategoryID)
		if err != nil {
			return services.MenuInput{}, err
		}
		return services.MenuInput{
			Name:       req.Name,
			Price:      req.Price,
			CategoryID: categoryID,
			Status:     req.Status,
			ImageRef:   req.ImageURL,
		}, nil
	}

	var in services.MenuInput
	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("price"); ok && strings.TrimSpace(v) != "" {
		price, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return in, apperr.Validation("price must be a number")
		}
		in.Price = &price
	}
	if v, ok := c.GetPostForm("categoryId"); ok {
		raw, _ := json.Marshal(strings.TrimSpace(v))
		id, err := optionalID(raw)
		if err != nil {
			return in, err
		}
		in.CategoryID = id
	}
	if v, ok := c.GetPostForm("status"); ok && strings.TrimSpace(v) != "" {
		in.Status = &v
	}
	if v, ok := c.GetPostForm("imageUrl"); ok {
		in.ImageRef = &v
	}

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return in, apperr.Validation("invalid image upload: %s", err.Error())
	}
	ref, err := h.saveUpload(fh)
	if err != nil {
		return in, err
	}
	in.ImageRef = &ref
	return in, nil
}

func (h *Handler) saveUpload(fh *multipart.FileHeader) (string, error) {
	saved, err := h.uploads.Save(fh)
	if err != nil {
		return "", err
	}
	return saved.Ref, nil
}

// discardUpload removes an image stored for a request that then failed.
// Refs that came from the request body are not files of ours.
func (h *Handler) discardUpload(c *gin.Context, ref *string) {
	if ref == nil || !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return
	}
	if _, err := c.FormFile("image"); err != nil {
		return
	}
	if err := h.uploads.Remove(*ref); err != nil {
		h.log.Warn("remove orphaned upload failed", "image", *ref, "error", err)
	}
}
