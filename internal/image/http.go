package image

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/adilbek/goalbums/internal/auth"
	"github.com/adilbek/goalbums/internal/metrics"
	"github.com/adilbek/goalbums/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterRoutes mounts image lifecycle endpoints under the provided router group.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/albums/:albumID/images/upload-url", handler.generateUploadURL)
	group.POST("/albums/:albumID/images/:imageID/confirm", handler.confirmUpload)
	group.GET("/albums/:albumID/images", handler.listImages)
	group.GET("/albums/:albumID/images/:imageID", handler.getImage)
	group.PUT("/albums/:albumID/images/:imageID", handler.updateImage)
	group.DELETE("/albums/:albumID/images/:imageID", handler.deleteImage)
	group.GET("/albums/:albumID/images/:imageID/download-url", handler.generateDownloadURL)
}

type httpHandler struct {
	service *Service
}

type uploadURLRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description" binding:"omitempty,max=255"`
	SizeBytes   int64   `json:"size_bytes" binding:"required"`
	ContentType string  `json:"content_type" binding:"required"`
}

type updateImageRequest struct {
	Name        *string `json:"name" binding:"omitempty"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

func (h *httpHandler) generateUploadURL(c *gin.Context) {
	ownerID, albumID, ok := requireOwnerAndAlbum(c)
	if !ok {
		return
	}

	var req uploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	intent, err := h.service.GenerateUploadURL(c.Request.Context(), ownerID, albumID, UploadInput{
		Name:        req.Name,
		Description: req.Description,
		SizeBytes:   req.SizeBytes,
		ContentType: req.ContentType,
	})
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			metrics.QuotaRejections.Inc()
		}
		respondImageError(c, err)
		return
	}

	metrics.UploadURLsIssued.Inc()
	c.JSON(http.StatusOK, intent)
}

func (h *httpHandler) confirmUpload(c *gin.Context) {
	ownerID, albumID, ok := requireOwnerAndAlbum(c)
	if !ok {
		return
	}
	imageID, ok := parseImageID(c)
	if !ok {
		return
	}

	confirmed, err := h.service.ConfirmUpload(c.Request.Context(), ownerID, albumID, imageID)
	if err != nil {
		respondImageError(c, err)
		return
	}

	metrics.UploadsConfirmed.Inc()
	c.JSON(http.StatusOK, confirmed)
}

func (h *httpHandler) listImages(c *gin.Context) {
	ownerID, albumID, ok := requireOwnerAndAlbum(c)
	if !ok {
		return
	}

	includePending, _ := strconv.ParseBool(c.DefaultQuery("include_pending", "false"))

	images, err := h.service.List(c.Request.Context(), ownerID, albumID, includePending)
	if err != nil {
		respondImageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (h *httpHandler) getImage(c *gin.Context) {
	ownerID, albumID, ok := requireOwnerAndAlbum(c)
	if !ok {
		return
	}
	imageID, ok := parseImageID(c)
	if !ok {
		return
	}

	img, err := h.service.Get(c.Request.Context(), ownerID, albumID, imageID)
	if err != nil {
		respondImageError(c, err)
		return
	}

	c.JSON(http.StatusOK, img)
}

func (h *httpHandler) updateImage(c *gin.Context) {
	ownerID, albumID, ok := requireOwnerAndAlbum(c)
	if !ok {
		return
	}
	imageID, ok := parseImageID(c)
	if !ok {
		return
	}

	var req updateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), ownerID, albumID, imageID, req.Name, req.Description)
	if err != nil {
		respondImageError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *httpHandler) deleteImage(c *gin.Context) {
	ownerID, albumID, ok := requireOwnerAndAlbum(c)
	if !ok {
		return
	}
	imageID, ok := parseImageID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), ownerID, albumID, imageID); err != nil {
		respondImageError(c, err)
		return
	}

	metrics.ImagesDeleted.Inc()
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) generateDownloadURL(c *gin.Context) {
	ownerID, albumID, ok := requireOwnerAndAlbum(c)
	if !ok {
		return
	}
	imageID, ok := parseImageID(c)
	if !ok {
		return
	}

	intent, err := h.service.GenerateDownloadURL(c.Request.Context(), ownerID, albumID, imageID)
	if err != nil {
		respondImageError(c, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}

func requireOwnerAndAlbum(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}

	albumID, err := uuid.Parse(c.Param("albumID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album id"})
		return uuid.Nil, uuid.Nil, false
	}

	return ownerID, albumID, true
}

func parseImageID(c *gin.Context) (uuid.UUID, bool) {
	imageID, err := uuid.Parse(c.Param("imageID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return uuid.Nil, false
	}
	return imageID, true
}

// Ownership and existence failures share one body so callers cannot tell a
// foreign album from a missing image.
func respondImageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, validation.ErrInvalidName):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image name"})
	case errors.Is(err, ErrInvalidContentType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported content type"})
	case errors.Is(err, ErrInvalidSize):
		c.JSON(http.StatusBadRequest, gin.H{"error": "size_bytes must be greater than 0"})
	case errors.Is(err, ErrImageTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": "image too large"})
	case errors.Is(err, ErrQuotaExceeded):
		c.JSON(http.StatusBadRequest, gin.H{"error": "quota exceeded"})
	case errors.Is(err, ErrUploadIncomplete):
		c.JSON(http.StatusConflict, gin.H{"error": "upload not complete"})
	case errors.Is(err, ErrAlbumMismatch), errors.Is(err, ErrImageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "operation failed"})
	}
}
