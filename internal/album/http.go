package album

import (
	"errors"
	"net/http"

	"github.com/adilbek/goalbums/internal/auth"
	"github.com/adilbek/goalbums/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterRoutes mounts album endpoints onto the router.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.POST("/albums", handler.createAlbum)
	group.GET("/albums", handler.listAlbums)
	group.GET("/albums/:albumID", handler.getAlbum)
	group.PUT("/albums/:albumID", handler.updateAlbum)
	group.DELETE("/albums/:albumID", handler.deleteAlbum)
}

type httpHandler struct {
	service *Service
}

type createAlbumRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

type updateAlbumRequest struct {
	Name        *string `json:"name" binding:"omitempty"`
	Description *string `json:"description" binding:"omitempty,max=255"`
}

func (h *httpHandler) createAlbum(c *gin.Context) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateAlbum(c.Request.Context(), ownerID, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrInvalidName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album name"})
		case errors.Is(err, ErrAlbumNameExists):
			c.JSON(http.StatusConflict, gin.H{"error": "album name already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create album"})
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *httpHandler) listAlbums(c *gin.Context) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	albums, err := h.service.ListAlbums(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list albums"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"albums": albums})
}

func (h *httpHandler) getAlbum(c *gin.Context) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	albumID, err := uuid.Parse(c.Param("albumID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album id"})
		return
	}

	a, err := h.service.GetAlbum(c.Request.Context(), ownerID, albumID)
	if err != nil {
		if errors.Is(err, ErrAlbumNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch album"})
		return
	}

	c.JSON(http.StatusOK, a)
}

func (h *httpHandler) updateAlbum(c *gin.Context) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	albumID, err := uuid.Parse(c.Param("albumID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album id"})
		return
	}

	var req updateAlbumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.service.UpdateAlbum(c.Request.Context(), ownerID, albumID, req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, validation.ErrInvalidName):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album name"})
		case errors.Is(err, ErrAlbumNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
		case errors.Is(err, ErrAlbumNameExists):
			c.JSON(http.StatusConflict, gin.H{"error": "album name already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update album"})
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *httpHandler) deleteAlbum(c *gin.Context) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	albumID, err := uuid.Parse(c.Param("albumID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid album id"})
		return
	}

	if err := h.service.DeleteAlbum(c.Request.Context(), ownerID, albumID); err != nil {
		if errors.Is(err, ErrAlbumNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete album"})
		return
	}

	c.Status(http.StatusNoContent)
}
