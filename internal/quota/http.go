package quota

import (
	"net/http"

	"github.com/adilbek/goalbums/internal/auth"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the quota endpoint onto the router.
func RegisterRoutes(group *gin.RouterGroup, service *Service) {
	handler := &httpHandler{service: service}
	group.GET("/quota", handler.getQuota)
}

type httpHandler struct {
	service *Service
}

type quotaResponse struct {
	Quota    Quota `json:"quota"`
	MaxBytes int64 `json:"max_bytes"`
}

func (h *httpHandler) getQuota(c *gin.Context) {
	ownerID, _, ok := auth.RequireUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	q, err := h.service.Get(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch quota"})
		return
	}

	c.JSON(http.StatusOK, quotaResponse{Quota: q, MaxBytes: h.service.MaxBytes()})
}
