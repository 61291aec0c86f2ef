package server

import (
	"github.com/adilbek/goalbums/internal/album"
	"github.com/adilbek/goalbums/internal/auth"
	"github.com/adilbek/goalbums/internal/config"
	"github.com/adilbek/goalbums/internal/image"
	"github.com/adilbek/goalbums/internal/logger"
	"github.com/adilbek/goalbums/internal/metrics"
	"github.com/adilbek/goalbums/internal/quota"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config       config.Config
	DB           *pgxpool.Pool
	ObjectStore  *minio.Client
	AuthService  *auth.Service
	AlbumService *album.Service
	ImageService *image.Service
	QuotaService *quota.Service
}

// NewRouter builds a Gin engine with foundational middleware and routes.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(gin.Logger())

	registerHealthRoutes(router, deps)
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)

	api := router.Group("/v1")
	if deps.AuthService != nil {
		auth.RegisterRoutes(api, deps.AuthService)

		protected := api.Group("/")
		protected.Use(auth.AuthMiddleware(deps.AuthService))

		if deps.AlbumService != nil {
			album.RegisterRoutes(protected, deps.AlbumService)
		}
		if deps.ImageService != nil {
			image.RegisterRoutes(protected, deps.ImageService)
		}
		if deps.QuotaService != nil {
			quota.RegisterRoutes(protected, deps.QuotaService)
		}
	}

	return router
}
