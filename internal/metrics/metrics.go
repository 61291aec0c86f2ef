package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UploadURLsIssued counts presigned PUT URLs handed out.
	UploadURLsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goalbums_upload_urls_issued_total",
		Help: "Number of presigned upload URLs issued.",
	})
	// UploadsConfirmed counts images flipped from pending to active.
	UploadsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goalbums_uploads_confirmed_total",
		Help: "Number of uploads confirmed as active.",
	})
	// ImagesDeleted counts explicit image deletions.
	ImagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goalbums_images_deleted_total",
		Help: "Number of images deleted.",
	})
	// QuotaRejections counts upload intents rejected at quota admission.
	QuotaRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "goalbums_quota_rejections_total",
		Help: "Number of upload intents rejected by the quota check.",
	})
)

// Register attaches the Prometheus metrics endpoint to the router.
func Register(router *gin.Engine, path string) {
	router.GET(path, gin.WrapH(promhttp.Handler()))
}
