package handlers

import (
	"context"
	"net/http"
	"time"

	"coursemarket/internal/domain"
	"coursemarket/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterDeps struct {
	UserAuth  *AuthHandler
	AdminAuth *AuthHandler
	Courses   *CourseHandler
	Purchases *PurchaseHandler

	Tokens   middleware.TokenVerifier
	Metrics  *middleware.Metrics
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger

	AllowedOrigins []string
	// UploadDir is served under UploadPrefix when both are set.
	UploadDir    string
	UploadPrefix string

	Ready func(ctx context.Context) error
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = 8 << 20

	config := cors.DefaultConfig()
	if len(d.AllowedOrigins) > 0 {
		config.AllowOrigins = d.AllowedOrigins
		config.AllowCredentials = true
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	r.Use(cors.New(config))

	r.Use(middleware.RequestLogger(d.Logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Instrument())
	}

	r.GET("/healthz", healthz(d.Ready))
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.UploadDir != "" && d.UploadPrefix != "" {
		r.Static(d.UploadPrefix, d.UploadDir)
	}

	requireUser := middleware.AuthMiddleware(d.Tokens, domain.RoleUser, d.Metrics)
	requireAdmin := middleware.AuthMiddleware(d.Tokens, domain.RoleAdmin, d.Metrics)

	api := r.Group("/api/v1")
	{
		user := api.Group("/user")
		{
			user.POST("/signup", d.UserAuth.Signup)
			user.POST("/signin", d.UserAuth.Signin)
			user.GET("/purchases", requireUser, d.Purchases.List)
			user.GET("/purchases/:courseId", requireUser, d.Purchases.Access)
		}
		admin := api.Group("/admin")
		{
			admin.POST("/signup", d.AdminAuth.Signup)
			admin.POST("/signin", d.AdminAuth.Signin)
			admin.POST("/course", requireAdmin, d.Courses.Create)
			admin.PUT("/course", requireAdmin, d.Courses.Upsert)
			admin.GET("/course/bulk", requireAdmin, d.Courses.Bulk)
		}
		api.GET("/course/preview", d.Courses.Preview)
	}

	return r
}

func healthz(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("readiness check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
