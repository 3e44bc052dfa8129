package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"enib-internships/backend/config"
	"enib-internships/backend/internal/api/handler"
	"enib-internships/backend/internal/api/middleware"
	"enib-internships/backend/internal/metrics"
	"enib-internships/backend/internal/service"
	"enib-internships/backend/pkg/jwt"
	"enib-internships/backend/pkg/redis"
)

const (
	maxBodyBytes    = 2 << 20
	rateLimitCount  = 120
	rateLimitWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎；rdb 为 nil 时跳过令牌黑名单与限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	if !cfg.App.IsTest() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	var (
		checker middleware.TokenChecker
		limiter middleware.Limiter
	)
	if rdb != nil {
		checker = rdb
		limiter = rdb
	}

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Observe(m))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查与指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	admin := middleware.RoleAuth(service.RoleAdmin)
	staff := middleware.RoleAuth(service.RoleAdmin, service.RoleMentor)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.GET("/auth/cas", middleware.RateLimit(limiter, rateLimitCount, rateLimitWindow), h.Auth.LoginCAS)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, checker))
		authorized.Use(middleware.RateLimit(limiter, rateLimitCount, rateLimitWindow))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 发布进度推送（浏览器 WebSocket 无法携带 Authorization 头，使用 access_token 查询参数）
			authorized.GET("/ws", staff, h.Progress.Serve)

			// 实习类别
			types := authorized.Group("/internship-types")
			{
				types.GET("", h.InternshipType.List)
				types.POST("", admin, h.InternshipType.Create)
				types.PUT("/:id", admin, h.InternshipType.Update)
				types.DELETE("/:id", admin, h.InternshipType.Delete)
			}

			// 企业
			businesses := authorized.Group("/businesses")
			{
				businesses.GET("", h.Business.List)
				businesses.GET("/:id", h.Business.GetByID)
				businesses.POST("", admin, h.Business.Create)
				businesses.PUT("/:id", admin, h.Business.Update)
				businesses.DELETE("/:id", admin, h.Business.Delete)
			}

			// 学生
			students := authorized.Group("/students", staff)
			{
				students.GET("", h.Student.List)
				students.GET("/:id", h.Student.GetByID)
				students.POST("", admin, h.Student.Create)
				students.PUT("/:id", admin, h.Student.Update)
				students.DELETE("/:id", admin, h.Student.Delete)
			}

			// 导师
			mentors := authorized.Group("/mentors", staff)
			{
				mentors.GET("", h.Mentor.List)
				mentors.GET("/:id", h.Mentor.GetByID)
				mentors.POST("", admin, h.Mentor.Create)
				mentors.PUT("/:id", admin, h.Mentor.Update)
				mentors.DELETE("/:id", admin, h.Mentor.Delete)
			}

			// 实习
			internships := authorized.Group("/internships")
			{
				internships.GET("", h.Internship.List)
				internships.GET("/:id", h.Internship.GetByID)
				internships.POST("", staff, h.Internship.Create)
				internships.PUT("/:id", staff, h.Internship.Update)
				internships.DELETE("/:id", admin, h.Internship.Delete)
				internships.POST("/:id/transitions/:name", admin, h.Internship.Transition)
				internships.POST("/:id/files", staff, h.Internship.AddFile)
				internships.DELETE("/:id/files/:file_id", staff, h.Internship.RemoveFile)
			}

			// 批次
			campaigns := authorized.Group("/campaigns")
			{
				campaigns.GET("", h.Campaign.List)
				campaigns.GET("/:id", h.Campaign.GetByID)
				campaigns.POST("", admin, h.Campaign.Create)
				campaigns.PUT("/:id", admin, h.Campaign.Update)
				campaigns.DELETE("/:id", admin, h.Campaign.Delete)
				campaigns.POST("/:id/launch", admin, h.Campaign.Launch)

				campaigns.GET("/:id/mentors", staff, h.Campaign.ListMentors)
				campaigns.POST("/:id/mentors/:mentor_id", admin, h.Campaign.LinkMentor)
				campaigns.DELETE("/:id/mentors/:mentor_id", admin, h.Campaign.UnlinkMentor)

				campaigns.GET("/:id/propositions", staff, h.Proposition.List)
				campaigns.POST("/:id/propositions", staff, h.Proposition.Create)
				campaigns.DELETE("/:id/propositions/:proposition_id", staff, h.Proposition.Delete)
			}

			// 统计
			stats := authorized.Group("/statistics", staff)
			{
				stats.GET("", h.Statistics.Global)
				stats.GET("/campaigns", h.Statistics.Campaigns)
				stats.GET("/campaigns/:id", h.Statistics.Campaign)
				stats.POST("/resync", admin, h.Statistics.Resync)
			}

			// 导出
			export := authorized.Group("/export", admin)
			{
				export.GET("/campaigns/:id/xlsx", h.Export.ExportCampaign)
				export.GET("/campaigns/:id/ics", h.Export.ExportCalendar)
			}
		}
	}

	return r
}
