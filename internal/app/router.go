package app

import (
	"github.com/choxos/robass-backend/docs"
	"github.com/choxos/robass-backend/internal/config"
	"github.com/choxos/robass-backend/internal/middleware"
	"github.com/choxos/robass-backend/internal/model"
	"github.com/choxos/robass-backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c, cfg)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerReviewerRoutes(authGroup, c)
		a.registerAdminRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.Health)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// The tool catalog is readable before login; claims attach when a valid
	// token accompanies the request.
	catalog := router.Group("/api")
	catalog.Use(middleware.TryAuthMiddleware(cfg))
	{
		catalog.GET("/tools", c.tool.ListTools)
		catalog.GET("/tools/:id", c.tool.GetTool)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/users", c.auth.ListUsers)
	}
}

func (a *App) registerReviewerRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.Profile)
	rg.GET("/dashboard", c.project.Dashboard)

	// Projects
	rg.POST("/projects", c.project.Create)
	rg.GET("/projects", c.project.List)
	rg.GET("/projects/:id", c.project.Get)
	rg.PUT("/projects/:id", c.project.Update)
	rg.DELETE("/projects/:id", c.project.Delete)
	rg.GET("/projects/:id/stats", c.project.Stats)

	// Studies
	rg.POST("/projects/:id/studies", c.study.Create)
	rg.GET("/projects/:id/studies", c.study.List)
	rg.GET("/studies/:id", c.study.Get)
	rg.PUT("/studies/:id", c.study.Update)
	rg.DELETE("/studies/:id", c.study.Delete)
	rg.GET("/studies/:id/assessments", c.assessment.ListByStudy)

	// Assessments
	rg.POST("/assessments", c.assessment.Create)
	rg.GET("/assessments/:id", c.assessment.Get)
	rg.PUT("/assessments/:id", c.assessment.Update)
	rg.DELETE("/assessments/:id", c.assessment.Delete)
	rg.POST("/assessments/:id/responses", c.assessment.SaveResponse)
	rg.GET("/assessments/:id/progress", c.assessment.GetProgress)
	rg.PUT("/assessments/:id/domains/:domainId/judgement", c.assessment.SetJudgement)
	rg.POST("/assessments/:id/evaluate", c.assessment.Evaluate)

	// Exports
	rg.GET("/projects/:id/export/csv", c.export.ExportCSV)
	rg.GET("/projects/:id/export/matrix", c.export.RatingMatrix)
	rg.GET("/projects/:id/exports", c.export.History)
}
