package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/jobpilot/internal/api/handler"
	"github.com/timmy/jobpilot/internal/api/middleware"
	"github.com/timmy/jobpilot/internal/config"
	"github.com/timmy/jobpilot/internal/logger"
	"github.com/timmy/jobpilot/internal/service"
)

// Services bundles what the HTTP layer serves.
type Services struct {
	Search       *service.SearchService
	Applications *service.ApplicationService
	Resumes      *service.ResumeService
	Agent        *service.AgentService

	// HealthChecks are run by GET /health, keyed by dependency name.
	HealthChecks map[string]handler.HealthCheck
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(svc *Services, cfg *config.ServerConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log, "/health"))
	r.Use(middleware.CORS(middleware.NewCORSConfig(cfg.CORS)))

	healthHandler := handler.NewHealthHandler("jobpilot", svc.HealthChecks)
	jobHandler := handler.NewJobHandler(svc.Search, svc.Applications)
	applicationHandler := handler.NewApplicationHandler(svc.Applications)
	resumeHandler := handler.NewResumeHandler(svc.Resumes)
	agentHandler := handler.NewAgentHandler(svc.Agent)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/sources", jobHandler.Sources)

		// Jobs
		v1.GET("/jobs/search", jobHandler.Search)
		v1.GET("/jobs", jobHandler.List)
		v1.GET("/jobs/:id", jobHandler.Get)

		// Applications
		v1.GET("/applications", applicationHandler.List)
		v1.GET("/applications/summary", applicationHandler.Summary)
		v1.POST("/applications", applicationHandler.Create)
		v1.GET("/applications/:id", applicationHandler.Get)
		v1.PATCH("/applications/:id", applicationHandler.Update)

		// Resumes
		v1.GET("/resumes", resumeHandler.List)
		v1.GET("/resumes/primary", resumeHandler.Primary)
		v1.POST("/resumes/upload", resumeHandler.Upload)
		v1.GET("/resumes/:id/download", resumeHandler.Download)

		// Agent
		v1.POST("/agent/run", agentHandler.Run)
	}

	return r
}
