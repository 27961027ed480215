package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/pnf-horario-api/api/swagger"
	"github.com/noah-isme/pnf-horario-api/internal/handler"
	"github.com/noah-isme/pnf-horario-api/internal/middleware"
	"github.com/noah-isme/pnf-horario-api/internal/models"
	"github.com/noah-isme/pnf-horario-api/internal/service"
	"github.com/noah-isme/pnf-horario-api/pkg/config"
	"github.com/noah-isme/pnf-horario-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/pnf-horario-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/pnf-horario-api/pkg/middleware/requestid"
)

type routerDeps struct {
	metrics   *service.MetricsService
	auth      *service.AuthService
	timetable *handler.TimetableHandler
	catalog   *handler.CatalogHandler
	readiness []handler.ReadinessCheck
}

var editorRoles = []models.UserRole{models.RoleCoordinator, models.RoleAdmin, models.RoleSuperAdmin}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))
	r.Use(middleware.WithResponseMeta())

	probes := handler.NewMetricsHandler(deps.metrics, deps.readiness...)
	r.GET("/health", probes.Health)
	r.GET("/ready", probes.Ready)
	r.GET("/metrics", probes.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if !cfg.Timetable.Enabled {
		logr.Warn("timetable editor disabled")
		return r
	}

	api := r.Group(cfg.APIPrefix, middleware.JWT(deps.auth), middleware.RequireRoles(editorRoles...), middleware.Audit(logr))

	sessions := api.Group("/horarios/sesiones")
	sessions.POST("", deps.timetable.Open)
	sessions.GET("/:id", deps.timetable.Get)
	sessions.DELETE("/:id", deps.timetable.Discard)
	sessions.GET("/:id/unidades", deps.timetable.Units)
	sessions.POST("/:id/candidatos", deps.timetable.Candidates)
	sessions.POST("/:id/crear", deps.timetable.StartCreation)
	sessions.POST("/:id/mover", deps.timetable.SelectMove)
	sessions.POST("/:id/mover/confirmar", deps.timetable.CommitMove)
	sessions.DELETE("/:id/mover", deps.timetable.CancelMove)
	sessions.DELETE("/:id/clases/:claseId", deps.timetable.DeleteClass)
	sessions.POST("/:id/guardar", deps.timetable.Commit)
	sessions.POST("/:id/restablecer", deps.timetable.Reset)
	sessions.GET("/:id/exportar", deps.timetable.Export)

	api.POST("/profesores/to/seccion/:id", deps.catalog.SearchProfessors)
	api.POST("/aulas/to/seccion/:id", deps.catalog.SearchClassrooms)
	api.GET("/horarios/profesor/:id", deps.catalog.ProfessorSchedule)
	api.GET("/horarios/aula/:id", deps.catalog.ClassroomSchedule)
	api.GET("/trayectos/:id/unidades-curriculares", deps.catalog.Units)

	return r
}
