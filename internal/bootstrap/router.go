package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	httpapi "github.com/GoSim-25-26J-441/docforge-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/auth"
	authhttp "github.com/GoSim-25-26J-441/docforge-backend/internal/auth/http"
	projectshttp "github.com/GoSim-25-26J-441/docforge-backend/internal/projects/http"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/repository"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/projects/service"
	"github.com/GoSim-25-26J-441/docforge-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	StorageMode string
	CORSOrigins []string

	// DB is nil in memory mode; user rows are then not recorded.
	DB *pgxpool.Pool

	Store     repository.Store
	Drafts    repository.DraftStore
	Events    repository.Broker
	Generator service.Generator
	Exporter  service.Exporter

	// Verifier is nil in header auth mode.
	Verifier      auth.TokenVerifier
	AllowDemoUser bool
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id", "X-User-Id", "X-User-Email"},
		ExposeHeaders:    []string{"Content-Disposition", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	var pinger httpapi.Pinger
	if dep.DB != nil {
		pinger = dep.DB
	}
	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.StorageMode, pinger)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	if dep.Verifier != nil {
		api.Use(auth.RequireToken(dep.Verifier))
	} else {
		api.Use(auth.HeaderUser(dep.AllowDemoUser))
	}
	if dep.DB != nil {
		api.Use(auth.WithUser(users.NewRepo(dep.DB)))
	}

	authhttp.New(dep.Verifier).Register(api.Group("/auth"))

	projectsHandler := projectshttp.New(
		service.NewProjectService(dep.Store, dep.Drafts),
		service.NewAssembler(dep.Store, dep.Drafts, dep.Generator),
		service.NewEngine(dep.Store, dep.Generator, dep.Events),
		service.NewExportService(dep.Store, dep.Exporter),
		dep.Events,
	)
	projectsHandler.Register(api)

	return r
}
