package bootstrap

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"career-mentor/internal/analysis"
	"career-mentor/internal/health"
	"career-mentor/internal/mentor"
	"career-mentor/internal/programs"
	"career-mentor/internal/session"
	"career-mentor/internal/shared/config"
	"career-mentor/internal/shared/metrics"
	"career-mentor/internal/shared/server"
)

// App holds shared dependencies.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	Client   *analysis.HTTPClient
	Store    *session.MemoryStore
	Catalog  *programs.Catalog
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Health   *health.Service
	Service  *mentor.Service
	Handler  *mentor.Handler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	client, err := analysis.NewHTTPClient(cfg.AnalysisBaseURL, analysis.WithTimeout(cfg.AnalysisTimeout))
	if err != nil {
		return nil, fmt.Errorf("analysis client: %w", err)
	}
	catalog, err := programs.Default()
	if err != nil {
		return nil, fmt.Errorf("program table: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	store := session.NewMemoryStore(cfg.SessionTTL)
	m.RegisterSessionGauge(func() float64 { return float64(store.Len()) })

	svc := mentor.NewService(store, client, catalog, m, cfg.MaxUploadBytes)
	handler := mentor.NewHandler(svc)

	healthSvc := health.NewService(0)
	healthSvc.Register("analysis_service", client.Ping)

	app := &App{
		Config:   cfg,
		Client:   client,
		Store:    store,
		Catalog:  catalog,
		Metrics:  m,
		Registry: registry,
		Health:   healthSvc,
		Service:  svc,
		Handler:  handler,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:  cfg,
		Mentor:  handler,
		Health:  healthSvc,
		Metrics: m,
	})
	return app, nil
}
