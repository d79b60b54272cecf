// internal/web/server.go
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sentinel-assessment/internal/anomaly"
	"sentinel-assessment/internal/assessment"
	"sentinel-assessment/internal/audit"
	"sentinel-assessment/internal/common/config"
	"sentinel-assessment/internal/common/logger"
	"sentinel-assessment/internal/common/observability"
	"sentinel-assessment/internal/report"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// ReportGenerator produces PDF bytes for a report.
type ReportGenerator interface {
	Generate(ctx context.Context, rep report.Report) ([]byte, error)
}

// StatsProvider reports how many outcomes were recorded per tier.
type StatsProvider interface {
	TierCounts(ctx context.Context) (map[assessment.RiskTier]int, error)
}

// ReadinessCheck reports whether one dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Deps are the collaborators of the HTTP layer. Recorder, Stats, Model and
// Obs are optional.
type Deps struct {
	Reports  ReportGenerator
	Recorder audit.Recorder
	Stats    StatsProvider
	Model    *anomaly.Artifact
	Obs      *observability.Observability
	Logger   logger.Logger
	Checks   map[string]ReadinessCheck
}

// Server is the gin application serving the pages and the JSON API.
type Server struct {
	cfg    *config.Config
	deps   Deps
	logger logger.Logger
	engine *gin.Engine
}

func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.MaxMultipartMemory = cfg.Upload.MaxBytes
	engine.SetHTMLTemplate(tmpl)
	if err := engine.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger,
		engine: engine,
	}

	engine.Use(gin.Recovery(), requestID(), accessLog(deps.Logger))
	s.routes()
	return s, nil
}

var templateFuncs = template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}

func (s *Server) routes() {
	r := s.engine

	r.GET("/", s.homePage)
	r.GET("/assessment", s.assessmentPage)
	r.POST("/assessment", s.submitAssessment)
	r.POST("/assessment/report", s.downloadReport)
	r.GET("/upload", s.uploadPage)
	r.POST("/upload", s.submitUpload)
	r.GET("/about", s.aboutPage)

	r.GET("/health", s.health)
	r.GET("/ready", s.ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	if len(s.cfg.Server.AllowedOrigins) > 0 {
		api.Use(cors.New(cors.Config{
			AllowOrigins:  s.cfg.Server.AllowedOrigins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
			ExposeHeaders: []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
			MaxAge:        12 * time.Hour,
		}))
	}
	{
		api.GET("/questions", s.apiQuestions)
		api.POST("/assessments", s.apiScore)
		api.POST("/reports", s.apiReport)
		api.POST("/uploads/preview", s.apiUploadPreview)
	}
}

// Handler exposes the router for net/http.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": s.cfg.App.Name,
		"version": s.cfg.App.Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{}
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			checks[name] = err.Error()
			continue
		}
		checks[name] = "ok"
	}

	model := s.deps.Model.Status()
	if s.cfg.Model.Required && !model.Loaded {
		status = http.StatusServiceUnavailable
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": checks,
		"model":  model,
	})
}
