// Package api serves the dashboard views as JSON over HTTP.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/worldland/netstats/internal/domain"
	"github.com/worldland/netstats/internal/logs"
	"github.com/worldland/netstats/internal/poller"
	"github.com/worldland/netstats/internal/prefs"
	"github.com/worldland/netstats/internal/presets"
	"github.com/worldland/netstats/internal/providers"
	"github.com/worldland/netstats/internal/statsapi"
)

var logger = logs.Logger("http")

// StatsAPI defines the upstream calls made on behalf of a request
type StatsAPI interface {
	Node(ctx context.Context, nodeID string) ([]domain.ProviderRecord, error)
	Operator(ctx context.Context, wallet string) ([]domain.ProviderRecord, error)
	Uptime(ctx context.Context, nodeID string) (*domain.UptimeReport, error)
	Benchmark(ctx context.Context, kind, nodeID string) ([]domain.BenchmarkResult, error)
	StartHealthcheck(ctx context.Context, nodeID string) (*domain.HealthcheckTask, error)
	HealthcheckStatus(ctx context.Context, taskID string) (*domain.HealthcheckTask, error)
	WaitHealthcheck(ctx context.Context, taskID string, maxWait time.Duration) (*domain.HealthcheckTask, error)
	SubmitFeedback(ctx context.Context, fb statsapi.Feedback) (string, error)
}

// Feed is a polled upstream resource that can be refetched or dropped
type Feed interface {
	Fetch(ctx context.Context) error
	Reset()
}

// HistorySource is the polled network history
type HistorySource interface {
	Feed
	Stats() ([]domain.HistoricalStat, time.Time, bool)
}

// Preferences defines the persisted client preferences
type Preferences interface {
	Networks() []string
	SelectedNetwork() (string, error)
	SelectNetwork(name string) error
	DismissFeedback() error
	Settings() (prefs.Settings, error)
	ApplySettings(s prefs.Settings) error
}

// PresetStore defines the filter preset operations
type PresetStore interface {
	List() ([]presets.Preset, error)
	Create(name string, c domain.FilterCriteria) (presets.Preset, error)
	Update(active string, c domain.FilterCriteria) (presets.Preset, error)
	Remove(active string) (domain.FilterCriteria, string, error)
	Apply(name string) (domain.FilterCriteria, error)
}

// HealthReporter exposes poll job outcomes
type HealthReporter interface {
	Snapshot() map[string]poller.JobStatus
	Healthy() bool
}

// Deps are the collaborators of the server
type Deps struct {
	View      *providers.View
	Providers Feed
	History   HistorySource
	Clients   map[string]StatsAPI
	Prefs     Preferences
	Presets   PresetStore
	Health    HealthReporter

	// HealthcheckWait bounds POST /healthcheck with wait=true
	HealthcheckWait time.Duration
}

// Server handles dashboard requests
type Server struct {
	Deps

	mu           sync.Mutex
	activePreset string
}

func NewServer(deps Deps) *Server {
	if deps.HealthcheckWait <= 0 {
		deps.HealthcheckWait = 2 * time.Minute
	}
	return &Server{Deps: deps}
}

// Router builds the gin engine with every route under /api/v1
func (s *Server) Router(allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery(), corsMiddleware(allowOrigins))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/providers", s.HandleListProviders)
		v1.PUT("/providers/page", s.HandleSelectPage)
		v1.GET("/providers/summary", s.HandleSummary)
		v1.GET("/providers/:id", s.HandleGetNode)
		v1.GET("/providers/:id/uptime", s.HandleGetUptime)
		v1.GET("/providers/:id/pricing", s.HandleGetNodePricing)
		v1.GET("/providers/:id/benchmark/:kind", s.HandleGetBenchmark)
		v1.GET("/pricing", s.HandleNetworkPricing)
		v1.GET("/operators/:wallet", s.HandleGetOperator)
		v1.GET("/network/historical", s.HandleHistorical)

		v1.GET("/filters", s.HandleGetFilters)
		v1.PUT("/filters", s.HandleSetFilters)

		v1.GET("/network", s.HandleGetNetwork)
		v1.PUT("/network", s.HandleSelectNetwork)
		v1.GET("/settings", s.HandleGetSettings)
		v1.PUT("/settings", s.HandleSetSettings)

		v1.GET("/presets", s.HandleListPresets)
		v1.POST("/presets", s.HandleCreatePreset)
		v1.PUT("/presets/:name", s.HandleUpdatePreset)
		v1.DELETE("/presets/:name", s.HandleRemovePreset)
		v1.POST("/presets/:name/apply", s.HandleApplyPreset)

		v1.POST("/feedback", s.HandleFeedback)
		v1.POST("/healthcheck", s.HandleStartHealthcheck)
		v1.GET("/healthcheck/:taskId", s.HandleHealthcheckStatus)
		v1.GET("/health", s.HandleHealth)
	}
	return r
}

// client returns the upstream client of the selected network
func (s *Server) client() (StatsAPI, string, error) {
	network, err := s.Prefs.SelectedNetwork()
	if err != nil {
		return nil, "", err
	}
	c, ok := s.Clients[network]
	if !ok {
		return nil, network, errUnknownNetwork
	}
	return c, network, nil
}

func (s *Server) active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePreset
}

func (s *Server) setActive(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activePreset = name
}

func corsMiddleware(allowOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range allowOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = allowOrigins
	}
	if len(cfg.AllowOrigins) == 0 && !cfg.AllowAllOrigins {
		cfg.AllowAllOrigins = true
	}
	return cors.New(cfg)
}

// requestLogger logs every request through the http logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"elapsed", time.Since(start),
			"client", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}
		switch {
		case status >= http.StatusInternalServerError:
			logger.Errorw("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warnw("request", fields...)
		default:
			logger.Debugw("request", fields...)
		}
	}
}
