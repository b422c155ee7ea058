package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/worldland/netstats/internal/domain"
	"github.com/worldland/netstats/internal/pricing"
	"github.com/worldland/netstats/internal/providers"
	"github.com/worldland/netstats/internal/statsapi"
)

// ProvidersResponse is one page of the filtered provider list
type ProvidersResponse struct {
	providers.Page[domain.ProviderRecord]
	Loaded    bool       `json:"loaded"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NodeResponse is returned by GET /providers/:id
type NodeResponse struct {
	NodeID  string                   `json:"node_id"`
	Name    string                   `json:"name"`
	Records []domain.ProviderRecord  `json:"records"`
	Pricing []pricing.RuntimePricing `json:"pricing"`
}

// OperatorResponse is one page of an operator's nodes
type OperatorResponse struct {
	Wallet  string                `json:"wallet"`
	Summary domain.NetworkSummary `json:"summary"`
	providers.Page[domain.ProviderRecord]
}

// HistoricalResponse is the network history series
type HistoricalResponse struct {
	Loaded    bool                    `json:"loaded"`
	UpdatedAt *time.Time              `json:"updated_at,omitempty"`
	Stats     []domain.HistoricalStat `json:"stats"`
}

// PageRequest selects the page shown by later GET /providers calls
type PageRequest struct {
	Page int `json:"page" binding:"required,min=1"`
}

// HandleListProviders handles GET /providers?page=N. An explicit page is
// read without moving the selected one.
func (s *Server) HandleListProviders(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}

	var current providers.Page[domain.ProviderRecord]
	if page > 0 {
		current = s.View.PageOf(page)
	} else {
		current = s.View.Current()
	}
	c.JSON(http.StatusOK, s.providersResponse(current))
}

// HandleSelectPage handles PUT /providers/page
func (s *Server) HandleSelectPage(c *gin.Context) {
	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "page must be a positive integer", "INVALID_PAGE")
		return
	}
	s.View.SetPage(req.Page)
	c.JSON(http.StatusOK, s.providersResponse(s.View.Current()))
}

func (s *Server) providersResponse(page providers.Page[domain.ProviderRecord]) ProvidersResponse {
	resp := ProvidersResponse{
		Page:   page,
		Loaded: s.View.Loaded(),
	}
	if resp.Loaded {
		at := s.View.UpdatedAt().UTC()
		resp.UpdatedAt = &at
	}
	return resp
}

// HandleSummary handles GET /providers/summary
func (s *Server) HandleSummary(c *gin.Context) {
	if !s.View.Loaded() {
		writeError(c, http.StatusServiceUnavailable, "provider list not loaded yet", "NOT_LOADED")
		return
	}
	c.JSON(http.StatusOK, s.View.Summary())
}

// HandleGetNode handles GET /providers/:id
func (s *Server) HandleGetNode(c *gin.Context) {
	records, ok := s.fetchNode(c)
	if !ok {
		return
	}
	resp := NodeResponse{
		NodeID:  c.Param("id"),
		Name:    records[0].Name(),
		Records: records,
		Pricing: pricing.Table(&records[0]),
	}
	c.JSON(http.StatusOK, resp)
}

// HandleGetNodePricing handles GET /providers/:id/pricing
func (s *Server) HandleGetNodePricing(c *gin.Context) {
	records, ok := s.fetchNode(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, pricing.Table(&records[0]))
}

func (s *Server) fetchNode(c *gin.Context) ([]domain.ProviderRecord, bool) {
	client, _, err := s.client()
	if err != nil {
		writeUpstreamError(c, err, "", "")
		return nil, false
	}
	records, err := client.Node(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeUpstreamError(c, err, "node not found", "NODE_NOT_FOUND")
		return nil, false
	}
	return records, true
}

// HandleGetUptime handles GET /providers/:id/uptime
func (s *Server) HandleGetUptime(c *gin.Context) {
	client, _, err := s.client()
	if err != nil {
		writeUpstreamError(c, err, "", "")
		return
	}
	report, err := client.Uptime(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeUpstreamError(c, err, "node not found", "NODE_NOT_FOUND")
		return
	}
	c.JSON(http.StatusOK, report)
}

// HandleGetBenchmark handles GET /providers/:id/benchmark/:kind
func (s *Server) HandleGetBenchmark(c *gin.Context) {
	kind := c.Param("kind")
	if !statsapi.ValidBenchmarkKind(kind) {
		writeError(c, http.StatusBadRequest, "unknown benchmark kind", "INVALID_BENCHMARK")
		return
	}
	client, _, err := s.client()
	if err != nil {
		writeUpstreamError(c, err, "", "")
		return
	}
	results, err := client.Benchmark(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		writeUpstreamError(c, err, "node not found", "NODE_NOT_FOUND")
		return
	}
	c.JSON(http.StatusOK, results)
}

// HandleNetworkPricing handles GET /pricing?runtime=vm&page=N
func (s *Server) HandleNetworkPricing(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}
	runtime := c.DefaultQuery("runtime", domain.RuntimeVM)

	rows := pricing.NetworkTable(s.View.Providers(), runtime)
	c.JSON(http.StatusOK, providers.Paginate(rows, page, providers.PricingPageSize))
}

// HandleGetOperator handles GET /operators/:wallet?page=N
func (s *Server) HandleGetOperator(c *gin.Context) {
	page, ok := pageParam(c)
	if !ok {
		return
	}
	client, _, err := s.client()
	if err != nil {
		writeUpstreamError(c, err, "", "")
		return
	}
	wallet := c.Param("wallet")
	nodes, err := client.Operator(c.Request.Context(), wallet)
	if err != nil {
		writeUpstreamError(c, err, "operator not found", "OPERATOR_NOT_FOUND")
		return
	}

	sorted := providers.Sorted(nodes)
	c.JSON(http.StatusOK, OperatorResponse{
		Wallet:  wallet,
		Summary: providers.Summarize(sorted),
		Page:    providers.Paginate(sorted, page, providers.ParticipationPageSize),
	})
}

// HandleHistorical handles GET /network/historical
func (s *Server) HandleHistorical(c *gin.Context) {
	stats, at, loaded := s.History.Stats()
	resp := HistoricalResponse{Loaded: loaded, Stats: stats}
	if loaded {
		at = at.UTC()
		resp.UpdatedAt = &at
	}
	if resp.Stats == nil {
		resp.Stats = []domain.HistoricalStat{}
	}
	c.JSON(http.StatusOK, resp)
}
