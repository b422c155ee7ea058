package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/worldland/netstats/internal/domain"
	"github.com/worldland/netstats/internal/prefs"
	"github.com/worldland/netstats/internal/presets"
)

// NetworkResponse describes the selected and selectable networks
type NetworkResponse struct {
	Selected  string   `json:"selected"`
	Available []string `json:"available"`
}

// SelectNetworkRequest for PUT /network
type SelectNetworkRequest struct {
	Name string `json:"name" binding:"required"`
}

// PresetsResponse lists the stored presets and the active one
type PresetsResponse struct {
	Presets []presets.Preset `json:"presets"`
	Active  string           `json:"active"`
}

// CreatePresetRequest for POST /presets. Without criteria the current
// filters are saved.
type CreatePresetRequest struct {
	Name     string                 `json:"name"`
	Criteria *domain.FilterCriteria `json:"criteria"`
}

// HandleGetFilters handles GET /filters
func (s *Server) HandleGetFilters(c *gin.Context) {
	c.JSON(http.StatusOK, s.View.Criteria())
}

// HandleSetFilters handles PUT /filters; the page goes back to 1
func (s *Server) HandleSetFilters(c *gin.Context) {
	var criteria domain.FilterCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		writeError(c, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
		return
	}
	s.View.SetCriteria(criteria)
	c.JSON(http.StatusOK, s.View.Criteria())
}

// HandleGetNetwork handles GET /network
func (s *Server) HandleGetNetwork(c *gin.Context) {
	selected, err := s.Prefs.SelectedNetwork()
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error(), "STORE_ERROR")
		return
	}
	c.JSON(http.StatusOK, NetworkResponse{Selected: selected, Available: s.Prefs.Networks()})
}

// HandleSelectNetwork handles PUT /network. The cached lists are dropped and
// refetched from the new network before answering.
func (s *Server) HandleSelectNetwork(c *gin.Context) {
	var req SelectNetworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "name is required", "INVALID_REQUEST")
		return
	}

	if err := s.Prefs.SelectNetwork(req.Name); err != nil {
		if errors.Is(err, prefs.ErrUnknownNetwork) {
			writeError(c, http.StatusBadRequest, err.Error(), "UNKNOWN_NETWORK")
			return
		}
		writeError(c, http.StatusInternalServerError, err.Error(), "STORE_ERROR")
		return
	}
	logger.Infow("network selected", "network", req.Name)

	s.refetch(c.Request.Context())
	c.JSON(http.StatusOK, NetworkResponse{Selected: req.Name, Available: s.Prefs.Networks()})
}

// refetch resets both feeds and loads them again; failures are left to the
// next poll tick.
func (s *Server) refetch(ctx context.Context) {
	for _, feed := range []Feed{s.Providers, s.History} {
		if feed == nil {
			continue
		}
		feed.Reset()
		if err := feed.Fetch(ctx); err != nil {
			logger.Warnw("refetch after network change failed", "error", err)
		}
	}
}

// HandleGetSettings handles GET /settings
func (s *Server) HandleGetSettings(c *gin.Context) {
	settings, err := s.Prefs.Settings()
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error(), "STORE_ERROR")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// HandleSetSettings handles PUT /settings
func (s *Server) HandleSetSettings(c *gin.Context) {
	var req prefs.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
		return
	}
	if err := s.Prefs.ApplySettings(req); err != nil {
		writeError(c, http.StatusInternalServerError, err.Error(), "STORE_ERROR")
		return
	}
	s.HandleGetSettings(c)
}

// HandleListPresets handles GET /presets
func (s *Server) HandleListPresets(c *gin.Context) {
	list, err := s.Presets.List()
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error(), "STORE_ERROR")
		return
	}
	c.JSON(http.StatusOK, PresetsResponse{Presets: list, Active: s.active()})
}

// HandleCreatePreset handles POST /presets; the new preset becomes active
func (s *Server) HandleCreatePreset(c *gin.Context) {
	var req CreatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
		return
	}

	criteria := s.View.Criteria()
	if req.Criteria != nil {
		criteria = *req.Criteria
	}

	p, err := s.Presets.Create(req.Name, criteria)
	if err != nil {
		writePresetError(c, err)
		return
	}
	s.setActive(p.Name)
	s.View.SetCriteria(p.Criteria)
	c.JSON(http.StatusCreated, p)
}

// HandleUpdatePreset handles PUT /presets/:name. The body holds the criteria
// to store; an empty body stores the current filters.
func (s *Server) HandleUpdatePreset(c *gin.Context) {
	criteria := s.View.Criteria()
	if c.Request.ContentLength != 0 {
		var req domain.FilterCriteria
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
			return
		}
		criteria = req
	}

	p, err := s.Presets.Update(c.Param("name"), criteria)
	if err != nil {
		writePresetError(c, err)
		return
	}
	s.setActive(p.Name)
	s.View.SetCriteria(p.Criteria)
	c.JSON(http.StatusOK, p)
}

// HandleRemovePreset handles DELETE /presets/:name. Removing the active
// preset activates the first remaining one, or the default filters when
// none remain; removing any other preset leaves the view alone.
func (s *Server) HandleRemovePreset(c *gin.Context) {
	name := c.Param("name")
	wasActive := name == s.active()
	next, nextName, err := s.Presets.Remove(name)
	if err != nil {
		writePresetError(c, err)
		return
	}
	if wasActive {
		s.setActive(nextName)
		s.View.SetCriteria(next)
	}

	list, err := s.Presets.List()
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error(), "STORE_ERROR")
		return
	}
	c.JSON(http.StatusOK, PresetsResponse{Presets: list, Active: s.active()})
}

// HandleApplyPreset handles POST /presets/:name/apply
func (s *Server) HandleApplyPreset(c *gin.Context) {
	name := c.Param("name")
	criteria, err := s.Presets.Apply(name)
	if err != nil {
		writePresetError(c, err)
		return
	}
	s.setActive(name)
	s.View.SetCriteria(criteria)
	c.JSON(http.StatusOK, criteria)
}

func writePresetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, presets.ErrEmptyName):
		writeError(c, http.StatusBadRequest, "preset name is required", "MISSING_NAME")
	case errors.Is(err, presets.ErrPresetExists):
		writeError(c, http.StatusConflict, err.Error(), "PRESET_EXISTS")
	case errors.Is(err, presets.ErrPresetNotFound):
		writeError(c, http.StatusNotFound, err.Error(), "PRESET_NOT_FOUND")
	default:
		writeError(c, http.StatusInternalServerError, err.Error(), "STORE_ERROR")
	}
}
