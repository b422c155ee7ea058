package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/worldland/netstats/internal/poller"
	"github.com/worldland/netstats/internal/statsapi"
)

// FeedbackRequest for POST /feedback
type FeedbackRequest struct {
	Message string `json:"message"`
	Contact string `json:"contact"`
	Page    string `json:"page"`
	// Dismiss hides the feedback dialog from now on
	Dismiss bool `json:"dismiss"`
}

// FeedbackResponse carries the id assigned to the report
type FeedbackResponse struct {
	ID string `json:"id"`
}

// HealthcheckRequest for POST /healthcheck
type HealthcheckRequest struct {
	NodeID string `json:"node_id"`
	Wait   bool   `json:"wait"`
}

// HealthResponse for GET /health
type HealthResponse struct {
	Status  string                      `json:"status"`
	Network string                      `json:"network"`
	Jobs    map[string]poller.JobStatus `json:"jobs"`
}

// HandleFeedback handles POST /feedback
func (s *Server) HandleFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(c, http.StatusBadRequest, "message is required", "MISSING_MESSAGE")
		return
	}

	client, _, err := s.client()
	if err != nil {
		writeUpstreamError(c, err, "", "")
		return
	}
	id, err := client.SubmitFeedback(c.Request.Context(), statsapi.Feedback{
		Message: req.Message,
		Contact: req.Contact,
		Page:    req.Page,
	})
	if err != nil {
		writeUpstreamError(c, err, "feedback endpoint not found", "UPSTREAM_ERROR")
		return
	}

	if req.Dismiss {
		if err := s.Prefs.DismissFeedback(); err != nil {
			logger.Warnw("failed to persist feedback dismissal", "error", err)
		}
	}
	c.JSON(http.StatusCreated, FeedbackResponse{ID: id})
}

// HandleStartHealthcheck handles POST /healthcheck. With wait=true the
// request blocks until the task finishes or the wait limit passes; the last
// known state is returned with 202 in the latter case.
func (s *Server) HandleStartHealthcheck(c *gin.Context) {
	var req HealthcheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err.Error(), "INVALID_REQUEST")
		return
	}
	if strings.TrimSpace(req.NodeID) == "" {
		writeError(c, http.StatusBadRequest, "node_id is required", "MISSING_NODE_ID")
		return
	}

	client, _, err := s.client()
	if err != nil {
		writeUpstreamError(c, err, "", "")
		return
	}
	ctx := c.Request.Context()
	task, err := client.StartHealthcheck(ctx, req.NodeID)
	if err != nil {
		writeUpstreamError(c, err, "node not found", "NODE_NOT_FOUND")
		return
	}
	if !req.Wait || task.Done() {
		c.JSON(http.StatusAccepted, task)
		return
	}

	final, err := client.WaitHealthcheck(ctx, task.TaskID, s.HealthcheckWait)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, final)
	case errors.Is(err, context.DeadlineExceeded) && final != nil:
		c.JSON(http.StatusAccepted, final)
	default:
		writeUpstreamError(c, err, "healthcheck task not found", "TASK_NOT_FOUND")
	}
}

// HandleHealthcheckStatus handles GET /healthcheck/:taskId
func (s *Server) HandleHealthcheckStatus(c *gin.Context) {
	client, _, err := s.client()
	if err != nil {
		writeUpstreamError(c, err, "", "")
		return
	}
	task, err := client.HealthcheckStatus(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		writeUpstreamError(c, err, "healthcheck task not found", "TASK_NOT_FOUND")
		return
	}
	status := http.StatusOK
	if !task.Done() {
		status = http.StatusAccepted
	}
	c.JSON(status, task)
}

// HandleHealth handles GET /health
func (s *Server) HandleHealth(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Jobs: map[string]poller.JobStatus{}}
	if s.Health != nil {
		resp.Jobs = s.Health.Snapshot()
		if !s.Health.Healthy() {
			resp.Status = "degraded"
		}
	}
	if network, err := s.Prefs.SelectedNetwork(); err == nil {
		resp.Network = network
	}
	c.JSON(http.StatusOK, resp)
}
