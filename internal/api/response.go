package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/worldland/netstats/internal/statsapi"
)

var errUnknownNetwork = errors.New("no statistics API configured for the selected network")

// ErrorResponse for error cases
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeError(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message, Code: code})
}

// writeUpstreamError maps a statistics API failure: not found answers keep
// their meaning, everything else is a failed load.
func writeUpstreamError(c *gin.Context, err error, notFoundMsg, notFoundCode string) {
	_ = c.Error(err)
	if errors.Is(err, statsapi.ErrNotFound) {
		writeError(c, http.StatusNotFound, notFoundMsg, notFoundCode)
		return
	}
	if errors.Is(err, errUnknownNetwork) {
		writeError(c, http.StatusServiceUnavailable, err.Error(), "NETWORK_UNAVAILABLE")
		return
	}
	writeError(c, http.StatusBadGateway, "Failed to load", "UPSTREAM_ERROR")
}

// pageParam reads the 1-indexed ?page= query; absent means 0
func pageParam(c *gin.Context) (int, bool) {
	raw := c.Query("page")
	if raw == "" {
		return 0, true
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		writeError(c, http.StatusBadRequest, "page must be a positive integer", "INVALID_PAGE")
		return 0, false
	}
	return page, true
}
