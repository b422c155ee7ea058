package statsapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worldland/netstats/internal/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second)
}

func TestOnlineProviders(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/network/online/flatmap", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Write([]byte(`[{"node_id":"0xabc","online":true,"earnings_total":1.5,
			"runtimes":{"vm":{"properties":{"golem.inf.cpu.threads":8},"hourly_price_usd":0.02}}}]`))
	})

	list, err := c.OnlineProviders(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "0xabc", list[0].NodeID)
	threads, ok := list[0].VMProperties().Int(domain.PropCPUThreads)
	assert.True(t, ok)
	assert.Equal(t, 8, threads)
}

func TestGetJSON_BearerToken(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	})
	c.SetToken("tok")

	_, err := c.HistoricalStats(context.Background())
	require.NoError(t, err)
}

func TestAPIError_NotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such node", http.StatusNotFound)
	})

	_, err := c.Uptime(context.Background(), "0x1")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "no such node", apiErr.Body)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAPIError_ServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.OnlineProviders(context.Background())

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNode_EmptyIsNotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/provider/node/0x1", r.URL.Path)
		w.Write([]byte(`[]`))
	})

	_, err := c.Node(context.Background(), "0x1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOperator(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/provider/wallet/0xWallet", r.URL.Path)
		w.Write([]byte(`[{"node_id":"a"},{"node_id":"b"}]`))
	})

	list, err := c.Operator(context.Background(), "0xWallet")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestBenchmark(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stats/benchmark/cpu/0x1", r.URL.Path)
		w.Write([]byte(`[{"score":1234.5,"unit":"events/s"}]`))
	})

	results, err := c.Benchmark(context.Background(), "cpu", "0x1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cpu", results[0].Kind)

	_, err = c.Benchmark(context.Background(), "quantum", "0x1")
	assert.Error(t, err)
}

func TestParseError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := c.OnlineProviders(context.Background())
	assert.ErrorContains(t, err, "parse response")
}

func TestContextCancelled(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.OnlineProviders(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStartHealthcheck(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/healthcheck/start", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "0x1", body["node_id"])
		w.Write([]byte(`{"taskId":"t-1"}`))
	})

	task, err := c.StartHealthcheck(context.Background(), "0x1")
	require.NoError(t, err)
	assert.Equal(t, "t-1", task.TaskID)
	assert.Equal(t, "0x1", task.NodeID)
	assert.Equal(t, domain.HealthcheckPending, task.Status)
}

func TestWaitHealthcheck_CompletesAfterPending(t *testing.T) {
	var calls int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/healthcheck/status/t-1", r.URL.Path)
		if atomic.AddInt32(&calls, 1) < 2 {
			w.Write([]byte(`{"status":"running"}`))
			return
		}
		w.Write([]byte(`{"status":"completed","detail":"ok"}`))
	})

	task, err := c.WaitHealthcheck(context.Background(), "t-1", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, domain.HealthcheckCompleted, task.Status)
	assert.Equal(t, "t-1", task.TaskID)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestWaitHealthcheck_ClientErrorStops(t *testing.T) {
	var calls int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.WaitHealthcheck(context.Background(), "t-1", 10*time.Second)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestWaitHealthcheck_GivesUp(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"pending"}`))
	})

	task, err := c.WaitHealthcheck(context.Background(), "t-1", 700*time.Millisecond)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	require.NotNil(t, task)
	assert.Equal(t, domain.HealthcheckPending, task.Status)
}

func TestSubmitFeedback(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/feedback", r.URL.Path)
		var fb Feedback
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fb))
		assert.NotEmpty(t, fb.ID)
		assert.Equal(t, "charts are slow", fb.Message)
		w.WriteHeader(http.StatusCreated)
	})

	id, err := c.SubmitFeedback(context.Background(), Feedback{Message: "charts are slow"})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	_, err = c.SubmitFeedback(context.Background(), Feedback{})
	assert.Error(t, err)
}
