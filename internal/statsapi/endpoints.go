package statsapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/worldland/netstats/internal/domain"
)

// Upstream paths
const (
	PathHistoricalStats   = "v1/network/historical/stats/30m"
	PathOnlineProviders   = "v2/network/online/flatmap"
	PathNode              = "v2/provider/node/%s"
	PathOperator          = "v1/provider/wallet/%s"
	PathUptime            = "v2/provider/uptime/%s"
	PathBenchmark         = "stats/benchmark/%s/%s"
	PathHealthcheckStart  = "v2/healthcheck/start"
	PathHealthcheckStatus = "v2/healthcheck/status/%s"
	PathFeedback          = "v1/feedback"
)

// BenchmarkKinds lists the benchmark series the API publishes per node
var BenchmarkKinds = []string{"cpu", "memory", "disk", "network", "gpu"}

// ValidBenchmarkKind reports whether kind is a published benchmark series
func ValidBenchmarkKind(kind string) bool {
	for _, k := range BenchmarkKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// errPending keeps the healthcheck wait polling
var errPending = errors.New("healthcheck pending")

// Feedback is a free-form user report sent to the statistics team
type Feedback struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Contact string `json:"contact,omitempty"`
	Page    string `json:"page,omitempty"`
}

// --- Network API ---

// OnlineProviders returns the flat provider list of the network
func (c *Client) OnlineProviders(ctx context.Context) ([]domain.ProviderRecord, error) {
	var list []domain.ProviderRecord
	if err := c.GetJSON(ctx, PathOnlineProviders, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// HistoricalStats returns the 30-minute network history series
func (c *Client) HistoricalStats(ctx context.Context) ([]domain.HistoricalStat, error) {
	var stats []domain.HistoricalStat
	if err := c.GetJSON(ctx, PathHistoricalStats, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// --- Provider API ---

// Node returns the records of one node. An empty answer is ErrNotFound.
func (c *Client) Node(ctx context.Context, nodeID string) ([]domain.ProviderRecord, error) {
	var list []domain.ProviderRecord
	if err := c.GetJSON(ctx, fmt.Sprintf(PathNode, escape(nodeID)), &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("node %s: %w", nodeID, ErrNotFound)
	}
	return list, nil
}

// Operator returns every node paid to a wallet. An empty answer is ErrNotFound.
func (c *Client) Operator(ctx context.Context, wallet string) ([]domain.ProviderRecord, error) {
	var list []domain.ProviderRecord
	if err := c.GetJSON(ctx, fmt.Sprintf(PathOperator, escape(wallet)), &list); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("operator %s: %w", wallet, ErrNotFound)
	}
	return list, nil
}

// Uptime returns the availability history of a node
func (c *Client) Uptime(ctx context.Context, nodeID string) (*domain.UptimeReport, error) {
	var report domain.UptimeReport
	if err := c.GetJSON(ctx, fmt.Sprintf(PathUptime, escape(nodeID)), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Benchmark returns a node's samples for one benchmark kind
func (c *Client) Benchmark(ctx context.Context, kind, nodeID string) ([]domain.BenchmarkResult, error) {
	if !ValidBenchmarkKind(kind) {
		return nil, fmt.Errorf("unknown benchmark kind %q", kind)
	}
	var results []domain.BenchmarkResult
	if err := c.GetJSON(ctx, fmt.Sprintf(PathBenchmark, escape(kind), escape(nodeID)), &results); err != nil {
		return nil, err
	}
	for i := range results {
		if results[i].Kind == "" {
			results[i].Kind = kind
		}
	}
	return results, nil
}

// --- Healthcheck API ---

// StartHealthcheck asks the API to probe a node
func (c *Client) StartHealthcheck(ctx context.Context, nodeID string) (*domain.HealthcheckTask, error) {
	payload := map[string]string{
		"node_id": nodeID,
	}
	var task domain.HealthcheckTask
	if err := c.PostJSON(ctx, PathHealthcheckStart, payload, &task); err != nil {
		return nil, err
	}
	if task.NodeID == "" {
		task.NodeID = nodeID
	}
	if task.Status == "" {
		task.Status = domain.HealthcheckPending
	}
	return &task, nil
}

// HealthcheckStatus returns the current state of a healthcheck task
func (c *Client) HealthcheckStatus(ctx context.Context, taskID string) (*domain.HealthcheckTask, error) {
	var task domain.HealthcheckTask
	if err := c.GetJSON(ctx, fmt.Sprintf(PathHealthcheckStatus, escape(taskID)), &task); err != nil {
		return nil, err
	}
	if task.TaskID == "" {
		task.TaskID = taskID
	}
	return &task, nil
}

// WaitHealthcheck polls the task with exponential backoff until it reaches a
// terminal state, maxWait elapses or ctx is done. 4xx answers stop the wait.
func (c *Client) WaitHealthcheck(ctx context.Context, taskID string, maxWait time.Duration) (*domain.HealthcheckTask, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = maxWait

	var last *domain.HealthcheckTask
	op := func() error {
		task, err := c.HealthcheckStatus(ctx, taskID)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Status < 500 {
				return backoff.Permanent(err)
			}
			return err
		}
		last = task
		if !task.Done() {
			return errPending
		}
		return nil
	}
	notify := func(err error, next time.Duration) {
		logger.Debugw("healthcheck not finished", "task", taskID, "reason", err, "retry_in", next)
	}

	err := backoff.RetryNotify(op, backoff.WithContext(b, ctx), notify)
	if err != nil {
		if errors.Is(err, errPending) && last != nil {
			return last, fmt.Errorf("healthcheck %s still %s: %w", taskID, last.Status, context.DeadlineExceeded)
		}
		return last, err
	}
	return last, nil
}

// --- Feedback API ---

// SubmitFeedback posts a feedback message and returns the id assigned to it
func (c *Client) SubmitFeedback(ctx context.Context, fb Feedback) (string, error) {
	if fb.Message == "" {
		return "", errors.New("feedback message is empty")
	}
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if err := c.PostJSON(ctx, PathFeedback, fb, nil); err != nil {
		return "", err
	}
	return fb.ID, nil
}
