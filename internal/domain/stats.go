package domain

// NetworkSummary aggregates a provider list for the overview page
type NetworkSummary struct {
	Total         int            `json:"total"`
	Online        int            `json:"online"`
	Offline       int            `json:"offline"`
	Computing     int            `json:"computing"`
	CPUThreads    int            `json:"cpu_threads"`
	MemoryGiB     float64        `json:"memory_gib"`
	StorageGiB    float64        `json:"storage_gib"`
	GPUs          int            `json:"gpus"`
	AverageUptime float64        `json:"average_uptime"`
	Versions      map[string]int `json:"versions"`
}

// HistoricalStat is one bucket of the network history series
type HistoricalStat struct {
	Date      int64   `json:"date"`
	Online    int     `json:"online"`
	Cores     int     `json:"cores"`
	MemoryGiB float64 `json:"memory"`
	DiskGiB   float64 `json:"disk"`
	GPUs      int     `json:"gpus"`
}

// DowntimePeriod is a contiguous offline interval reported for a node
type DowntimePeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// UptimeReport describes a node's availability history
type UptimeReport struct {
	FirstSeen       string           `json:"first_seen"`
	UptimePercent   float64          `json:"uptime_percentage"`
	CurrentStreak   string           `json:"current_streak"`
	DowntimePeriods []DowntimePeriod `json:"downtime_periods"`
}

// BenchmarkResult is one benchmark sample of a node
type BenchmarkResult struct {
	Kind      string  `json:"kind"`
	Score     float64 `json:"score"`
	Unit      string  `json:"unit"`
	Timestamp string  `json:"timestamp"`
}

// Healthcheck task states
const (
	HealthcheckPending   = "pending"
	HealthcheckRunning   = "running"
	HealthcheckCompleted = "completed"
	HealthcheckFailed    = "failed"
)

// HealthcheckTask tracks a remote health check of a provider
type HealthcheckTask struct {
	TaskID string `json:"taskId"`
	NodeID string `json:"node_id"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Done reports whether the task reached a terminal state
func (t *HealthcheckTask) Done() bool {
	return t.Status == HealthcheckCompleted || t.Status == HealthcheckFailed
}
