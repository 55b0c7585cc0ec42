package api

// Priority of a remote task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// TaskStatus of a remote task. Only pending is interpreted by the client.
type TaskStatus string

const StatusPending TaskStatus = "pending"

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	Division    string     `json:"division,omitempty"`
}

type TaskList struct {
	Tasks []Task `json:"tasks"`
}

// Stats is the aggregate shape shared by /tasks/stats, /agents/stats and /memory/stats.
type Stats struct {
	Total   int `json:"total"`
	Pending int `json:"pending"`
}

// ActivityEntry is one memory-log record.
type ActivityEntry struct {
	Action    string `json:"action"`
	Entity    string `json:"entity"`
	Details   string `json:"details,omitempty"`
	Timestamp string `json:"timestamp"`
	Hash      string `json:"hash,omitempty"`
}

type ActivityList struct {
	Entries []ActivityEntry `json:"entries"`
}

type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HealthStatusHealthy is the only status value treated as connected.
const HealthStatusHealthy = "healthy"

func (h Health) Healthy() bool { return h.Status == HealthStatusHealthy }

type CreateTaskParams struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	Division    string   `json:"division,omitempty"`
}

type CreateLogParams struct {
	Action  string `json:"action"`
	Entity  string `json:"entity"`
	Details string `json:"details,omitempty"`
}
