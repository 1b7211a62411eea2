package monitor

import "time"

type NodeMetrics struct {
	NodeID     string  `json:"node_id"`
	NodeType   string  `json:"node_type"`
	DurationMS float64 `json:"duration_ms"`
	Success    bool    `json:"success"`
	Error      string  `json:"error,omitempty"`
}

type CircuitMetrics struct {
	CircuitID       string                 `json:"circuit_id"`
	TotalDurationMS float64                `json:"total_duration_ms"`
	NodeCount       int                    `json:"node_count"`
	ErrorCount      int                    `json:"error_count"`
	NodeMetrics     map[string]NodeMetrics `json:"node_metrics"`
	StartTime       time.Time              `json:"start_time"`
	EndTime         time.Time              `json:"end_time"`
}
