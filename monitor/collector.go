package monitor

import (
	"sync"
	"time"
)

type Collector interface {
	Record(metrics NodeMetrics)
	Flush() CircuitMetrics
}

type InMemoryCollector struct {
	mu        sync.RWMutex
	circuitID string
	metrics   map[string]NodeMetrics
	startTime time.Time
}

func NewInMemoryCollector(circuitID string) *InMemoryCollector {
	return &InMemoryCollector{
		circuitID: circuitID,
		metrics:   make(map[string]NodeMetrics),
		startTime: time.Now(),
	}
}

func (c *InMemoryCollector) Record(metrics NodeMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics[metrics.NodeID] = metrics
}

func (c *InMemoryCollector) Flush() CircuitMetrics {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var totalDuration float64
	var errorCount int

	nodeMetrics := make(map[string]NodeMetrics, len(c.metrics))
	for k, v := range c.metrics {
		nodeMetrics[k] = v
		totalDuration += v.DurationMS
		if !v.Success {
			errorCount++
		}
	}

	return CircuitMetrics{
		CircuitID:       c.circuitID,
		TotalDurationMS: totalDuration,
		NodeCount:       len(c.metrics),
		ErrorCount:      errorCount,
		NodeMetrics:     nodeMetrics,
		StartTime:       c.startTime,
		EndTime:         time.Now(),
	}
}

func (c *InMemoryCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = make(map[string]NodeMetrics)
	c.startTime = time.Now()
}

type NoOpCollector struct{}

func NewNoOpCollector() *NoOpCollector {
	return &NoOpCollector{}
}

func (c *NoOpCollector) Record(metrics NodeMetrics) {}

func (c *NoOpCollector) Flush() CircuitMetrics {
	return CircuitMetrics{}
}
