package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryCollector(t *testing.T) {
	c := NewInMemoryCollector("c1")

	c.Record(NodeMetrics{NodeID: "a", NodeType: "input_node", DurationMS: 2, Success: true})
	c.Record(NodeMetrics{NodeID: "b", NodeType: "llm_connector", DurationMS: 8, Success: false, Error: "down"})

	m := c.Flush()
	assert.Equal(t, "c1", m.CircuitID)
	assert.Equal(t, 2, m.NodeCount)
	assert.Equal(t, 1, m.ErrorCount)
	assert.Equal(t, 10.0, m.TotalDurationMS)
	assert.Equal(t, "down", m.NodeMetrics["b"].Error)
}

func TestInMemoryCollectorKeepsLatestPerNode(t *testing.T) {
	c := NewInMemoryCollector("c1")

	c.Record(NodeMetrics{NodeID: "a", DurationMS: 1, Success: false})
	c.Record(NodeMetrics{NodeID: "a", DurationMS: 3, Success: true})

	m := c.Flush()
	assert.Equal(t, 1, m.NodeCount)
	assert.Equal(t, 0, m.ErrorCount)
	assert.Equal(t, 3.0, m.NodeMetrics["a"].DurationMS)
}

func TestInMemoryCollectorReset(t *testing.T) {
	c := NewInMemoryCollector("c1")
	c.Record(NodeMetrics{NodeID: "a"})
	c.Reset()
	assert.Equal(t, 0, c.Flush().NodeCount)
}

func TestNoOpCollector(t *testing.T) {
	c := NewNoOpCollector()
	c.Record(NodeMetrics{NodeID: "a"})
	assert.Equal(t, CircuitMetrics{}, c.Flush())
}
