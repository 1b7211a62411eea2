package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextCopiesInputs(t *testing.T) {
	inputs := map[string]any{"a": 1}
	ec := NewContext(inputs)

	ec.Variables["a"] = 2
	ec.Variables["b"] = 3

	assert.Equal(t, 1, inputs["a"])
	assert.NotContains(t, inputs, "b")
}

func TestContextRecordStampsCurrentNode(t *testing.T) {
	ec := NewContext(nil)

	ec.Record(EventExecuteCircuit, nil, LevelInfo)
	ec.setCurrentNode("n1")
	ec.Record(EventExecuteNodeStart, map[string]any{"node_type": "input_node"}, LevelInfo)
	ec.clearCurrentNode()
	ec.Record(EventExecuteCircuitComplete, nil, LevelInfo)

	logs := ec.Logs()
	require.Len(t, logs, 3)
	assert.Empty(t, logs[0].NodeID)
	assert.Equal(t, "n1", logs[1].NodeID)
	assert.Empty(t, logs[2].NodeID)
	assert.False(t, logs[1].Timestamp.IsZero())
}

func TestContextMergeAndOutput(t *testing.T) {
	ec := NewContext(map[string]any{"x": "old"})

	ec.Merge(map[string]any{"x": "new", "y": 1})
	assert.Equal(t, "new", ec.Variables["x"])
	assert.Equal(t, 1, ec.Variables["y"])

	ec.AppendOutput("one")
	ec.AppendOutput("two")
	assert.Equal(t, []string{"one", "two"}, ec.Output())
}

func TestContextSnapshotIsACopy(t *testing.T) {
	ec := NewContext(map[string]any{"a": 1})
	snap := ec.Snapshot()
	snap["a"] = 99

	assert.Equal(t, 1, ec.Variables["a"])
}
