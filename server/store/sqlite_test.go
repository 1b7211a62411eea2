package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/go-circuitry/engine"
	"github.com/hubenschmidt/go-circuitry/graph"
)

func newTestStores(t *testing.T) (CircuitStore, RunStore) {
	t.Helper()
	circuits, runs, err := NewSQLiteStores(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { circuits.Close() })
	return circuits, runs
}

func testDefinition() graph.Definition {
	return graph.NewBuilder().
		Node("in", graph.NodeInput).Done().
		Node("p", graph.NodePromptBuilder).Config("template", "Hi {{name}}").Done().
		Edge("in", "p").
		Build()
}

func TestCircuitStoreSaveBumpsVersion(t *testing.T) {
	circuits, _ := newTestStores(t)
	ctx := context.Background()

	saved, err := circuits.Save(ctx, CircuitInfo{
		ID:         "c1",
		Name:       "Greeter",
		Definition: testDefinition(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)

	saved, err = circuits.Save(ctx, CircuitInfo{
		ID:          "c1",
		Name:        "Greeter v2",
		Description: "updated",
		Definition:  testDefinition(),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)
	assert.Equal(t, "Greeter v2", saved.Name)
	assert.Equal(t, "updated", saved.Description)
}

func TestCircuitStoreRoundTrip(t *testing.T) {
	circuits, _ := newTestStores(t)
	ctx := context.Background()

	def := testDefinition()
	_, err := circuits.Save(ctx, CircuitInfo{ID: "c1", Name: "Greeter", Definition: def})
	require.NoError(t, err)

	got, err := circuits.Get(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got.Definition.Nodes, 2)
	assert.Equal(t, "Hi {{name}}", got.Definition.Nodes[1].Data["template"])
	require.Len(t, got.Definition.Edges, 1)
	assert.Equal(t, "in", got.Definition.Edges[0].Source)
}

func TestCircuitStoreGetMissing(t *testing.T) {
	circuits, _ := newTestStores(t)

	_, err := circuits.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCircuitStoreListAndDelete(t *testing.T) {
	circuits, _ := newTestStores(t)
	ctx := context.Background()

	_, err := circuits.Save(ctx, CircuitInfo{ID: "b", Name: "Beta", Definition: testDefinition()})
	require.NoError(t, err)
	_, err = circuits.Save(ctx, CircuitInfo{ID: "a", Name: "Alpha", Definition: testDefinition()})
	require.NoError(t, err)

	list, err := circuits.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alpha", list[0].Name)
	assert.Equal(t, "Beta", list[1].Name)

	require.NoError(t, circuits.Delete(ctx, "a"))
	list, err = circuits.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func testRun(runID string, success bool, ms float64, nodeErrors int) RunInfo {
	return RunInfo{
		RunID:       runID,
		CircuitID:   "c1",
		CircuitName: "Greeter",
		ActorRef:    "user-1",
		Timestamp:   1700000000000,
		Inputs:      map[string]any{"name": "Ada"},
		Success:     success,
		Output:      "Hi Ada",
		ExecutionMS: ms,
		NodeErrors:  nodeErrors,
		Logs: []engine.LogEntry{
			{Level: engine.LevelInfo, Event: engine.EventExecuteCircuit},
		},
	}
}

func TestRunStoreRoundTrip(t *testing.T) {
	_, runs := newTestStores(t)
	ctx := context.Background()

	require.NoError(t, runs.Add(ctx, testRun("r1", true, 12.5, 0)))

	got, err := runs.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "c1", got.CircuitID)
	assert.Equal(t, "user-1", got.ActorRef)
	assert.Equal(t, "Ada", got.Inputs["name"])
	assert.Equal(t, 12.5, got.ExecutionMS)
	require.Len(t, got.Logs, 1)
	assert.Equal(t, engine.EventExecuteCircuit, got.Logs[0].Event)

	_, err = runs.Get(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRunStoreListNewestFirst(t *testing.T) {
	_, runs := newTestStores(t)
	ctx := context.Background()

	older := testRun("r1", true, 5, 0)
	older.Timestamp = 1000
	newer := testRun("r2", true, 5, 0)
	newer.Timestamp = 2000

	require.NoError(t, runs.Add(ctx, older))
	require.NoError(t, runs.Add(ctx, newer))

	list, err := runs.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r2", list[0].RunID)
	assert.Equal(t, "r1", list[1].RunID)
}

func TestRunStoreDelete(t *testing.T) {
	_, runs := newTestStores(t)
	ctx := context.Background()

	require.NoError(t, runs.Add(ctx, testRun("r1", true, 5, 0)))
	require.NoError(t, runs.Delete(ctx, "r1"))

	_, err := runs.Get(ctx, "r1")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRunStoreSummary(t *testing.T) {
	_, runs := newTestStores(t)
	ctx := context.Background()

	require.NoError(t, runs.Add(ctx, testRun("r1", true, 10, 0)))
	require.NoError(t, runs.Add(ctx, testRun("r2", true, 30, 1)))
	require.NoError(t, runs.Add(ctx, testRun("r3", false, 20, 2)))

	summary, err := runs.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalRuns)
	assert.Equal(t, 2, summary.CompletedRuns)
	assert.Equal(t, 1, summary.FailedRuns)
	assert.Equal(t, 3, summary.TotalNodeErrs)
	assert.Equal(t, 20.0, summary.AvgExecutionMS)
}

func TestRunStoreSummaryEmpty(t *testing.T) {
	_, runs := newTestStores(t)

	summary, err := runs.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalRuns)
	assert.Equal(t, 0.0, summary.AvgExecutionMS)
}
