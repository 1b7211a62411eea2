package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubenschmidt/go-circuitry/graph"
	"github.com/hubenschmidt/go-circuitry/llm"
	"github.com/hubenschmidt/go-circuitry/lore"
)

type stubCaller struct {
	response string
}

func (s stubCaller) Call(ctx context.Context, provider, model, prompt, actorRef string) (string, error) {
	return s.response, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := New(Config{
		Caller:      stubCaller{response: "stubbed reply"},
		Lore:        lore.NewMemoryBook(),
		DatabaseDSN: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func chatDefinition() graph.Definition {
	return graph.NewBuilder().
		Node("in", graph.NodeInput).Done().
		Node("prompt", graph.NodePromptBuilder).Config("template", "Say: {{msg}}").Done().
		Node("llm", graph.NodeLLMConnector).
		Config("provider", "openai").
		Config("model", "gpt-4").Done().
		Edge("in", "prompt").
		Edge("prompt", "llm").
		Build()
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv.Handler(), "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleInit(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv.Handler(), "GET", "/init", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Models)
	assert.NotEmpty(t, resp.Templates)
	assert.Empty(t, resp.Circuits)
}

func TestHandleExecuteAdHocCircuit(t *testing.T) {
	srv := newTestServer(t)
	def := chatDefinition()

	rec := doJSON(t, srv.Handler(), "POST", "/execute", ExecuteRequest{
		Circuit:  &def,
		Inputs:   map[string]any{"msg": "hello"},
		ActorRef: "user-1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "Say: hello\nstubbed reply", resp.Output)
	assert.NotEmpty(t, resp.Logs)

	// The run was persisted and can be fetched back.
	runRec := doJSON(t, srv.Handler(), "GET", "/runs/"+resp.RunID, nil)
	require.Equal(t, http.StatusOK, runRec.Code)

	var run RunInfo
	require.NoError(t, json.Unmarshal(runRec.Body.Bytes(), &run))
	assert.Equal(t, resp.RunID, run.RunID)
	assert.Equal(t, "user-1", run.ActorRef)
	assert.Equal(t, 0, run.NodeErrors)
}

func TestHandleExecuteSavedCircuit(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	saveRec := doJSON(t, handler, "POST", "/circuits/save", SaveCircuitRequest{
		ID:      "chat",
		Name:    "Chat",
		Circuit: chatDefinition(),
	})
	require.Equal(t, http.StatusOK, saveRec.Code)

	rec := doJSON(t, handler, "POST", "/execute", ExecuteRequest{
		CircuitID: "chat",
		Inputs:    map[string]any{"msg": "hi"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Say: hi\nstubbed reply", resp.Output)
}

func TestHandleExecuteMissingCircuit(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv.Handler(), "POST", "/execute", ExecuteRequest{CircuitID: "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, srv.Handler(), "POST", "/execute", ExecuteRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleValidate(t *testing.T) {
	srv := newTestServer(t)

	t.Run("valid circuit", func(t *testing.T) {
		rec := doJSON(t, srv.Handler(), "POST", "/validate", ValidateRequest{Circuit: chatDefinition()})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, true, resp["valid"])
	})

	t.Run("invalid circuit reports errors", func(t *testing.T) {
		def := graph.Definition{
			Nodes: []graph.RawNode{{ID: "llm", Type: "llm_connector"}},
		}
		rec := doJSON(t, srv.Handler(), "POST", "/validate", ValidateRequest{Circuit: def})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, false, resp["valid"])
		assert.NotEmpty(t, resp["errors"])
	})
}

func TestHandleCircuitLifecycle(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()

	saveRec := doJSON(t, handler, "POST", "/circuits/save", SaveCircuitRequest{
		ID:      "c1",
		Name:    "Chat",
		Circuit: chatDefinition(),
	})
	require.Equal(t, http.StatusOK, saveRec.Code)

	var saveResp map[string]any
	require.NoError(t, json.Unmarshal(saveRec.Body.Bytes(), &saveResp))
	assert.Equal(t, true, saveResp["success"])
	assert.Equal(t, 1.0, saveResp["version"])

	getRec := doJSON(t, handler, "GET", "/circuits/c1", nil)
	require.Equal(t, http.StatusOK, getRec.Code)

	var got CircuitInfo
	require.NoError(t, json.Unmarshal(getRec.Body.Bytes(), &got))
	assert.Equal(t, "Chat", got.Name)
	assert.Len(t, got.Definition.Nodes, 3)

	listRec := doJSON(t, handler, "GET", "/circuits", nil)
	require.Equal(t, http.StatusOK, listRec.Code)

	var list []CircuitInfo
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	delRec := doJSON(t, handler, "POST", "/circuits/delete", map[string]string{"id": "c1"})
	require.Equal(t, http.StatusOK, delRec.Code)

	missRec := doJSON(t, handler, "GET", "/circuits/c1", nil)
	assert.Equal(t, http.StatusNotFound, missRec.Code)
}

func TestHandleRunListAndMetrics(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Handler()
	def := chatDefinition()

	for range 2 {
		rec := doJSON(t, handler, "POST", "/execute", ExecuteRequest{
			Circuit: &def,
			Inputs:  map[string]any{"msg": "hi"},
		})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	listRec := doJSON(t, handler, "GET", "/runs", nil)
	require.Equal(t, http.StatusOK, listRec.Code)

	var list RunListResponse
	require.NoError(t, json.Unmarshal(listRec.Body.Bytes(), &list))
	require.Len(t, list.Runs, 2)

	delRec := doJSON(t, handler, "DELETE", "/runs/"+list.Runs[0].RunID, nil)
	require.Equal(t, http.StatusOK, delRec.Code)

	metricsRec := doJSON(t, handler, "GET", "/metrics/summary", nil)
	require.Equal(t, http.StatusOK, metricsRec.Code)

	var summary MetricsSummary
	require.NoError(t, json.Unmarshal(metricsRec.Body.Bytes(), &summary))
	assert.Equal(t, 1, summary.TotalRuns)
	assert.Equal(t, 1, summary.CompletedRuns)
}

type recordingEmbedder struct {
	queries []string
}

func (r *recordingEmbedder) Embed(ctx context.Context, model, input string) (*llm.EmbeddingResponse, error) {
	r.queries = append(r.queries, input)
	return &llm.EmbeddingResponse{Embedding: []float64{1, 0}}, nil
}

func (r *recordingEmbedder) EmbedBatch(ctx context.Context, model string, inputs []string) ([]llm.EmbeddingResponse, error) {
	out := make([]llm.EmbeddingResponse, len(inputs))
	for i := range inputs {
		out[i] = llm.EmbeddingResponse{Embedding: []float64{1, 0}}
	}
	return out, nil
}

func TestConfiguredEmbedderBacksLoreQueries(t *testing.T) {
	embedder := &recordingEmbedder{}
	srv, err := New(Config{
		Caller:      stubCaller{response: "ok"},
		Embedder:    embedder,
		DatabaseDSN: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	def := graph.NewBuilder().
		Node("in", graph.NodeInput).Done().
		Node("lore", graph.NodeLoreInjection).Config("keywords", []any{"dragon"}).Done().
		Edge("in", "lore").
		Build()

	rec := doJSON(t, srv.Handler(), "POST", "/execute", ExecuteRequest{Circuit: &def})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ExecuteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	// The lore_injection node resolved through the semantic index, so
	// its keywords were embedded rather than keyword-matched.
	assert.Equal(t, []string{"dragon"}, embedder.queries)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest("OPTIONS", "/execute", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
