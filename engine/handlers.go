package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hubenschmidt/go-circuitry/core"
	"github.com/hubenschmidt/go-circuitry/graph"
	"github.com/hubenschmidt/go-circuitry/lore"
)

// ErrNoPrompt is raised by the llm_connector handler when no upstream
// node produced a prompt. A prompt is a hard prerequisite for an LLM
// call, so this is the one handler that fails on missing data.
var ErrNoPrompt = errors.New("No prompt available for llm_connector node")

func (e *Engine) defaultHandlers() map[string]Handler {
	return map[string]Handler{
		string(graph.NodeInput):             e.executeInput,
		string(graph.NodeVariableProcessor): e.executeVariableProcessor,
		string(graph.NodeConditional):       e.executeConditional,
		string(graph.NodePromptBuilder):     e.executePromptBuilder,
		string(graph.NodeLLMConnector):      e.executeLLMConnector,
		string(graph.NodeOutput):            e.executeOutput,
		string(graph.NodeSystemPrompt):      e.executeSystemPrompt,
		string(graph.NodeLoreInjection):     e.executeLoreInjection,
	}
}

// executeInput is a pass-through marker for entry points: it forwards
// the current bindings untouched. Unrecognized node types get the same
// treatment via the dispatch fallback.
func (e *Engine) executeInput(ctx context.Context, node *graph.Node, ec *Context, actorRef string) (HandlerResult, error) {
	return HandlerResult{Variables: ec.Snapshot()}, nil
}

func (e *Engine) executeVariableProcessor(ctx context.Context, node *graph.Node, ec *Context, actorRef string) (HandlerResult, error) {
	name := node.ConfigString("variable_name")
	value := node.Config["value"]

	switch node.ConfigString("operation") {
	case "append":
		combined := core.Str(ec.Variables[name]) + core.Str(value)
		return HandlerResult{Variables: map[string]any{name: combined}}, nil
	case "get":
		// A read of an absent variable must not introduce a binding.
		if v, ok := ec.Variables[name]; ok {
			return HandlerResult{Variables: map[string]any{name: v}}, nil
		}
		return HandlerResult{}, nil
	default: // set
		return HandlerResult{Variables: map[string]any{name: value}}, nil
	}
}

// executeConditional evaluates the node's condition and publishes the
// verdict as condition_result, which the branch-following rule reads
// when deciding the node's outgoing edges.
func (e *Engine) executeConditional(ctx context.Context, node *graph.Node, ec *Context, actorRef string) (HandlerResult, error) {
	result := EvaluateCondition(node.ConfigString("condition"), ec.Variables)
	return HandlerResult{Variables: map[string]any{"condition_result": result}}, nil
}

// executePromptBuilder substitutes {{name}} placeholders in the
// template with the current bindings. This is textual replacement, not
// template-language evaluation.
func (e *Engine) executePromptBuilder(ctx context.Context, node *graph.Node, ec *Context, actorRef string) (HandlerResult, error) {
	prompt := node.ConfigString("template")
	for k, v := range ec.Variables {
		prompt = strings.ReplaceAll(prompt, "{{"+k+"}}", core.Str(v))
	}
	return HandlerResult{
		Output:    prompt,
		Variables: map[string]any{"prompt": prompt},
	}, nil
}

func (e *Engine) executeLLMConnector(ctx context.Context, node *graph.Node, ec *Context, actorRef string) (HandlerResult, error) {
	prompt := core.Str(ec.Variables["prompt"])
	if prompt == "" {
		return HandlerResult{}, ErrNoPrompt
	}
	if e.caller == nil {
		return HandlerResult{}, core.NewCircuitError("engine.llm_connector", node.ID, core.ErrNoProvider)
	}

	response, err := e.caller.Call(ctx, node.ConfigString("provider"), node.ConfigString("model"), prompt, actorRef)
	if err != nil {
		return HandlerResult{}, fmt.Errorf("LLM call failed: %w", err)
	}

	return HandlerResult{
		Output:    response,
		Variables: map[string]any{"llm_response": response},
	}, nil
}

// executeOutput returns the node's template verbatim, with no
// substitution. Output nodes are terminal markers.
func (e *Engine) executeOutput(ctx context.Context, node *graph.Node, ec *Context, actorRef string) (HandlerResult, error) {
	return HandlerResult{Output: node.ConfigString("template")}, nil
}

func (e *Engine) executeSystemPrompt(ctx context.Context, node *graph.Node, ec *Context, actorRef string) (HandlerResult, error) {
	text := node.ConfigString("text")
	return HandlerResult{
		Output:    text,
		Variables: map[string]any{"system_prompt": text},
	}, nil
}

func (e *Engine) executeLoreInjection(ctx context.Context, node *graph.Node, ec *Context, actorRef string) (HandlerResult, error) {
	if e.lore == nil {
		return HandlerResult{}, core.NewCircuitError("engine.lore_injection", node.ID, errors.New("no lore source configured"))
	}

	keywords := core.StrSlice(node.Config["keywords"])
	limit := node.ConfigInt("limit", 5)

	entries, err := e.lore.Query(ctx, keywords, limit)
	if err != nil {
		return HandlerResult{}, fmt.Errorf("lore query failed: %w", err)
	}

	injection := lore.Format(entries)
	return HandlerResult{
		Output:    injection,
		Variables: map[string]any{"lore_injection": injection},
	}, nil
}
