// Package circuits provides ready-made circuit templates that
// exercise the standard node types. They double as starting points in
// the editor and as executable fixtures.
package circuits

import "github.com/hubenschmidt/go-circuitry/graph"

// Template is a named circuit definition offered to clients at init.
type Template struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Definition  graph.Definition `json:"definition"`
}

// Templates returns the built-in circuit templates.
func Templates() []Template {
	return []Template{
		SimpleChat(),
		LoreChat(),
		MoodRouter(),
	}
}

// SimpleChat is the minimal useful circuit: take a message, build a
// prompt, call a model, emit the response.
func SimpleChat() Template {
	def := graph.NewBuilder().
		Node("in", graph.NodeInput).Label("Input").Done().
		Node("prompt", graph.NodePromptBuilder).
		Label("Prompt").
		Config("template", "{{message}}").Done().
		Node("llm", graph.NodeLLMConnector).
		Label("Model").
		Config("provider", "openai").
		Config("model", "gpt-4").Done().
		Node("out", graph.NodeOutput).Label("Output").Done().
		Edge("in", "prompt").
		Edge("prompt", "llm").
		Edge("llm", "out").
		Build()

	return Template{
		ID:          "simple-chat",
		Name:        "Simple Chat",
		Description: "Prompt builder feeding a single model call",
		Definition:  def,
	}
}

// LoreChat injects lorebook entries matched against the message before
// building the prompt.
func LoreChat() Template {
	def := graph.NewBuilder().
		Node("in", graph.NodeInput).Label("Input").Done().
		Node("sys", graph.NodeSystemPrompt).
		Label("System").
		Config("text", "You are a storyteller. Stay consistent with the established lore.").Done().
		Node("lore", graph.NodeLoreInjection).
		Label("Lore").
		Config("keywords", []string{"world", "characters"}).
		Config("limit", 3).Done().
		Node("prompt", graph.NodePromptBuilder).
		Label("Prompt").
		Config("template", "{{system_prompt}}\n\nLore:\n{{lore_injection}}\n\nUser: {{message}}").Done().
		Node("llm", graph.NodeLLMConnector).
		Label("Model").
		Config("provider", "anthropic").
		Config("model", "claude-sonnet-4-5-20250929").Done().
		Node("out", graph.NodeOutput).Label("Output").Done().
		Edge("in", "sys").
		Edge("sys", "lore").
		Edge("lore", "prompt").
		Edge("prompt", "llm").
		Edge("llm", "out").
		Build()

	return Template{
		ID:          "lore-chat",
		Name:        "Lore Chat",
		Description: "Keyword-matched lore entries woven into the prompt",
		Definition:  def,
	}
}

// MoodRouter branches on a mood variable: one prompt for a cheerful
// reply, another for a consoling one.
func MoodRouter() Template {
	def := graph.NewBuilder().
		Node("in", graph.NodeInput).Label("Input").Done().
		Node("mood", graph.NodeConditional).
		Label("Mood?").
		Config("condition", "mood == happy").
		Config("true_path", "cheer").
		Config("false_path", "console").Done().
		Node("cheer", graph.NodePromptBuilder).
		Label("Cheerful").
		Config("template", "Reply enthusiastically to: {{message}}").Done().
		Node("console", graph.NodePromptBuilder).
		Label("Consoling").
		Config("template", "Reply gently and supportively to: {{message}}").Done().
		Node("llm", graph.NodeLLMConnector).
		Label("Model").
		Config("provider", "openai").
		Config("model", "gpt-4").Done().
		Node("out", graph.NodeOutput).Label("Output").Done().
		Edge("in", "mood").
		BranchEdge("mood", "cheer", "true").
		BranchEdge("mood", "console", "false").
		Edge("cheer", "llm").
		Edge("console", "llm").
		Edge("llm", "out").
		Build()

	return Template{
		ID:          "mood-router",
		Name:        "Mood Router",
		Description: "Conditional branch selecting one of two prompt styles",
		Definition:  def,
	}
}
