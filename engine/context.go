package engine

import "time"

// Context is the mutable state of one circuit run: the variable
// bindings threaded between nodes, the accumulated text output, and the
// structured event log. A run owns its Context exclusively and executes
// on a single goroutine, so no locking is needed.
type Context struct {
	Variables map[string]any

	output      []string
	logs        []LogEntry
	currentNode string
}

// NewContext builds a fresh run context. Inputs are shallow-copied so
// node writes never leak back into the caller's map.
func NewContext(inputs map[string]any) *Context {
	vars := make(map[string]any, len(inputs))
	for k, v := range inputs {
		vars[k] = v
	}
	return &Context{Variables: vars}
}

// Record appends a log entry stamped with the current wall-clock time
// and the currently-executing node id, if any.
func (c *Context) Record(event Event, details map[string]any, level Level) {
	c.logs = append(c.logs, LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Event:     event,
		NodeID:    c.currentNode,
		Details:   details,
	})
}

// AppendOutput adds one line to the run's text output.
func (c *Context) AppendOutput(s string) {
	c.output = append(c.output, s)
}

// Output returns the accumulated output lines in emission order.
func (c *Context) Output() []string {
	return c.output
}

// Logs returns the log entries recorded so far.
func (c *Context) Logs() []LogEntry {
	return c.logs
}

// Merge writes a variable delta into the bindings, last writer wins.
func (c *Context) Merge(delta map[string]any) {
	for k, v := range delta {
		c.Variables[k] = v
	}
}

// Snapshot returns a copy of the current bindings.
func (c *Context) Snapshot() map[string]any {
	out := make(map[string]any, len(c.Variables))
	for k, v := range c.Variables {
		out[k] = v
	}
	return out
}

func (c *Context) setCurrentNode(id string) { c.currentNode = id }
func (c *Context) clearCurrentNode()        { c.currentNode = "" }
