// Package transcript writes session transcripts as YAML for inspection
package transcript

type Document struct {
	SessionID string  `yaml:"session_id"`
	Model     string  `yaml:"model,omitempty"`
	Turns     int     `yaml:"turns"`
	Entries   []Entry `yaml:"entries"`
}

// Entry is one transcript message. Calls is only set for assistant entries,
// ToolCallID and IsError only for tool results.
type Entry struct {
	Role       string       `yaml:"role"`
	Content    string       `yaml:"content,omitempty"`
	Calls      []CallRecord `yaml:"tool_calls,omitempty"`
	ToolCallID string       `yaml:"tool_call_id,omitempty"`
	IsError    bool         `yaml:"is_error,omitempty"`
}

// CallRecord is a requested tool call. Arguments holds the decoded JSON object
// when the model sent valid JSON, otherwise the raw text.
type CallRecord struct {
	ID        string `yaml:"id"`
	Tool      string `yaml:"tool"`
	Arguments any    `yaml:"arguments,omitempty"`
}
