// Package chat drives a tool-calling conversation with a chat completion endpoint
package chat

import "github.com/sealor/toolchat/pkg/tooling"

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one transcript entry. ToolCalls is only set on assistant messages,
// ToolCallID and IsError only on tool messages.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []tooling.Call
	ToolCallID string
	IsError    bool
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string, calls ...tooling.Call) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

func ToolMessage(content, toolCallID string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// ToolResultMessage records the outcome of a tool call, keeping whether it failed.
func ToolResultMessage(result tooling.Result) Message {
	message := ToolMessage(result.Payload, result.CallID)
	message.IsError = result.IsError
	return message
}
