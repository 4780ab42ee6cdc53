package transcript

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sealor/toolchat/pkg/chat"
	"github.com/sealor/toolchat/pkg/tooling"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func newSession(t *testing.T) *chat.Session {
	t.Helper()
	calls := []tooling.Call{
		{ID: "call_1", Name: "calculate_sum", Arguments: `{"number1":2,"number2":3.5}`},
		{ID: "call_2", Name: "get_stock_price", Arguments: `{"symbol":`},
	}
	responses := []chat.Response{{ToolCalls: calls}, {Content: "The sum is 5.5"}}

	completer := chat.CompleterFunc(func(context.Context, chat.Request) (chat.Response, error) {
		response := responses[0]
		responses = responses[1:]
		return response, nil
	})
	invoker := chat.Invoker(invokerFunc(func(_ context.Context, call tooling.Call) tooling.Result {
		if call.Name != "calculate_sum" {
			return tooling.Result{CallID: call.ID, Payload: "Error calling tool " + call.Name + ": unknown tool", IsError: true}
		}
		return tooling.Result{CallID: call.ID, Payload: `{"result": 5.5}`}
	}))

	session := chat.NewSession("be helpful")
	orchestrator := chat.NewOrchestrator(completer, tooling.NewRegistry(), invoker)
	_, err := orchestrator.SubmitUserText(context.Background(), session, "2 + 3.5?")
	require.NoError(t, err)
	return session
}

type invokerFunc func(ctx context.Context, call tooling.Call) tooling.Result

func (f invokerFunc) Invoke(ctx context.Context, call tooling.Call) tooling.Result {
	return f(ctx, call)
}

func readDocument(t *testing.T, path string) Document {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var document Document
	require.NoError(t, yaml.Unmarshal(data, &document))
	return document
}

func TestSaveWritesSession(t *testing.T) {
	session := newSession(t)
	path := filepath.Join(t.TempDir(), "transcript.yaml")

	require.NoError(t, Save(path, NewDocument("qwen3:1.7b", session)))

	document := readDocument(t, path)
	assert.Equal(t, session.ID, document.SessionID)
	assert.Equal(t, "qwen3:1.7b", document.Model)
	assert.Equal(t, 2, document.Turns)

	require.Len(t, document.Entries, len(session.Transcript()))
	roles := make([]string, 0, len(document.Entries))
	for _, entry := range document.Entries {
		roles = append(roles, entry.Role)
	}
	assert.Equal(t, []string{"system", "user", "assistant", "tool", "tool", "assistant"}, roles)

	assistant := document.Entries[2]
	require.Len(t, assistant.Calls, 2)
	assert.Equal(t, "calculate_sum", assistant.Calls[0].Tool)
	assert.Equal(t, map[string]any{"number1": 2, "number2": 3.5}, assistant.Calls[0].Arguments)
	assert.Equal(t, `{"symbol":`, assistant.Calls[1].Arguments)

	assert.Equal(t, "call_1", document.Entries[3].ToolCallID)
	assert.False(t, document.Entries[3].IsError)
	assert.Equal(t, "call_2", document.Entries[4].ToolCallID)
	assert.True(t, document.Entries[4].IsError)
	assert.Equal(t, "The sum is 5.5", document.Entries[5].Content)
}

func TestSaveMarksFailedToolResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcript.yaml")
	require.NoError(t, Save(path, NewDocument("m", newSession(t))))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "role: tool")
	assert.Contains(t, string(data), "tool_call_id: call_1")
	assert.Contains(t, string(data), "tool: calculate_sum")
	assert.Contains(t, string(data), "is_error: true")
	assert.Equal(t, 1, strings.Count(string(data), "is_error:"))
}

func TestSaveUnwritablePath(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "missing", "transcript.yaml"), NewDocument("m", newSession(t)))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

