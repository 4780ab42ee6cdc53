package transcript

import (
	"encoding/json"

	"github.com/sealor/toolchat/pkg/chat"
	"github.com/sealor/toolchat/pkg/tooling"
)

func NewDocument(model string, session *chat.Session) *Document {
	return &Document{
		SessionID: session.ID,
		Model:     model,
		Turns:     session.Turns(),
		Entries:   NewEntries(session.Transcript()),
	}
}

func NewEntries(messages []chat.Message) []Entry {
	entries := make([]Entry, 0, len(messages))
	for _, message := range messages {
		entries = append(entries, Entry{
			Role:       string(message.Role),
			Content:    message.Content,
			Calls:      NewCallRecords(message.ToolCalls),
			ToolCallID: message.ToolCallID,
			IsError:    message.IsError,
		})
	}
	return entries
}

func NewCallRecords(calls []tooling.Call) []CallRecord {
	var records []CallRecord
	for _, call := range calls {
		records = append(records, CallRecord{ID: call.ID, Tool: call.Name, Arguments: decodeArguments(call.Arguments)})
	}
	return records
}

func decodeArguments(raw string) any {
	if raw == "" {
		return nil
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw
	}
	return decoded
}
