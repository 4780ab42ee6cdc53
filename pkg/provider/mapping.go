package provider

import (
	"github.com/openai/openai-go/v3"
	"github.com/sealor/toolchat/pkg/chat"
	"github.com/sealor/toolchat/pkg/tooling"
)

func NewMessageParams(messages []chat.Message) []openai.ChatCompletionMessageParamUnion {
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, message := range messages {
		params = append(params, NewMessageParam(message))
	}
	return params
}

func NewMessageParam(message chat.Message) openai.ChatCompletionMessageParamUnion {
	switch message.Role {
	case chat.RoleSystem:
		return openai.SystemMessage(message.Content)
	case chat.RoleAssistant:
		if len(message.ToolCalls) == 0 {
			return openai.AssistantMessage(message.Content)
		}
		assistant := openai.ChatCompletionAssistantMessageParam{ToolCalls: NewToolCallParams(message.ToolCalls)}
		if message.Content != "" {
			assistant.Content.OfString = openai.String(message.Content)
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
	case chat.RoleTool:
		return openai.ToolMessage(message.Content, message.ToolCallID)
	default:
		return openai.UserMessage(message.Content)
	}
}

func NewToolCallParams(calls []tooling.Call) []openai.ChatCompletionMessageToolCallUnionParam {
	params := make([]openai.ChatCompletionMessageToolCallUnionParam, 0, len(calls))
	for _, call := range calls {
		params = append(params, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID:       call.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{Name: call.Name, Arguments: call.Arguments},
			},
		})
	}
	return params
}

// NewToolParams passes the tool schemas through as function parameters.
func NewToolParams(descriptors []tooling.Descriptor) []openai.ChatCompletionToolUnionParam {
	params := make([]openai.ChatCompletionToolUnionParam, 0, len(descriptors))
	for _, descriptor := range descriptors {
		params = append(params, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: openai.FunctionDefinitionParam{
					Name:        descriptor.Name,
					Description: openai.String(descriptor.Description),
					Parameters:  openai.FunctionParameters(descriptor.ParametersMap()),
				},
			},
		})
	}
	return params
}

func NewResponse(message openai.ChatCompletionMessage) chat.Response {
	response := chat.Response{Content: message.Content}
	for _, toolCall := range message.ToolCalls {
		response.ToolCalls = append(response.ToolCalls, tooling.Call{
			ID:        toolCall.ID,
			Name:      toolCall.Function.Name,
			Arguments: toolCall.Function.Arguments,
		})
	}
	return response
}
