package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/responses"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"

	"finance-backoffice/internal/core"
)

// AgentService is the AI boundary consumed by the application service.
type AgentService interface {
	// Chat runs a plain completion through the selected assistant profile.
	Chat(ctx context.Context, assistant core.Assistant, history []core.ChatMessage, text string) (string, error)

	// InterpretDueAction interprets a message against the current due list
	// and returns either a proposed transition, an answer, or a question.
	InterpretDueAction(ctx context.Context, text, duesContext string) (*core.DueActionResponse, error)
}

type Agent struct {
	client *openai.Client
}

func NewAgent(apiKey string) *Agent {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &Agent{client: &client}
}

// Chat sends the assistant's system prompt, the persisted history and the new
// user message through the chat completions API, honoring the assistant's
// model, temperature and token ceiling.
func (a *Agent) Chat(ctx context.Context, assistant core.Assistant, history []core.ChatMessage, text string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	if assistant.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(assistant.SystemPrompt))
	}
	for _, m := range history {
		switch m.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(text))

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(assistant.Model),
		Messages: messages,
	}
	if assistant.Temperature > 0 {
		params.Temperature = param.NewOpt(assistant.Temperature)
	}
	if assistant.MaxTokens > 0 {
		params.MaxTokens = param.NewOpt(assistant.MaxTokens)
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty completion content")
	}
	return resp.Choices[0].Message.Content, nil
}

// InterpretDueAction asks the model to map a natural-language request onto
// the current due list using a strict JSON schema. A returned proposal is
// validated but never executed here — confirmation stays with the caller.
func (a *Agent) InterpretDueAction(ctx context.Context, text, duesContext string) (*core.DueActionResponse, error) {
	prompt := fmt.Sprintf(`You are the financial back-office assistant.
The user manages accounts payable, accounts receivable and recurring charges.
Given the current due list, either:
1. Propose a due transition ('settle' or 'reopen') referencing an exact due id, OR
2. Answer a question about the dues directly, OR
3. Ask for clarification when the request is ambiguous.
Never invent due ids. Amounts in the list are in BRL.

Current dues:
%s

User message: %s`, duesContext, text)

	schemaStruct := generateSchema()
	schemaJSON, err := json.Marshal(schemaStruct)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	var schemaMap map[string]any
	if err := json.Unmarshal(schemaJSON, &schemaMap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema to map: %w", err)
	}

	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(shared.ChatModelGPT4o),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: param.NewOpt(prompt),
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Type:        constant.JSONSchema("json_schema"),
					Name:        "due_action_response",
					Strict:      param.NewOpt(true),
					Schema:      schemaMap,
					Description: param.NewOpt("A proposed financial due transition, an answer, or a clarifying question"),
				},
			},
		},
	}

	resp, err := a.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai responses error: %w", err)
	}

	content := resp.OutputText()
	if content == "" {
		return nil, fmt.Errorf("empty response content")
	}

	var response core.DueActionResponse
	if err := json.Unmarshal([]byte(content), &response); err != nil {
		return nil, fmt.Errorf("failed to parse completion: %w", err)
	}

	if response.Proposal != nil {
		response.Proposal.Normalize()
		if err := response.Proposal.Validate(); err != nil {
			return nil, fmt.Errorf("proposal validation failed: %w", err)
		}
	}
	return &response, nil
}

func generateSchema() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v core.DueActionResponse
	return reflector.Reflect(v)
}
