package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Commands the agent can ask for
const (
	CommandLogCare      = "LogCare"
	CommandShowTasks    = "ShowTasks"
	CommandGeneralQuery = "GeneralQuery"
)

// AgentResponse defines the structured output from the OpenAI agent.
type AgentResponse struct {
	CommandName string `json:"command_name" jsonschema_description:"The command to execute: LogCare, ShowTasks or GeneralQuery"`
	PlantName   string `json:"plant_name" jsonschema_description:"The exact plant name from the user's list, if applicable"`
	CareKind    string `json:"care_kind" jsonschema_description:"watering or feeding when the command is LogCare, otherwise empty"`
	UserMessage string `json:"user_message" jsonschema_description:"A short message to show back to the user in their original language"`
}

// CareInterpreter turns a free-text chat message into a structured command.
type CareInterpreter interface {
	InterpretUserMessage(ctx context.Context, userMessage string, plantNames []string) (*AgentResponse, error)
}

// openAIServiceImpl implements the CareInterpreter interface.
type openAIServiceImpl struct {
	client openai.Client
	schema interface{}
}

// GenerateSchema generates a JSON schema for a given type.
func GenerateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// NewOpenAIService creates and initializes a new CareInterpreter.
func NewOpenAIService(apiKey string) (CareInterpreter, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	schema := GenerateSchema[AgentResponse]()

	return &openAIServiceImpl{
		client: client,
		schema: schema,
	}, nil
}

// InterpretUserMessage sends a message to the OpenAI agent and returns the structured response.
func (s *openAIServiceImpl) InterpretUserMessage(ctx context.Context, userMessage string, plantNames []string) (*AgentResponse, error) {
	systemPrompt := fmt.Sprintf(`You are a friendly house-plant care assistant. The user keeps a log of when they water and feed their plants.

The user's plants: %s

Behavior:
1. If the user says they watered or fed (fertilized) one of their plants:
   - command_name = "LogCare"
   - plant_name: the matching name from the list exactly as written there; empty if no plant matches.
   - care_kind: "watering" or "feeding".
   - user_message: a one-line confirmation in the user's language.
2. If the user asks what needs care, what is due, or for their task list:
   - command_name = "ShowTasks", plant_name = "", care_kind = "".
3. Anything else:
   - command_name = "GeneralQuery", plant_name = "", care_kind = "".
   - user_message: a short helpful reply in the user's language.

Output **strictly** in JSON.`, strings.Join(plantNames, ", "))

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "agent_response",
		Description: openai.String("Structured response containing command, plant name, care kind and user message"),
		Schema:      s.schema,
		Strict:      openai.Bool(true),
	}

	respFormat := openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: schemaParam},
	}

	chat, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
		ResponseFormat: respFormat,
		Model:          openai.ChatModelGPT4o,
	})

	if err != nil {
		return nil, fmt.Errorf("error calling OpenAI API: %w", err)
	}

	if len(chat.Choices) == 0 || chat.Choices[0].Message.Content == "" {
		return nil, errors.New("received empty response from OpenAI")
	}

	var agentResp AgentResponse
	err = json.Unmarshal([]byte(chat.Choices[0].Message.Content), &agentResp)
	if err != nil {
		log.Printf("Failed to unmarshal OpenAI response: %s\nRaw response: %s", err, chat.Choices[0].Message.Content)
		return nil, fmt.Errorf("error unmarshalling OpenAI response: %w", err)
	}

	return &agentResp, nil
}
