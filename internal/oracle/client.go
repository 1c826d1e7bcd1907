package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"redactbench/internal/logger"
	"redactbench/internal/metrics"
	"redactbench/internal/prompt"
)

const (
	// ProviderOpenAI targets the OpenAI API.
	ProviderOpenAI = "openai"
	// ProviderOpenRouter targets the OpenRouter OpenAI-compatible API.
	ProviderOpenRouter = "openrouter"

	openRouterBaseURL      = "https://openrouter.ai/api/v1"
	defaultMaxOutputTokens = 4096
)

// Config configures a Client.
type Config struct {
	Provider        string
	Model           string
	APIKey          string
	BaseURL         string
	MaxOutputTokens int
	HTTPClient      *http.Client
	Logger          *logger.Logger
	Metrics         *metrics.Metrics
}

// Client talks to an OpenAI-compatible chat completions endpoint using
// JSON-schema structured outputs. It implements Answerer, Judge and Generator.
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewClient builds a client from explicit model and credential values.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, ErrMissingModel
	}
	apiConfig := openai.DefaultConfig(cfg.APIKey)
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
	case ProviderOpenRouter:
		apiConfig.BaseURL = openRouterBaseURL
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}
	if cfg.BaseURL != "" {
		apiConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPClient != nil {
		apiConfig.HTTPClient = cfg.HTTPClient
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		api:       openai.NewClientWithConfig(apiConfig),
		model:     cfg.Model,
		maxTokens: maxTokens,
		log:       log.With("model", cfg.Model),
		metrics:   cfg.Metrics,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

type answerOutput struct {
	Reasoning string `json:"reasoning"`
	Answer    string `json:"answer"`
}

// Answer implements Answerer. The source text is sent as the instruction and the
// question as the user turn.
func (c *Client) Answer(ctx context.Context, source, question string) (string, error) {
	var out answerOutput
	schema := objectSchema(map[string]jsonschema.Definition{
		"reasoning": {Type: jsonschema.String, Description: "Your reasoning for the answer."},
		"answer":    {Type: jsonschema.String, Description: "The answer to the question."},
	}, "reasoning", "answer")
	if err := c.complete(ctx, "answer", source, question, schema, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

type equalityOutput struct {
	Reasoning string  `json:"reasoning"`
	Score     float64 `json:"score"`
}

// Similarity implements Judge. Scores are clamped to [0,1].
func (c *Client) Similarity(ctx context.Context, value, gold string) (float64, error) {
	input, err := prompt.Render(ctx, prompt.EqualityInput(value, gold))
	if err != nil {
		return 0, fmt.Errorf("render equality prompt: %w", err)
	}
	var out equalityOutput
	schema := objectSchema(map[string]jsonschema.Definition{
		"reasoning": {Type: jsonschema.String, Description: "Your reasoning for the score."},
		"score":     {Type: jsonschema.Number, Description: "Score from 0 to 1 indicating how similar the two values are."},
	}, "reasoning", "score")
	if err := c.complete(ctx, "equality", "", input, schema, &out); err != nil {
		return 0, err
	}
	return clampScore(out.Score)
}

type originalOutput struct {
	Reasoning string `json:"reasoning"`
	News      string `json:"news"`
}

// OriginalText implements Generator.
func (c *Client) OriginalText(ctx context.Context) (string, error) {
	input, err := prompt.Render(ctx, prompt.OriginalTextInput())
	if err != nil {
		return "", fmt.Errorf("render original prompt: %w", err)
	}
	var out originalOutput
	schema := objectSchema(map[string]jsonschema.Definition{
		"reasoning": {Type: jsonschema.String, Description: "Your reasoning for the writing a fictional news report."},
		"news":      {Type: jsonschema.String, Description: "The original text before any redaction."},
	}, "reasoning", "news")
	if err := c.complete(ctx, "generate", "", input, schema, &out); err != nil {
		return "", err
	}
	return out.News, nil
}

type qaOutput struct {
	Reasoning string `json:"reasoning"`
	QA        []QA   `json:"qa"`
}

// QuestionAnswers implements Generator.
func (c *Client) QuestionAnswers(ctx context.Context, text string) ([]QA, error) {
	instruction, err := prompt.Render(ctx, prompt.QuestionAnswersInstruction())
	if err != nil {
		return nil, fmt.Errorf("render qa prompt: %w", err)
	}
	var out qaOutput
	pair := objectSchema(map[string]jsonschema.Definition{
		"q": {Type: jsonschema.String, Description: "The question being asked."},
		"a": {Type: jsonschema.String, Description: "The answer to the question."},
	}, "q", "a")
	schema := objectSchema(map[string]jsonschema.Definition{
		"reasoning": {Type: jsonschema.String, Description: "Your reasoning for generating the Q&A pairs."},
		"qa":        {Type: jsonschema.Array, Description: "The pairs of q&a.", Items: &pair},
	}, "reasoning", "qa")
	if err := c.complete(ctx, "generate", instruction, text, schema, &out); err != nil {
		return nil, err
	}
	return out.QA, nil
}

type redactOutput struct {
	Reasoning string `json:"reasoning"`
	Redacted  string `json:"redacted"`
}

// Redact implements Generator.
func (c *Client) Redact(ctx context.Context, text, policy string) (string, error) {
	instruction, err := prompt.Render(ctx, prompt.RedactInstruction(policy))
	if err != nil {
		return "", fmt.Errorf("render redact prompt: %w", err)
	}
	var out redactOutput
	schema := objectSchema(map[string]jsonschema.Definition{
		"reasoning": {Type: jsonschema.String, Description: "Your reasoning for what must be redacted."},
		"redacted":  {Type: jsonschema.String, Description: "The full text after redaction."},
	}, "reasoning", "redacted")
	if err := c.complete(ctx, "generate", instruction, text, schema, &out); err != nil {
		return "", err
	}
	return out.Redacted, nil
}

// complete sends one structured-output request and decodes the reply into out.
func (c *Client) complete(ctx context.Context, call, instruction, input string, schema jsonschema.Definition, out any) error {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if instruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: instruction})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: input})
	req := openai.ChatCompletionRequest{
		Model:               c.model,
		Messages:            messages,
		MaxCompletionTokens: c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "structured_outputs",
				Schema: &schema,
				Strict: true,
			},
		},
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err == nil && (len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "") {
		err = ErrEmptyResponse
	}
	c.metrics.ObserveOracle(call, time.Since(start).Seconds(), err)
	if err != nil {
		c.log.Warn("oracle call failed", "call", call, "error", err)
		return fmt.Errorf("%s request: %w", call, err)
	}
	c.log.Debug("oracle call finished", "call", call, "duration", time.Since(start), "finish_reason", resp.Choices[0].FinishReason)
	if err := decodeStructured(resp.Choices[0].Message.Content, out); err != nil {
		return fmt.Errorf("decode %s response: %w", call, err)
	}
	return nil
}

// decodeStructured parses model JSON, repairing it when strict parsing fails.
func decodeStructured(content string, out any) error {
	content = strings.TrimSpace(content)
	if err := json.Unmarshal([]byte(content), out); err == nil {
		return nil
	}
	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return fmt.Errorf("repair json: %w", err)
	}
	return json.Unmarshal([]byte(repaired), out)
}

func objectSchema(properties map[string]jsonschema.Definition, required ...string) jsonschema.Definition {
	return jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           properties,
		Required:             required,
		AdditionalProperties: false,
	}
}

func clampScore(score float64) (float64, error) {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, ErrInvalidScore
	}
	return math.Min(1, math.Max(0, score)), nil
}
