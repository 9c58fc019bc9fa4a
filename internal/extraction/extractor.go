// Package extraction implements the free-text field extractor on top of
// an OpenAI-compatible chat-completions endpoint.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"mobility-intake/internal/collector"
	"mobility-intake/internal/common/config"
	commonerrors "mobility-intake/internal/common/errors"
	"mobility-intake/internal/common/logger"
)

const (
	// historyWindow bounds how much conversation context goes into the
	// prompt; older turns rarely add extraction signal.
	historyWindow = 3

	// documentLimit caps how much of each attached document is quoted.
	documentLimit = 1000
)

const systemPrompt = "You are a data extraction assistant for a global mobility service. " +
	"Extract field values from the user's message, the conversation so far and any attached documents. " +
	"Only extract values the text actually supports; never guess or invent. " +
	"Respond with JSON only, no prose."

// Client extracts typed intake fields using a generative model. It
// implements collector.Extractor.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
	logger  logger.Logger
}

func NewClient(cfg config.GenAIConfig, log logger.Logger) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		api:     openai.NewClient(opts...),
		model:   cfg.Model,
		timeout: cfg.TimeoutDuration(),
		logger:  log.With(map[string]interface{}{"component": "extractor"}),
	}
}

func (c *Client) Extract(ctx context.Context, req collector.ExtractionRequest) (*collector.Extraction, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(req)),
		},
		Model:       shared.ChatModel(c.model),
		Temperature: openai.Float(0.1),
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, commonerrors.NewExtractionTimeoutError()
		}
		return nil, commonerrors.NewExtractionFailedError(err)
	}
	if len(completion.Choices) == 0 {
		return nil, commonerrors.NewExtractionFailedError(errors.New("empty completion"))
	}

	out, err := parseExtraction(completion.Choices[0].Message.Content)
	if err != nil {
		c.logger.WithError(err).Warn("unparseable extraction output", nil)
		return nil, commonerrors.NewExtractionFailedError(err)
	}
	return out, nil
}

// buildPrompt renders the field definitions, recent history, document
// context and the latest message into one extraction request.
func buildPrompt(req collector.ExtractionRequest) string {
	var b strings.Builder

	b.WriteString("Fields to extract:\n")
	for _, f := range req.Schema.Fields {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", f.Key, f.Description, f.Type)
	}

	history := req.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Speaker, turn.Text)
		}
	}

	for _, doc := range req.Documents {
		text := doc.Text
		if len(text) > documentLimit {
			text = text[:documentLimit]
		}
		fmt.Fprintf(&b, "\nAttached document %q:\n%s\n", doc.Name, text)
	}

	fmt.Fprintf(&b, "\nLatest user message:\n%s\n", req.Message)
	fmt.Fprintf(&b, "\nReturn JSON shaped exactly like:\n%s\n", responseSkeleton(req))
	b.WriteString("Omit fields with no evidence from extracted_fields and list their keys in missing_fields.")
	return b.String()
}

// responseSkeleton builds the expected output shape from the schema so
// the model sees every key it may fill.
func responseSkeleton(req collector.ExtractionRequest) string {
	skeleton := `{"extracted_fields":{},"missing_fields":[]}`
	for _, f := range req.Schema.Fields {
		skeleton, _ = sjson.Set(skeleton, "extracted_fields."+f.Key, "<value or omit>")
	}
	return skeleton
}

// parseExtraction pulls the JSON object out of the completion text.
// Models occasionally wrap output in prose or code fences, so we take
// the widest brace-delimited slice and validate it.
func parseExtraction(content string) (*collector.Extraction, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in completion output")
	}
	payload := content[start : end+1]
	if !gjson.Valid(payload) {
		return nil, fmt.Errorf("invalid JSON in completion output")
	}

	out := &collector.Extraction{Fields: make(map[string]string)}
	gjson.Get(payload, "extracted_fields").ForEach(func(key, value gjson.Result) bool {
		s := strings.TrimSpace(value.String())
		if s == "" || value.Type == gjson.Null {
			return true
		}
		out.Fields[key.String()] = s
		return true
	})
	for _, m := range gjson.Get(payload, "missing_fields").Array() {
		out.Missing = append(out.Missing, m.String())
	}
	return out, nil
}
