// Package fallback implements the generative prediction path used when a
// route's dedicated backend is unavailable or disabled.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"mobility-intake/internal/collector"
	"mobility-intake/internal/common/config"
	commonerrors "mobility-intake/internal/common/errors"
	"mobility-intake/internal/common/logger"
	"mobility-intake/internal/models"
	"mobility-intake/internal/schema"
)

// documentLimit caps how much of each attached document is quoted in
// the prompt.
const documentLimit = 1000

const compensationPersona = "You are a global mobility compensation specialist. " +
	"Given the assignment details, estimate a relocation compensation package: adjusted salary, " +
	"cost-of-living impact, housing allowance and any hardship considerations. " +
	"Present concrete figures with clearly stated assumptions."

const policyPersona = "You are an immigration and assignment policy analyst. " +
	"Given the assignment details, outline visa requirements, eligibility concerns, " +
	"an expected timeline and the documentation the employee will need."

// Client produces a free-text prediction from the collected fields. Its
// output is always tagged as fallback provenance by the orchestrator.
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
		logger:  log.With(map[string]interface{}{"component": "fallback"}),
	}
}

func (c *Client) Generate(ctx context.Context, sch schema.RouteSchema, fields map[string]collector.Value, docs []models.Document) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	completion, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(persona(sch.Route)),
			openai.UserMessage(buildPrompt(sch, fields, docs)),
		},
		Model:       shared.ChatModel(c.model),
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", commonerrors.NewFallbackFailedError(context.DeadlineExceeded)
		}
		return "", commonerrors.NewFallbackFailedError(err)
	}
	if len(completion.Choices) == 0 {
		return "", commonerrors.NewFallbackFailedError(errors.New("empty completion"))
	}

	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", commonerrors.NewFallbackFailedError(errors.New("blank completion"))
	}
	return text, nil
}

func persona(route string) string {
	switch route {
	case schema.RoutePolicy:
		return policyPersona
	default:
		return compensationPersona
	}
}

func buildPrompt(sch schema.RouteSchema, fields map[string]collector.Value, docs []models.Document) string {
	var b strings.Builder

	b.WriteString("Assignment details:\n")
	for _, f := range sch.Fields {
		if v, ok := fields[f.Key]; ok {
			fmt.Fprintf(&b, "- %s: %s\n", f.Label, v.Display())
		}
	}

	for _, doc := range docs {
		text := doc.Text
		if len(text) > documentLimit {
			text = text[:documentLimit]
		}
		fmt.Fprintf(&b, "\nSupporting document %q:\n%s\n", doc.Name, text)
	}

	b.WriteString("\nProvide your analysis.")
	return b.String()
}
