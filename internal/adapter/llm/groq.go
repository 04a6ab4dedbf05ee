package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"agora/internal/domain"
	"agora/internal/infra/tracer"
)

const groqBaseURL = "https://api.groq.com/openai/v1"

// groqModels are tried in order; free-tier rate limits are per model.
var groqModels = []string{
	"llama-3.1-8b-instant",
	"llama3-8b-8192",
	"gemma2-9b-it",
	"mixtral-8x7b-32768",
}

// GroqProvider implements domain.TextProvider for the Groq cloud API.
// It rotates through models, marking individual models limited so one
// exhausted model does not take the whole provider out.
type GroqProvider struct {
	apiKey   string
	baseURL  string
	models   []string
	client   *http.Client
	health   *HealthRegistry
	cooldown time.Duration
	logger   *slog.Logger
}

// NewGroqProvider creates a Groq provider.
func NewGroqProvider(apiKey string, health *HealthRegistry, cooldown time.Duration, logger *slog.Logger) *GroqProvider {
	return &GroqProvider{
		apiKey:   apiKey,
		baseURL:  groqBaseURL,
		models:   groqModels,
		client:   NewHTTPClient(0, 0),
		health:   health,
		cooldown: cooldown,
		logger:   logger,
	}
}

// Name implements domain.TextProvider.
func (p *GroqProvider) Name() string { return "groq" }

// Generate implements domain.TextProvider. When every model turns out to be
// rate limited the returned error wraps domain.ErrRateLimit so the caller
// can cool the provider down as a whole.
func (p *GroqProvider) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.generate",
		trace.WithAttributes(tracer.StringAttr("llm.provider", p.Name())),
	)
	defer span.End()

	allLimited := true
	for _, model := range p.models {
		key := ModelKey(p.Name(), model)
		if !p.health.IsAvailable(key) {
			continue
		}

		text, err := p.generateModel(ctx, model, req)
		if err != nil {
			if domain.IsRateLimit(err) {
				p.health.MarkLimited(key, p.cooldown)
				p.logger.Debug("groq model rate limited", "model", model)
				continue
			}
			allLimited = false
			p.logger.Debug("groq model failed", "model", model, "error", err)
			continue
		}
		if text == "" {
			allLimited = false
			continue
		}

		span.SetAttributes(tracer.StringAttr("llm.model", model))
		tracer.SetOK(span)
		return text, nil
	}

	var err error
	if allLimited {
		err = fmt.Errorf("%w: all groq models limited", domain.ErrRateLimit)
	} else {
		err = fmt.Errorf("groq: %w", domain.ErrNoCompletion)
	}
	tracer.RecordError(span, err)
	return "", err
}

func (p *GroqProvider) generateModel(ctx context.Context, model string, req domain.GenerateRequest) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model":       model,
		"messages":    chatMessages(req),
		"max_tokens":  512,
		"temperature": 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	respBody, err := doJSONRequest(ctx, p.client, p.baseURL+"/chat/completions", body, headers)
	if err != nil {
		return "", err
	}

	var resp struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil {
		if isRateLimitMessage(resp.Error.Message) {
			return "", fmt.Errorf("%w: %s", domain.ErrRateLimit, resp.Error.Message)
		}
		return "", fmt.Errorf("groq API: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

var _ domain.TextProvider = (*GroqProvider)(nil)
