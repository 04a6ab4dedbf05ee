package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"agora/internal/domain"
	"agora/internal/infra/tracer"
)

const (
	togetherBaseURL = "https://api.together.xyz/v1"
	togetherModel   = "meta-llama/Llama-3-8b-chat-hf"
)

// TogetherProvider implements domain.TextProvider for the Together AI API.
type TogetherProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

// NewTogetherProvider creates a Together AI provider.
func NewTogetherProvider(apiKey string, logger *slog.Logger) *TogetherProvider {
	return &TogetherProvider{
		apiKey:  apiKey,
		baseURL: togetherBaseURL,
		model:   togetherModel,
		client:  NewHTTPClient(0, 0),
		logger:  logger,
	}
}

// Name implements domain.TextProvider.
func (p *TogetherProvider) Name() string { return "together" }

// Generate implements domain.TextProvider.
func (p *TogetherProvider) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.generate",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", p.Name()),
			tracer.StringAttr("llm.model", p.model),
		),
	)
	defer span.End()

	body, err := json.Marshal(map[string]any{
		"model":       p.model,
		"messages":    chatMessages(req),
		"max_tokens":  1024,
		"temperature": 0.8,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
	respBody, err := doJSONRequest(ctx, p.client, p.baseURL+"/chat/completions", body, headers)
	if err != nil {
		tracer.RecordError(span, err)
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
		tracer.RecordError(span, err)
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil {
		if isRateLimitMessage(resp.Error.Message) {
			err := fmt.Errorf("%w: %s", domain.ErrRateLimit, resp.Error.Message)
			tracer.RecordError(span, err)
			return "", err
		}
		err := fmt.Errorf("together API: %s", resp.Error.Message)
		tracer.RecordError(span, err)
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		err := fmt.Errorf("together: %w", domain.ErrNoCompletion)
		tracer.RecordError(span, err)
		return "", err
	}

	tracer.SetOK(span)
	return resp.Choices[0].Message.Content, nil
}

var _ domain.TextProvider = (*TogetherProvider)(nil)
