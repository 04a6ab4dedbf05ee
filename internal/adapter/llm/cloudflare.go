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

const cloudflareBaseURL = "https://api.cloudflare.com/client/v4"

// cloudflareModels are tried in order on Workers AI.
var cloudflareModels = []string{
	"@cf/meta/llama-3.1-8b-instruct",
	"@cf/meta/llama-2-7b-chat-fp16",
	"@cf/mistral/mistral-7b-instruct-v0.1",
}

// CloudflareProvider implements domain.TextProvider for Cloudflare Workers
// AI. The free tier is metered per day, so successful requests are counted
// against the provider key and a 429 cools the whole provider down rather
// than a single model.
type CloudflareProvider struct {
	accountID string
	apiToken  string
	baseURL   string
	models    []string
	client    *http.Client
	health    *HealthRegistry
	logger    *slog.Logger
}

// NewCloudflareProvider creates a Workers AI provider.
func NewCloudflareProvider(accountID, apiToken string, health *HealthRegistry, logger *slog.Logger) *CloudflareProvider {
	return &CloudflareProvider{
		accountID: accountID,
		apiToken:  apiToken,
		baseURL:   cloudflareBaseURL,
		models:    cloudflareModels,
		client:    NewHTTPClient(0, 0),
		health:    health,
		logger:    logger,
	}
}

// Name implements domain.TextProvider.
func (p *CloudflareProvider) Name() string { return "cloudflare" }

// Generate implements domain.TextProvider.
func (p *CloudflareProvider) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.generate",
		trace.WithAttributes(tracer.StringAttr("llm.provider", p.Name())),
	)
	defer span.End()

	system := req.System
	if system == "" {
		system = "You are a helpful AI assistant."
	}
	body, err := json.Marshal(map[string]any{
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: req.Prompt},
		},
		"max_tokens": 512,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("marshal request: %w", err)
	}

	headers := map[string]string{"Authorization": "Bearer " + p.apiToken}

	for _, model := range p.models {
		url := fmt.Sprintf("%s/accounts/%s/ai/run/%s", p.baseURL, p.accountID, model)
		respBody, err := doJSONRequest(ctx, p.client, url, body, headers)
		if err != nil {
			if domain.IsRateLimit(err) {
				// Daily quota exhausted; no point trying other models.
				tracer.RecordError(span, err)
				return "", err
			}
			p.logger.Debug("cloudflare model failed", "model", model, "error", err)
			continue
		}

		var resp struct {
			Success bool `json:"success"`
			Result  struct {
				Response string `json:"response"`
			} `json:"result"`
		}
		if err := json.Unmarshal(respBody, &resp); err != nil {
			p.logger.Debug("cloudflare bad response", "model", model, "error", err)
			continue
		}
		if !resp.Success || resp.Result.Response == "" {
			continue
		}

		p.health.IncrementRequests(p.Name())
		span.SetAttributes(tracer.StringAttr("llm.model", model))
		tracer.SetOK(span)
		return resp.Result.Response, nil
	}

	err = fmt.Errorf("cloudflare: %w", domain.ErrNoCompletion)
	tracer.RecordError(span, err)
	return "", err
}

var _ domain.TextProvider = (*CloudflareProvider)(nil)
