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

const huggingfaceBaseURL = "https://api-inference.huggingface.co/models"

// huggingfaceModels are tried in order via per-model inference endpoints.
var huggingfaceModels = []string{
	"HuggingFaceH4/zephyr-7b-beta",
	"mistralai/Mixtral-8x7B-Instruct-v0.1",
	"meta-llama/Meta-Llama-3-8B-Instruct",
}

// HuggingFaceProvider implements domain.TextProvider for the Hugging Face
// Inference API. Like Groq, limits are tracked per model.
type HuggingFaceProvider struct {
	apiKey   string
	baseURL  string
	models   []string
	client   *http.Client
	health   *HealthRegistry
	cooldown time.Duration
	logger   *slog.Logger
}

// NewHuggingFaceProvider creates a Hugging Face provider.
func NewHuggingFaceProvider(apiKey string, health *HealthRegistry, cooldown time.Duration, logger *slog.Logger) *HuggingFaceProvider {
	return &HuggingFaceProvider{
		apiKey:   apiKey,
		baseURL:  huggingfaceBaseURL,
		models:   huggingfaceModels,
		client:   NewHTTPClient(0, 0),
		health:   health,
		cooldown: cooldown,
		logger:   logger,
	}
}

// Name implements domain.TextProvider.
func (p *HuggingFaceProvider) Name() string { return "huggingface" }

// Generate implements domain.TextProvider.
func (p *HuggingFaceProvider) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.generate",
		trace.WithAttributes(tracer.StringAttr("llm.provider", p.Name())),
	)
	defer span.End()

	system := req.System
	if system == "" {
		system = "You are a helpful AI assistant."
	}

	allLimited := true
	for _, model := range p.models {
		key := ModelKey(p.Name(), model)
		if !p.health.IsAvailable(key) {
			continue
		}

		body, err := json.Marshal(map[string]any{
			"model": model,
			"messages": []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: req.Prompt},
			},
			"max_tokens":  512,
			"temperature": 0.8,
		})
		if err != nil {
			tracer.RecordError(span, err)
			return "", fmt.Errorf("marshal request: %w", err)
		}

		headers := map[string]string{"Authorization": "Bearer " + p.apiKey}
		url := fmt.Sprintf("%s/%s/v1/chat/completions", p.baseURL, model)
		respBody, err := doJSONRequest(ctx, p.client, url, body, headers)
		if err != nil {
			if domain.IsRateLimit(err) {
				p.health.MarkLimited(key, p.cooldown)
				p.logger.Debug("huggingface model rate limited", "model", model)
				continue
			}
			allLimited = false
			p.logger.Debug("huggingface model failed", "model", model, "error", err)
			continue
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
			allLimited = false
			continue
		}
		if resp.Error != nil || len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			allLimited = false
			continue
		}

		span.SetAttributes(tracer.StringAttr("llm.model", model))
		tracer.SetOK(span)
		return resp.Choices[0].Message.Content, nil
	}

	var err error
	if allLimited {
		err = fmt.Errorf("%w: all huggingface models limited", domain.ErrRateLimit)
	} else {
		err = fmt.Errorf("huggingface: %w", domain.ErrNoCompletion)
	}
	tracer.RecordError(span, err)
	return "", err
}

var _ domain.TextProvider = (*HuggingFaceProvider)(nil)
