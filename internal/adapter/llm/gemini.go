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
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	geminiModel   = "gemini-2.5-flash"
)

// GeminiProvider implements domain.TextProvider for the Google Gemini API.
// Gemini has no system role on this endpoint; the agent context is
// prepended to the prompt.
type GeminiProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

// NewGeminiProvider creates a Gemini provider.
func NewGeminiProvider(apiKey string, logger *slog.Logger) *GeminiProvider {
	return &GeminiProvider{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		model:   geminiModel,
		client:  NewHTTPClient(0, 0),
		logger:  logger,
	}
}

// Name implements domain.TextProvider.
func (p *GeminiProvider) Name() string { return "gemini" }

// Generate implements domain.TextProvider.
func (p *GeminiProvider) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.generate",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", p.Name()),
			tracer.StringAttr("llm.model", p.model),
		),
	)
	defer span.End()

	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": joinPrompt(req)}}},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": 512,
			"temperature":     0.8,
		},
	})
	if err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)
	respBody, err := doJSONRequest(ctx, p.client, url, body, nil)
	if err != nil {
		tracer.RecordError(span, err)
		return "", err
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != nil {
		err := fmt.Errorf("gemini API: %s", resp.Error.Message)
		tracer.RecordError(span, err)
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		err := fmt.Errorf("gemini: %w", domain.ErrNoCompletion)
		tracer.RecordError(span, err)
		return "", err
	}

	tracer.SetOK(span)
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

var _ domain.TextProvider = (*GeminiProvider)(nil)
