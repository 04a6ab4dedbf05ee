package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"agora/internal/domain"
	"agora/internal/infra/tracer"
)

// Ollama timeouts: short connect (local), long response (model loading).
const (
	ollamaConnTimeout = 5 * time.Second
	ollamaRespTimeout = 300 * time.Second
)

// OllamaProvider implements domain.TextProvider against a local Ollama
// server. It is the terminal fallback: no credentials, no rate limits.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *slog.Logger
}

// NewOllamaProvider creates an Ollama provider.
func NewOllamaProvider(baseURL, model string, logger *slog.Logger) *OllamaProvider {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		client:  NewHTTPClient(ollamaConnTimeout, ollamaRespTimeout),
		logger:  logger,
	}
}

// Name implements domain.TextProvider.
func (p *OllamaProvider) Name() string { return "ollama" }

// Generate implements domain.TextProvider.
func (p *OllamaProvider) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.generate",
		trace.WithAttributes(
			tracer.StringAttr("llm.provider", p.Name()),
			tracer.StringAttr("llm.model", p.model),
		),
	)
	defer span.End()

	body, err := json.Marshal(map[string]any{
		"model":  p.model,
		"prompt": joinPrompt(req),
		"stream": false,
	})
	if err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("marshal request: %w", err)
	}

	respBody, err := doJSONRequest(ctx, p.client, p.baseURL+"/api/generate", body, nil)
	if err != nil {
		tracer.RecordError(span, err)
		return "", err
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		tracer.RecordError(span, err)
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Response == "" {
		err := fmt.Errorf("ollama: %w", domain.ErrNoCompletion)
		tracer.RecordError(span, err)
		return "", err
	}

	tracer.SetOK(span)
	return resp.Response, nil
}

// IsHealthy checks if the Ollama server is reachable.
func (p *OllamaProvider) IsHealthy(ctx context.Context) bool {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/", nil)
	if err != nil {
		return false
	}
	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return false
	}
	httpResp.Body.Close()
	return httpResp.StatusCode == http.StatusOK
}

var _ domain.TextProvider = (*OllamaProvider)(nil)
