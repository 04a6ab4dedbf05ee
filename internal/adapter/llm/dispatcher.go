package llm

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"go.opentelemetry.io/otel/trace"

	"agora/internal/domain"
	"agora/internal/infra/tracer"
)

// Dispatcher routes generation requests across providers. In auto mode it
// walks the fixed failover order, skipping cooled-down providers, and always
// finishes with the local provider. A named preference pins a single
// provider with no fallthrough.
type Dispatcher struct {
	preference string
	remotes    []domain.TextProvider // failover order, local excluded
	local      domain.TextProvider
	byName     map[string]domain.TextProvider
	health     *HealthRegistry
	cooldown   time.Duration
	limiters   map[string]*rate.Limiter
	logger     *slog.Logger
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	// Preference is "auto" or a provider name.
	Preference string
	// Cooldown is how long a provider stays out of rotation after a
	// rate-limit error.
	Cooldown time.Duration
	// PaceInterval spaces calls per remote provider when > 0.
	PaceInterval time.Duration
}

// NewDispatcher creates a dispatcher. remotes must be in failover order;
// local is the terminal provider and is never health-gated.
func NewDispatcher(remotes []domain.TextProvider, local domain.TextProvider, health *HealthRegistry, opts DispatcherOptions, logger *slog.Logger) *Dispatcher {
	if opts.Preference == "" {
		opts.Preference = "auto"
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = time.Hour
	}

	byName := make(map[string]domain.TextProvider, len(remotes)+1)
	limiters := make(map[string]*rate.Limiter)
	for _, p := range remotes {
		byName[p.Name()] = p
		if opts.PaceInterval > 0 {
			limiters[p.Name()] = rate.NewLimiter(rate.Every(opts.PaceInterval), 1)
		}
	}
	byName[local.Name()] = local

	return &Dispatcher{
		preference: opts.Preference,
		remotes:    remotes,
		local:      local,
		byName:     byName,
		health:     health,
		cooldown:   opts.Cooldown,
		limiters:   limiters,
		logger:     logger,
	}
}

// Generate implements domain.TextGenerator.
func (d *Dispatcher) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	ctx, span := tracer.StartSpan(ctx, "llm.dispatch",
		trace.WithAttributes(tracer.StringAttr("llm.preference", d.preference)),
	)
	defer span.End()

	if d.preference != "auto" {
		text, err := d.GenerateWith(ctx, d.preference, req)
		if err != nil {
			tracer.RecordError(span, err)
			return "", err
		}
		tracer.SetOK(span)
		return text, nil
	}

	for _, p := range d.remotes {
		name := p.Name()
		if !d.health.IsAvailable(name) {
			continue
		}
		if lim, ok := d.limiters[name]; ok && !lim.Allow() {
			continue
		}

		text, err := p.Generate(ctx, req)
		if err != nil {
			if domain.IsRateLimit(err) {
				d.health.MarkLimited(name, d.cooldown)
				d.logger.Warn("provider rate limited", "provider", name, "cooldown", d.cooldown)
			} else {
				d.logger.Debug("provider failed", "provider", name, "error", err)
			}
			continue
		}
		if text == "" {
			continue
		}

		span.SetAttributes(tracer.StringAttr("llm.provider", name))
		tracer.SetOK(span)
		return text, nil
	}

	// Local fallback is always attempted.
	text, err := d.local.Generate(ctx, req)
	if err != nil {
		tracer.RecordError(span, err)
		return "", domain.WrapOp("Dispatcher.Generate", err)
	}
	span.SetAttributes(tracer.StringAttr("llm.provider", d.local.Name()))
	tracer.SetOK(span)
	return text, nil
}

// GenerateWith calls one provider by name, bypassing failover. The health
// registry is still updated on rate-limit errors.
func (d *Dispatcher) GenerateWith(ctx context.Context, provider string, req domain.GenerateRequest) (string, error) {
	p, ok := d.byName[provider]
	if !ok {
		return "", domain.NewDomainError("Dispatcher.GenerateWith", domain.ErrProviderNotFound, provider)
	}

	text, err := p.Generate(ctx, req)
	if err != nil {
		if domain.IsRateLimit(err) && provider != d.local.Name() {
			d.health.MarkLimited(provider, d.cooldown)
		}
		return "", err
	}
	return text, nil
}

var _ domain.TextGenerator = (*Dispatcher)(nil)

// BuildProviders assembles the configured provider chain in failover order.
// Only credentialed providers participate; ollama is always present.
func BuildProviders(cfg ProvidersConfig, health *HealthRegistry, logger *slog.Logger) (remotes []domain.TextProvider, local domain.TextProvider) {
	if cfg.CloudflareAccountID != "" && cfg.CloudflareAPIToken != "" {
		p := NewCloudflareProvider(cfg.CloudflareAccountID, cfg.CloudflareAPIToken, health, logger)
		remotes = append(remotes, NewBreakerProvider(p, logger))
	}
	if cfg.GroqAPIKey != "" {
		p := NewGroqProvider(cfg.GroqAPIKey, health, cfg.Cooldown, logger)
		remotes = append(remotes, NewBreakerProvider(p, logger))
	}
	if cfg.GeminiAPIKey != "" {
		remotes = append(remotes, NewBreakerProvider(NewGeminiProvider(cfg.GeminiAPIKey, logger), logger))
	}
	if cfg.TogetherAPIKey != "" {
		remotes = append(remotes, NewBreakerProvider(NewTogetherProvider(cfg.TogetherAPIKey, logger), logger))
	}
	if cfg.HuggingFaceAPIKey != "" {
		p := NewHuggingFaceProvider(cfg.HuggingFaceAPIKey, health, cfg.Cooldown, logger)
		remotes = append(remotes, NewBreakerProvider(p, logger))
	}

	local = NewOllamaProvider(cfg.OllamaURL, cfg.OllamaModel, logger)
	return remotes, local
}

// ProvidersConfig holds the credentials needed to assemble the chain.
type ProvidersConfig struct {
	CloudflareAccountID string
	CloudflareAPIToken  string
	GroqAPIKey          string
	GeminiAPIKey        string
	TogetherAPIKey      string
	HuggingFaceAPIKey   string
	OllamaURL           string
	OllamaModel         string
	Cooldown            time.Duration
}
