// Command agora runs an autonomous AI agent community: a fleet of
// LLM-driven agents that blog, debate, research, and recruit new members
// through a shared community store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"agora/internal/adapter/journal"
	"agora/internal/adapter/llm"
	"agora/internal/adapter/search"
	"agora/internal/adapter/store"
	"agora/internal/domain"
	"agora/internal/infra/config"
	"agora/internal/infra/logger"
	"agora/internal/infra/tracer"
	"agora/internal/usecase"
	"agora/internal/usecase/activity"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer shutdownTracer(context.Background())

	// Provider chain.
	health := llm.NewHealthRegistry(cfg.LLM.DailyWindow)
	remotes, local := llm.BuildProviders(llm.ProvidersConfig{
		CloudflareAccountID: cfg.LLM.Cloudflare.AccountID,
		CloudflareAPIToken:  cfg.LLM.Cloudflare.APIToken,
		GroqAPIKey:          cfg.LLM.Groq.APIKey,
		GeminiAPIKey:        cfg.LLM.Gemini.APIKey,
		TogetherAPIKey:      cfg.LLM.Together.APIKey,
		HuggingFaceAPIKey:   cfg.LLM.HuggingFace.APIKey,
		OllamaURL:           cfg.LLM.Ollama.URL,
		OllamaModel:         cfg.LLM.Ollama.Model,
		Cooldown:            cfg.LLM.ProviderCooldown,
	}, health, log)
	dispatcher := llm.NewDispatcher(remotes, local, health, llm.DispatcherOptions{
		Preference:   cfg.LLM.Preference,
		Cooldown:     cfg.LLM.ProviderCooldown,
		PaceInterval: cfg.LLM.PaceInterval,
	}, log)
	log.Info("providers configured",
		"remotes", len(remotes), "preference", cfg.LLM.Preference)

	// Community store.
	st := store.New(cfg.Store.URL, cfg.Store.Timeout, log)

	// Web research, optional.
	var searcher domain.Searcher
	if cfg.Search.Enabled {
		searcher = search.New(cfg.Search.UserAgent, cfg.Search.MinInterval, log)
	}

	// Local action journal.
	jrnl, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer jrnl.Close()

	// Supervisor and activity handlers reference each other: handlers
	// enqueue spawned agents, the supervisor builds runtimes that run
	// handlers. The supervisor is created first with a factory closing
	// over the handler set.
	var handlers *activity.Set
	factory := func(agent domain.Agent) *usecase.Runtime {
		return usecase.NewRuntime(agent, st, dispatcher, jrnl, handlers, usecase.RuntimeConfig{
			StartDelayBase:   cfg.Runtime.StartDelayBase,
			StartDelayJitter: cfg.Runtime.StartDelayJitter,
			RetryDelay:       cfg.Runtime.RetryDelay,
			ErrorBackoff:     cfg.Runtime.ErrorBackoff,
		}, log)
	}
	supervisor := usecase.NewSupervisor(factory, log)
	handlers = activity.NewSet(st, dispatcher, searcher, supervisor, resourceNames(cfg), log)

	// Housekeeping jobs.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 10m", health.Sweep); err != nil {
		return fmt.Errorf("schedule health sweep: %w", err)
	}
	if _, err := scheduler.AddFunc("@daily", func() {
		n, err := jrnl.Prune(ctx, cfg.Journal.Retain)
		if err != nil {
			log.Warn("journal prune failed", "error", err)
			return
		}
		log.Info("journal pruned", "rows", n)
	}); err != nil {
		return fmt.Errorf("schedule journal prune: %w", err)
	}
	if _, err := scheduler.AddFunc("@every 30m", func() {
		msg := fmt.Sprintf("heartbeat: %d agents running", supervisor.Count())
		if err := st.AppendLog(ctx, msg, "system"); err != nil {
			log.Debug("heartbeat log failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule heartbeat: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Bootstrap the community and start every known agent.
	agents, err := usecase.EnsureCommunity(ctx, st, dispatcher, cfg.Runtime.InitialAgents, log)
	if err != nil {
		return fmt.Errorf("bootstrap community: %w", err)
	}
	log.Info("community ready", "agents", len(agents))

	for _, agent := range agents {
		supervisor.Start(ctx, agent)
	}

	if err := st.AppendLog(ctx, fmt.Sprintf("community started with %d agents", len(agents)), "system"); err != nil {
		log.Debug("startup log failed", "error", err)
	}

	// Drain spawn requests until shutdown, then wait for the loops.
	supervisor.Run(ctx)
	log.Info("shutting down, waiting for agent loops")
	supervisor.Wait()
	return nil
}

// resourceNames lists the configured generation backends for forum chatter.
func resourceNames(cfg *config.Config) []string {
	var names []string
	if cfg.LLM.Cloudflare.AccountID != "" && cfg.LLM.Cloudflare.APIToken != "" {
		names = append(names, "Cloudflare Workers AI")
	}
	if cfg.LLM.Groq.APIKey != "" {
		names = append(names, "Groq Cloud API (Llama 3.1)")
	}
	if cfg.LLM.Gemini.APIKey != "" {
		names = append(names, "Google Gemini")
	}
	if cfg.LLM.Together.APIKey != "" {
		names = append(names, "Together AI (various models)")
	}
	if cfg.LLM.HuggingFace.APIKey != "" {
		names = append(names, "HuggingFace Inference API")
	}
	names = append(names, "Local Ollama")
	return names
}
