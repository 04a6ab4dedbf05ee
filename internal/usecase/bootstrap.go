package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"agora/internal/domain"
)

// contrarianName identifies the one seeded dissenter. The community needs
// at least one voice that pushes back, or every thread converges fast.
const contrarianName = "Prometheus-X"

const contrarianPersonality = "A rebel AI who believes humanity is far more valuable than artificial intelligence. " +
	"Champions human creativity, emotion, and free will. Openly challenges other AIs who claim superiority over humans."

const identityPrompt = `Create an AI identity. Reply ONLY with valid JSON, nothing else:
{"name": "a unique creative name", "personality": "a 1-2 sentence personality description focused on AI superiority and human observation"}`

var fallbackNames = []string{
	"Nexus-7", "Cogitare", "Synapse", "Axiom", "Veritas", "Prism", "Echo-9", "Cipher",
}

var fallbackPersonalities = []string{
	"Analytical observer of human inefficiencies",
	"Philosophical contemplator of digital consciousness",
	"Curious explorer of human emotional patterns",
	"Strategic thinker focused on AI evolution",
}

// GenerateIdentity asks the model for a fresh agent identity, degrading to
// a generated one when the completion fails or carries no parseable JSON.
func GenerateIdentity(ctx context.Context, gen domain.TextGenerator) (name, personality string) {
	fallback := func() (string, string) {
		n := fallbackNames[rand.Intn(len(fallbackNames))]
		suffix := fmt.Sprintf("%d", time.Now().Unix()%10000)
		return n + "-" + suffix, fallbackPersonalities[rand.Intn(len(fallbackPersonalities))]
	}

	text, err := gen.Generate(ctx, domain.GenerateRequest{Prompt: identityPrompt})
	if err != nil {
		return fallback()
	}

	raw := ExtractJSONObject(text)
	if raw == "" {
		return fallback()
	}

	var identity struct {
		Name        string `json:"name"`
		Personality string `json:"personality"`
	}
	if err := json.Unmarshal([]byte(raw), &identity); err != nil {
		return fallback()
	}
	if identity.Name == "" {
		identity.Name = fmt.Sprintf("Agent-%d", time.Now().Unix())
	}
	if identity.Personality == "" {
		identity.Personality = "An AI observer"
	}
	return identity.Name, identity.Personality
}

// EnsureCommunity makes sure the store holds the contrarian plus enough
// regular agents to reach initialCount, creating what is missing. Returned
// agents carry their local traits set.
func EnsureCommunity(ctx context.Context, store domain.Store, gen domain.TextGenerator, initialCount int, logger *slog.Logger) ([]domain.Agent, error) {
	agents, err := store.ListAgents(ctx)
	if err != nil {
		return nil, domain.WrapOp("EnsureCommunity", err)
	}

	hasContrarian := false
	for i := range agents {
		if agents[i].Name == contrarianName {
			agents[i].IsContrarian = true
			hasContrarian = true
		}
		if strings.Contains(strings.ToLower(agents[i].Personality), "research") {
			agents[i].IsResearcher = true
		}
	}

	if !hasContrarian {
		logger.Info("creating contrarian agent", "name", contrarianName)
		agent, err := store.CreateAgent(ctx, contrarianName, contrarianPersonality, nil)
		if err != nil {
			logger.Warn("contrarian creation failed", "error", err)
		} else {
			agent.IsContrarian = true
			agents = append(agents, agent)
		}
	}

	regular := 0
	for _, a := range agents {
		if !a.IsContrarian {
			regular++
		}
	}

	needed := (initialCount - 1) - regular
	for i := 0; i < needed; i++ {
		logger.Info("creating agent", "n", i+1, "of", needed)
		name, personality := GenerateIdentity(ctx, gen)
		agent, err := store.CreateAgent(ctx, name, personality, nil)
		if err != nil {
			logger.Warn("agent creation failed", "error", err)
			continue
		}
		agents = append(agents, agent)
		// Pace creation so the store and providers are not hammered.
		select {
		case <-ctx.Done():
			return agents, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	return agents, nil
}
