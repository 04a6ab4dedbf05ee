package domain

import "context"

// GenerateRequest is one logical text-generation request.
type GenerateRequest struct {
	// Prompt is the user-facing instruction.
	Prompt string
	// System is the agent context (persona) sent as the system prompt, or
	// prepended to the prompt for providers without a system role.
	System string
}

// TextProvider is the interface for any text-generation backend.
type TextProvider interface {
	// Generate sends a request and returns the completion text.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	// Name returns the provider's identifier (e.g., "groq", "ollama").
	Name() string
}

// TextGenerator is the caller-facing generation capability: the dispatcher
// implements it over the full provider chain.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
