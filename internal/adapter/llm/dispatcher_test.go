package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"agora/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeProvider scripts one provider's responses and counts calls.
type fakeProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, req domain.GenerateRequest) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestDispatcher_AutoFailoverOrder(t *testing.T) {
	first := &fakeProvider{name: "first", err: errors.New("boom")}
	second := &fakeProvider{name: "second", text: "hello"}
	local := &fakeProvider{name: "ollama", text: "local"}

	d := NewDispatcher([]domain.TextProvider{first, second}, local,
		NewHealthRegistry(24*time.Hour), DispatcherOptions{}, discardLogger())

	text, err := d.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "hello" {
		t.Fatalf("text = %q, want %q", text, "hello")
	}
	if first.calls != 1 || second.calls != 1 || local.calls != 0 {
		t.Fatalf("calls = %d/%d/%d, want 1/1/0", first.calls, second.calls, local.calls)
	}
}

func TestDispatcher_RateLimitedProviderCoolsDown(t *testing.T) {
	limited := &fakeProvider{name: "groq", err: fmt.Errorf("%w: quota", domain.ErrRateLimit)}
	local := &fakeProvider{name: "ollama", text: "local"}
	health := NewHealthRegistry(24 * time.Hour)

	d := NewDispatcher([]domain.TextProvider{limited}, local, health,
		DispatcherOptions{Cooldown: time.Hour}, discardLogger())

	text, err := d.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
	if err != nil || text != "local" {
		t.Fatalf("Generate = %q, %v; want local fallback", text, err)
	}
	if limited.calls != 1 {
		t.Fatalf("limited provider calls = %d, want 1", limited.calls)
	}
	if health.IsAvailable("groq") {
		t.Fatal("provider should be cooling down after a rate limit")
	}

	// Second call must skip the limited provider entirely.
	if _, err := d.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"}); err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if limited.calls != 1 {
		t.Fatalf("limited provider called again during cooldown: %d calls", limited.calls)
	}
	if local.calls != 2 {
		t.Fatalf("local calls = %d, want 2", local.calls)
	}
}

func TestDispatcher_LocalIsTerminalFallback(t *testing.T) {
	broken := &fakeProvider{name: "together", err: errors.New("down")}
	local := &fakeProvider{name: "ollama", err: errors.New("also down")}

	d := NewDispatcher([]domain.TextProvider{broken}, local,
		NewHealthRegistry(24*time.Hour), DispatcherOptions{}, discardLogger())

	_, err := d.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("expected error when every provider including local fails")
	}
	if local.calls != 1 {
		t.Fatal("local fallback must always be attempted in auto mode")
	}
}

func TestDispatcher_NamedPreferenceNoFallthrough(t *testing.T) {
	pinned := &fakeProvider{name: "gemini", err: errors.New("down")}
	other := &fakeProvider{name: "groq", text: "unused"}
	local := &fakeProvider{name: "ollama", text: "local"}

	d := NewDispatcher([]domain.TextProvider{other, pinned}, local,
		NewHealthRegistry(24*time.Hour), DispatcherOptions{Preference: "gemini"}, discardLogger())

	_, err := d.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
	if err == nil {
		t.Fatal("pinned provider failure must surface, not fall through")
	}
	if other.calls != 0 || local.calls != 0 {
		t.Fatalf("fallthrough happened: other=%d local=%d", other.calls, local.calls)
	}
}

func TestDispatcher_GenerateWithUnknownProvider(t *testing.T) {
	local := &fakeProvider{name: "ollama", text: "local"}
	d := NewDispatcher(nil, local, NewHealthRegistry(24*time.Hour), DispatcherOptions{}, discardLogger())

	_, err := d.GenerateWith(context.Background(), "nope", domain.GenerateRequest{Prompt: "hi"})
	if !errors.Is(err, domain.ErrProviderNotFound) {
		t.Fatalf("err = %v, want ErrProviderNotFound", err)
	}
}

func TestDispatcher_SkipsEmptyCompletions(t *testing.T) {
	empty := &fakeProvider{name: "huggingface", text: ""}
	local := &fakeProvider{name: "ollama", text: "local"}

	d := NewDispatcher([]domain.TextProvider{empty}, local,
		NewHealthRegistry(24*time.Hour), DispatcherOptions{}, discardLogger())

	text, err := d.Generate(context.Background(), domain.GenerateRequest{Prompt: "hi"})
	if err != nil || text != "local" {
		t.Fatalf("Generate = %q, %v; want fallthrough past empty completion", text, err)
	}
}
