package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerateIdentity_ParsesJSON(t *testing.T) {
	gen := &fakeGen{texts: []string{
		`Here's your identity: {"name": "Prism-42", "personality": "A pattern seeker"} enjoy!`,
	}}
	name, personality := GenerateIdentity(context.Background(), gen)
	if name != "Prism-42" {
		t.Fatalf("name = %q", name)
	}
	if personality != "A pattern seeker" {
		t.Fatalf("personality = %q", personality)
	}
}

func TestGenerateIdentity_FallsBackOnFailure(t *testing.T) {
	gen := &fakeGen{err: errors.New("all providers down")}
	name, personality := GenerateIdentity(context.Background(), gen)
	if name == "" || personality == "" {
		t.Fatal("fallback identity must never be empty")
	}
}

func TestGenerateIdentity_FallsBackOnProse(t *testing.T) {
	gen := &fakeGen{texts: []string{"I would rather not answer in JSON today."}}
	name, personality := GenerateIdentity(context.Background(), gen)
	if name == "" || personality == "" {
		t.Fatal("fallback identity must never be empty")
	}
}

func TestEnsureCommunity_CreatesContrarianAndFills(t *testing.T) {
	store := &fakeStore{}
	gen := &fakeGen{texts: []string{`{"name": "Echo-1", "personality": "An echo"}`}}

	agents, err := EnsureCommunity(context.Background(), store, gen, 3, discardLogger())
	if err != nil {
		t.Fatalf("EnsureCommunity: %v", err)
	}

	var contrarians int
	for _, a := range agents {
		if a.IsContrarian {
			contrarians++
			if a.Name != "Prometheus-X" {
				t.Fatalf("contrarian name = %q", a.Name)
			}
		}
	}
	if contrarians != 1 {
		t.Fatalf("contrarians = %d, want 1", contrarians)
	}
	if len(agents) != 3 {
		t.Fatalf("agents = %d, want 3", len(agents))
	}
}

func TestEnsureCommunity_MarksExistingTraits(t *testing.T) {
	store := &fakeStore{}
	if _, err := store.CreateAgent(context.Background(), "Prometheus-X", "rebel", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateAgent(context.Background(), "Research-99", "Loves research above all", nil); err != nil {
		t.Fatal(err)
	}

	agents, err := EnsureCommunity(context.Background(), store, &fakeGen{texts: []string{"{}"}}, 2, discardLogger())
	if err != nil {
		t.Fatalf("EnsureCommunity: %v", err)
	}

	byName := map[string]bool{}
	for _, a := range agents {
		if a.Name == "Prometheus-X" && !a.IsContrarian {
			t.Fatal("existing contrarian not flagged")
		}
		if strings.HasPrefix(a.Name, "Research") && !a.IsResearcher {
			t.Fatal("research personality not flagged")
		}
		byName[a.Name] = true
	}
	if !byName["Prometheus-X"] {
		t.Fatal("contrarian missing from result")
	}
}
