package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent_NewestFirst(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for _, kind := range []string{"blog", "forum", "rest"} {
		if err := j.Record(ctx, 1, kind, "detail "+kind); err != nil {
			t.Fatalf("Record: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	records, err := j.Recent(ctx, 1, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	if records[0].Kind != "rest" || records[2].Kind != "blog" {
		t.Fatalf("order = %q, %q, %q, want newest first", records[0].Kind, records[1].Kind, records[2].Kind)
	}
	if records[0].At.IsZero() {
		t.Fatal("timestamp not parsed")
	}
}

func TestRecent_ScopedToAgentAndLimited(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := j.Record(ctx, 1, "blog", ""); err != nil {
			t.Fatal(err)
		}
	}
	if err := j.Record(ctx, 2, "debate", ""); err != nil {
		t.Fatal(err)
	}

	records, err := j.Recent(ctx, 1, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	for _, r := range records {
		if r.Kind != "blog" {
			t.Fatalf("leaked record from another agent: %+v", r)
		}
	}
}

func TestRecent_DefaultsLimit(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		if err := j.Record(ctx, 1, "forum", ""); err != nil {
			t.Fatal(err)
		}
	}
	records, err := j.Recent(ctx, 1, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(records) != 10 {
		t.Fatalf("len = %d, want default limit 10", len(records))
	}
}

func TestPrune_RemovesOldRows(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	if _, err := j.db.ExecContext(ctx,
		"INSERT INTO actions (id, agent_id, kind, detail, created_at) VALUES (?, ?, ?, ?, ?)",
		ulid.Make().String(), 1, "blog", "", old.Format(time.RFC3339Nano),
	); err != nil {
		t.Fatal(err)
	}
	if err := j.Record(ctx, 1, "forum", ""); err != nil {
		t.Fatal(err)
	}

	pruned, err := j.Prune(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 1 {
		t.Fatalf("pruned = %d, want 1", pruned)
	}

	records, err := j.Recent(ctx, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].Kind != "forum" {
		t.Fatalf("records = %+v, want only the fresh one", records)
	}
}
