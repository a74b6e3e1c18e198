package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	older := Run{
		ID:         "run-1",
		StartedAt:  base,
		FinishedAt: base.Add(time.Second),
		Repository: "alice/chem",
		Considered: 2,
		Added:      1,
		Duplicates: 1,
		Additions: []Addition{
			{Store: "addition_reaction/easy.json", QuestionURL: "https://alice.github.io/chem/addition_reaction/images/easy/fig1.png"},
		},
		StoresWritten: 1,
	}
	newer := Run{
		ID:         "run-2",
		StartedAt:  base.Add(time.Hour),
		FinishedAt: base.Add(time.Hour + time.Second),
		Repository: "alice/chem",
		Skipped:    3,
	}
	for _, run := range []Run{older, newer} {
		if err := l.Record(ctx, run); err != nil {
			t.Fatalf("Record(%s): %v", run.ID, err)
		}
	}

	runs, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("unexpected run count: %d", len(runs))
	}
	if runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Fatalf("expected newest first, got %s, %s", runs[0].ID, runs[1].ID)
	}
	if !runs[1].StartedAt.Equal(base) {
		t.Fatalf("unexpected started_at: %v", runs[1].StartedAt)
	}
	if runs[1].Added != 1 || runs[1].Duplicates != 1 || runs[1].StoresWritten != 1 {
		t.Fatalf("unexpected counters: %+v", runs[1])
	}

	additions, err := l.Additions(ctx, "run-1")
	if err != nil {
		t.Fatalf("Additions: %v", err)
	}
	if len(additions) != 1 || additions[0].Store != "addition_reaction/easy.json" {
		t.Fatalf("unexpected additions: %+v", additions)
	}

	limited, err := l.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "run-2" {
		t.Fatalf("unexpected limited runs: %+v", limited)
	}
}

func TestRecordRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	run := Run{ID: "same", StartedAt: time.Now(), FinishedAt: time.Now()}
	if err := l.Record(ctx, run); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record(ctx, run); err == nil {
		t.Fatal("expected duplicate run id to fail")
	}
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")
	l, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l.Record(ctx, Run{ID: "r", StartedAt: time.Now(), FinishedAt: time.Now()}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = l.Close()

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	runs, err := reopened.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected persisted run, got %d", len(runs))
	}
}
