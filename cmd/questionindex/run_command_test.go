package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"questionindex/internal/question"
)

func TestRunWithoutChangedFiles(t *testing.T) {
	env := setupCLITestEnv(t, "")
	t.Setenv("GITHUB_REPOSITORY", "alice/chem")

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Considered 0 path(s)")
	requireContains(t, out, "No stores touched")

	entries, err := os.ReadDir(env.workspace)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty workspace, got %d entries", len(entries))
	}
}

func TestRunWritesStores(t *testing.T) {
	env := setupCLITestEnv(t, "")
	t.Setenv("GITHUB_REPOSITORY", "alice/chem")
	t.Setenv("CHANGED_FILES", strings.Join([]string{
		"./addition_reaction/images/hard/diagram.svg",
		"addition_reaction/images/hard/diagram.svg",
		"docs/readme.md",
	}, "\n"))

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "1 added, 1 duplicate(s), 1 skipped")
	requireContains(t, out, "Wrote addition_reaction/hard.json (1 records, 1 new)")

	data, err := os.ReadFile(filepath.Join(env.workspace, "addition_reaction", "hard.json"))
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	var records []question.Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("decode store: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("unexpected records: %+v", records)
	}
	want := "https://alice.github.io/chem/addition_reaction/images/hard/diagram.svg"
	if records[0].QuestionURL != want {
		t.Fatalf("unexpected url: got %q want %q", records[0].QuestionURL, want)
	}

	// A second run over the same list adds nothing.
	out, _, err = runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	requireContains(t, out, "0 added, 2 duplicate(s)")
}

func TestRunMalformedRepositoryFails(t *testing.T) {
	env := setupCLITestEnv(t, "")
	t.Setenv("GITHUB_REPOSITORY", "alice")
	t.Setenv("CHANGED_FILES", "p/images/easy/a.png")

	_, _, err := runCLI(t, []string{"run"}, env.configPath)
	if !errors.Is(err, question.ErrMalformedRepository) {
		t.Fatalf("expected malformed repository error, got %v", err)
	}
}

func TestRunDryRunJSON(t *testing.T) {
	env := setupCLITestEnv(t, "")
	t.Setenv("GITHUB_REPOSITORY", "alice/chem")
	t.Setenv("CHANGED_FILES", "p/images/easy/a.png\n")

	out, _, err := runCLI(t, []string{"run", "--dry-run", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var summary struct {
		DryRun     bool           `json:"dry_run"`
		Considered int            `json:"considered"`
		Added      int            `json:"added"`
		SkippedBy  map[string]int `json:"skipped_by"`
	}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary %q: %v", out, err)
	}
	if !summary.DryRun || summary.Considered != 2 || summary.Added != 1 || summary.SkippedBy["empty"] != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(env.workspace, "p", "easy.json")); !os.IsNotExist(err) {
		t.Fatalf("dry run should not write, stat err=%v", err)
	}
}

func TestRunEnvFile(t *testing.T) {
	env := setupCLITestEnv(t, "")
	os.Unsetenv("CHANGED_FILES")
	os.Unsetenv("GITHUB_REPOSITORY")
	dotenv := filepath.Join(env.baseDir, "ci.env")
	if err := os.WriteFile(dotenv, []byte("GITHUB_REPOSITORY=bob/bio\nCHANGED_FILES=cells/images/easy/x.gif\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("CHANGED_FILES")
		os.Unsetenv("GITHUB_REPOSITORY")
	})

	if _, _, err := runCLI(t, []string{"run", "--env-file", dotenv}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(env.workspace, "cells", "easy.json"))
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	requireContains(t, string(data), "https://bob.github.io/bio/cells/images/easy/x.gif")
}

func TestRunRefusesWhenLocked(t *testing.T) {
	env := setupCLITestEnv(t, "")
	if err := os.MkdirAll(env.stateDir, 0o755); err != nil {
		t.Fatalf("mkdir state: %v", err)
	}
	lock := flock.New(filepath.Join(env.stateDir, "questionindex.lock"))
	ok, err := lock.TryLock()
	if err != nil || !ok {
		t.Fatalf("take lock: ok=%v err=%v", ok, err)
	}
	defer lock.Unlock()

	_, _, err = runCLI(t, []string{"run"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "holds the lock") {
		t.Fatalf("expected lock error, got %v", err)
	}
}

func TestRunMissingWorkspaceFailsPreflight(t *testing.T) {
	env := setupCLITestEnv(t, "")
	if err := os.RemoveAll(env.workspace); err != nil {
		t.Fatalf("remove workspace: %v", err)
	}
	_, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "preflight failed") {
		t.Fatalf("expected preflight error, got %v", err)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t, "[history]\nenabled = true\n")
	t.Setenv("GITHUB_REPOSITORY", "alice/chem")
	t.Setenv("CHANGED_FILES", "p/images/easy/a.png\np/images/hard/b.png")

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "alice/chem")
	requireContains(t, out, "Repository")

	out, _, err = runCLI(t, []string{"history", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("history --json: %v", err)
	}
	var runs []struct {
		Added         int `json:"added"`
		StoresWritten int `json:"stores_written"`
	}
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 1 || runs[0].Added != 2 || runs[0].StoresWritten != 2 {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, "")
	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "Run history is disabled")
}
