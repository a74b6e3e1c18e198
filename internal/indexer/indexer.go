// Package indexer turns a list of changed repository paths into question
// store updates.
//
// Each path moves through: skip empty → extension filter → strip "./" →
// exclude globs → classify → build record → merge into its store. Every
// expected rejection is absorbed per path and counted; only unexpected
// failures (I/O, a malformed repository identifier) abort the run. Touched
// stores are written once after the whole list is consumed.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"questionindex/internal/config"
	"questionindex/internal/history"
	"questionindex/internal/imagepath"
	"questionindex/internal/logging"
	"questionindex/internal/question"
	"questionindex/internal/store"
)

// Input is the CI-provided work for one run.
type Input struct {
	ChangedFiles []string
	Repository   string
}

// Recorder persists run summaries. *history.Ledger satisfies it.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Option customizes an Indexer.
type Option func(*Indexer)

// WithRecorder records every non-dry run.
func WithRecorder(r Recorder) Option {
	return func(ix *Indexer) { ix.recorder = r }
}

// WithDryRun disables store writes and run recording.
func WithDryRun(dryRun bool) Option {
	return func(ix *Indexer) { ix.dryRun = dryRun }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(ix *Indexer) { ix.now = now }
}

// Indexer applies changed paths to question stores.
type Indexer struct {
	cfg      *config.Config
	logger   *slog.Logger
	filter   *imagepath.Filter
	recorder Recorder
	dryRun   bool
	now      func() time.Time
}

// New builds an indexer for cfg.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Indexer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("indexer requires config")
	}
	filter, err := imagepath.NewFilter(cfg.Filter.Extensions, cfg.Filter.Exclude)
	if err != nil {
		return nil, fmt.Errorf("build path filter: %w", err)
	}
	ix := &Indexer{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "indexer"),
		filter: filter,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix, nil
}

// Run processes in and returns what happened. Store paths in the summary are
// relative to the workspace.
func (ix *Indexer) Run(ctx context.Context, in Input) (*Summary, error) {
	summary := &Summary{
		RunID:      uuid.NewString(),
		StartedAt:  ix.now(),
		Repository: in.Repository,
		DryRun:     ix.dryRun,
	}
	logger := ix.logger.With(logging.String(logging.FieldCorrelationID, summary.RunID))
	logger.Debug("run started",
		logging.Int("changed_files", len(in.ChangedFiles)),
		logging.String("repository", in.Repository),
		logging.Bool("dry_run", ix.dryRun))

	stores := store.NewSet(logger)
	var builder *question.Builder

	for _, raw := range in.ChangedFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		summary.Considered++

		classified, reason, ok := ix.classify(raw)
		if !ok {
			summary.skip(reason)
			logger.Debug("skipped path",
				logging.String(logging.FieldPath, raw),
				logging.String(logging.FieldReason, string(reason)))
			continue
		}

		if builder == nil {
			repo, err := question.ParseRepository(in.Repository)
			if err != nil {
				return nil, fmt.Errorf("GITHUB_REPOSITORY: %w", err)
			}
			builder = question.NewBuilder(repo, ix.cfg.Site.BaseURL, ix.cfg.Site.QuestionText)
		}

		storeName := classified.StoreName()
		st, err := stores.Get(filepath.Join(ix.cfg.Paths.WorkspaceDir, filepath.FromSlash(storeName)))
		if err != nil {
			return nil, err
		}
		rec := builder.Build(classified)
		if st.Upsert(rec) {
			summary.Added++
			summary.Additions = append(summary.Additions, history.Addition{Store: storeName, QuestionURL: rec.QuestionURL})
			logger.Debug("added record",
				logging.String(logging.FieldStore, storeName),
				logging.String("question_url", rec.QuestionURL))
		} else {
			summary.Duplicates++
			logger.Debug("record already present",
				logging.String(logging.FieldStore, storeName),
				logging.String("question_url", rec.QuestionURL))
		}
	}

	var results []store.Result
	if ix.dryRun {
		results = stores.Results()
	} else {
		var err error
		results, err = stores.Flush()
		if err != nil {
			return nil, err
		}
	}
	for _, r := range results {
		summary.Stores = append(summary.Stores, ix.storeSummary(r))
		if r.Written {
			summary.StoresWritten++
		}
	}
	summary.FinishedAt = ix.now()

	if ix.recorder != nil && !ix.dryRun {
		if err := ix.recorder.Record(ctx, summary.historyRun()); err != nil {
			return nil, fmt.Errorf("record run history: %w", err)
		}
	}

	logger.Info("run complete",
		logging.Int("considered", summary.Considered),
		logging.Int("skipped", summary.Skipped()),
		logging.Int("added", summary.Added),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("stores_written", summary.StoresWritten),
		logging.Bool("dry_run", ix.dryRun))
	return summary, nil
}

// classify applies the per-path filters in order and reports why a path was
// rejected.
func (ix *Indexer) classify(raw string) (imagepath.Classified, SkipReason, bool) {
	if raw == "" {
		return imagepath.Classified{}, SkipEmpty, false
	}
	if !ix.filter.AcceptsExtension(raw) {
		return imagepath.Classified{}, SkipExtension, false
	}
	normalized := imagepath.Normalize(raw)
	if _, excluded := ix.filter.Excluded(normalized); excluded {
		return imagepath.Classified{}, SkipExcluded, false
	}
	classified, ok := imagepath.Classify(normalized)
	if !ok {
		return imagepath.Classified{}, SkipShape, false
	}
	return classified, "", true
}

func (ix *Indexer) storeSummary(r store.Result) StoreSummary {
	rel, err := filepath.Rel(ix.cfg.Paths.WorkspaceDir, r.Path)
	if err != nil {
		rel = r.Path
	}
	return StoreSummary{
		Path:      filepath.ToSlash(rel),
		Records:   r.Records,
		Added:     r.Added,
		Written:   r.Written,
		Recovered: r.Recovered,
	}
}
