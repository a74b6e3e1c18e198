package indexer

import (
	"time"

	"questionindex/internal/history"
)

// SkipReason names why a changed path produced no record.
type SkipReason string

const (
	SkipEmpty     SkipReason = "empty"
	SkipExtension SkipReason = "extension"
	SkipExcluded  SkipReason = "excluded"
	SkipShape     SkipReason = "path_shape"
)

// StoreSummary reports one touched store.
type StoreSummary struct {
	Path      string `json:"path"`
	Records   int    `json:"records"`
	Added     int    `json:"added"`
	Written   bool   `json:"written"`
	Recovered bool   `json:"recovered,omitempty"`
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID         string             `json:"run_id"`
	StartedAt     time.Time          `json:"started_at"`
	FinishedAt    time.Time          `json:"finished_at"`
	Repository    string             `json:"repository"`
	DryRun        bool               `json:"dry_run"`
	Considered    int                `json:"considered"`
	SkippedBy     map[SkipReason]int `json:"skipped_by,omitempty"`
	Added         int                `json:"added"`
	Duplicates    int                `json:"duplicates"`
	StoresWritten int                `json:"stores_written"`
	Stores        []StoreSummary     `json:"stores"`
	Additions     []history.Addition `json:"-"`
}

// Skipped returns the total number of skipped paths.
func (s *Summary) Skipped() int {
	total := 0
	for _, n := range s.SkippedBy {
		total += n
	}
	return total
}

func (s *Summary) skip(reason SkipReason) {
	if s.SkippedBy == nil {
		s.SkippedBy = make(map[SkipReason]int)
	}
	s.SkippedBy[reason]++
}

func (s *Summary) historyRun() history.Run {
	return history.Run{
		ID:            s.RunID,
		StartedAt:     s.StartedAt,
		FinishedAt:    s.FinishedAt,
		Repository:    s.Repository,
		Considered:    s.Considered,
		Skipped:       s.Skipped(),
		Added:         s.Added,
		Duplicates:    s.Duplicates,
		StoresWritten: s.StoresWritten,
		Additions:     s.Additions,
	}
}
