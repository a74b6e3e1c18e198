package store

import (
	"fmt"
	"log/slog"

	"questionindex/internal/logging"
)

// Result describes what Flush did with one store.
type Result struct {
	Path    string
	Records int
	Added   int
	Written bool
	// Recovered is set when the file held invalid JSON before this run.
	Recovered bool
}

// Set lazily loads stores by path and remembers first-touch order.
type Set struct {
	logger *slog.Logger
	stores map[string]*Store
	order  []string
}

// NewSet returns an empty set.
func NewSet(logger *slog.Logger) *Set {
	return &Set{
		logger: logging.NewComponentLogger(logger, "store"),
		stores: make(map[string]*Store),
	}
}

// Get returns the store at path, loading it on first use.
func (s *Set) Get(path string) (*Store, error) {
	if st, ok := s.stores[path]; ok {
		return st, nil
	}
	st, err := Load(path, s.logger)
	if err != nil {
		return nil, err
	}
	s.stores[path] = st
	s.order = append(s.order, path)
	return st, nil
}

// Len returns the number of touched stores.
func (s *Set) Len() int { return len(s.order) }

// Results reports the current state of every touched store without writing.
func (s *Set) Results() []Result {
	results := make([]Result, 0, len(s.order))
	for _, path := range s.order {
		st := s.stores[path]
		results = append(results, Result{
			Path:      path,
			Records:   st.Len(),
			Added:     st.Added(),
			Recovered: st.Recovered(),
		})
	}
	return results
}

// Flush saves every touched store once, in first-touch order. Empty stores
// are skipped. The first write error aborts the flush.
func (s *Set) Flush() ([]Result, error) {
	results := s.Results()
	for i := range results {
		written, err := s.stores[results[i].Path].Save()
		if err != nil {
			return results[:i], fmt.Errorf("save store: %w", err)
		}
		results[i].Written = written
		if written {
			s.logger.Debug("wrote store",
				logging.String(logging.FieldStore, results[i].Path),
				logging.Int("record_count", results[i].Records),
				logging.Int("added", results[i].Added))
		}
	}
	return results, nil
}
