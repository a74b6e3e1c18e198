// Package store persists question records as indented JSON arrays, one file
// per problem folder and label.
//
// A store is loaded at most once per run, merged in memory, and written back
// once at the end. Records are keyed by question URL: Upsert never adds a
// second record with a URL already present. Existing elements are written
// back byte-for-byte apart from indentation. A file that is not a JSON array
// is treated as an empty store so a damaged file never blocks a run; the
// warning is logged.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"questionindex/internal/logging"
	"questionindex/internal/question"
)

// Store is one question store file held in memory.
type Store struct {
	path string
	// elements holds every array element in file order. Loaded elements keep
	// their original bytes so unknown keys, odd value types, and nulls are
	// written back unchanged.
	elements []json.RawMessage
	urls     map[string]struct{}
	added    int
	// recovered is set when the file existed but was not a JSON array.
	recovered bool
}

// Load reads the store at path. A missing file, or one that is not a JSON
// array, yields an empty store; any other read failure is returned.
func Load(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Store{path: path, urls: make(map[string]struct{})}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("store does not exist yet", logging.String(logging.FieldStore, path))
			return s, nil
		}
		return nil, fmt.Errorf("read store %s: %w", path, err)
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		logging.WarnWithContext(logger, "store is not a valid JSON array; starting empty",
			"store_parse_failed",
			logging.String(logging.FieldStore, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix or remove the file; it is rewritten if new records are added"),
			logging.String(logging.FieldImpact, "existing records in this file are dropped on save"))
		s.recovered = true
		return s, nil
	}

	s.elements = elements
	for _, el := range elements {
		if url, ok := elementURL(el); ok {
			s.urls[url] = struct{}{}
		}
	}
	logger.Debug("loaded store",
		logging.String(logging.FieldStore, path),
		logging.Int("record_count", len(elements)))
	return s, nil
}

// elementURL returns the question_url of an array element when the element
// is an object whose question_url is a string.
func elementURL(el json.RawMessage) (string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(el, &fields); err != nil || fields == nil {
		return "", false
	}
	raw, ok := fields["question_url"]
	if !ok {
		return "", false
	}
	var url string
	if err := json.Unmarshal(raw, &url); err != nil {
		return "", false
	}
	return url, true
}

// lenientRecord decodes the string-valued record fields of an element and
// ignores everything else. Non-object elements report false.
func lenientRecord(el json.RawMessage) (question.Record, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(el, &fields); err != nil || fields == nil {
		return question.Record{}, false
	}
	str := func(key string) string {
		var v string
		_ = json.Unmarshal(fields[key], &v)
		return v
	}
	return question.Record{
		QuestionURL:      str("question_url"),
		QuestionLevel:    str("question_level"),
		QuestionCategory: str("question_category"),
		QuestionText:     str("question_text"),
	}, true
}

// Path returns the store file location.
func (s *Store) Path() string { return s.path }

// Records returns the object elements in file order as records. Fields that
// are not strings come back empty and non-object elements are left out.
func (s *Store) Records() []question.Record {
	out := make([]question.Record, 0, len(s.elements))
	for _, el := range s.elements {
		if rec, ok := lenientRecord(el); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of array elements.
func (s *Store) Len() int { return len(s.elements) }

// Added returns how many records were appended since Load.
func (s *Store) Added() int { return s.added }

// Recovered reports whether the file existed but was not a JSON array.
func (s *Store) Recovered() bool { return s.recovered }

// Contains reports whether a record with the given URL is present.
func (s *Store) Contains(url string) bool {
	_, ok := s.urls[url]
	return ok
}

// Upsert appends rec unless a record with the same question URL exists. It
// reports whether rec was added.
func (s *Store) Upsert(rec question.Record) bool {
	if s.Contains(rec.QuestionURL) {
		return false
	}
	s.elements = append(s.elements, marshalRecord(rec))
	s.urls[rec.QuestionURL] = struct{}{}
	s.added++
	return true
}

// Save writes the store as indented JSON. An empty store is not written and
// Save reports false. The write goes to a temp file in the same directory that
// is then renamed over the target, so readers never observe a partial file.
// An existing file keeps its permission bits.
func (s *Store) Save() (bool, error) {
	if len(s.elements) == 0 {
		return false, nil
	}

	data, err := encode(s.elements)
	if err != nil {
		return false, fmt.Errorf("marshal store %s: %w", s.path, err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return false, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("rename temp file: %w", err)
	}
	return true, nil
}

// Marshal encodes records as a two-space indented JSON array followed by a
// newline. HTML characters in URLs are left unescaped.
func Marshal(records []question.Record) ([]byte, error) {
	if records == nil {
		records = []question.Record{}
	}
	return encode(records)
}

// marshalRecord encodes rec compactly without HTML escaping. A Record holds
// only strings, so encoding cannot fail.
func marshalRecord(rec question.Record) json.RawMessage {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(rec)
	return bytes.TrimRight(buf.Bytes(), "\n")
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
