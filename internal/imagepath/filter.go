package imagepath

import (
	"fmt"
	"path"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
)

// Filter accepts paths by extension and rejects paths matching exclude globs.
type Filter struct {
	fold       cases.Caser
	extensions map[string]struct{}
	exclude    []string
}

// NewFilter builds a filter. Extensions are compared case-insensitively and
// may be given with or without the leading dot.
func NewFilter(extensions, exclude []string) (*Filter, error) {
	f := &Filter{
		fold:       cases.Fold(),
		extensions: make(map[string]struct{}, len(extensions)),
	}
	for _, ext := range extensions {
		if ext == "" {
			continue
		}
		if ext[0] != '.' {
			ext = "." + ext
		}
		f.extensions[f.fold.String(ext)] = struct{}{}
	}
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
		f.exclude = append(f.exclude, pattern)
	}
	return f, nil
}

// AcceptsExtension reports whether p ends in one of the accepted extensions.
func (f *Filter) AcceptsExtension(p string) bool {
	ext := path.Ext(p)
	if ext == "" {
		return false
	}
	_, ok := f.extensions[f.fold.String(ext)]
	return ok
}

// Excluded reports whether the normalized path matches an exclude glob, and
// returns the matching pattern.
func (f *Filter) Excluded(p string) (string, bool) {
	for _, pattern := range f.exclude {
		if doublestar.MatchUnvalidated(pattern, p) {
			return pattern, true
		}
	}
	return "", false
}
