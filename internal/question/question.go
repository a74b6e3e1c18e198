// Package question builds the descriptor records written to question stores.
package question

import (
	"errors"
	"fmt"
	"strings"

	"questionindex/internal/imagepath"
)

// DefaultText is the placeholder question text.
const DefaultText = "Solve the problem ..."

// ErrMalformedRepository is returned when a repository identifier is not of
// the form owner/repo.
var ErrMalformedRepository = errors.New("repository must be of the form owner/repo")

// Record is one entry of a question store. QuestionURL is the unique key.
type Record struct {
	QuestionURL      string `json:"question_url"`
	QuestionLevel    string `json:"question_level"`
	QuestionCategory string `json:"question_category"`
	QuestionText     string `json:"question_text"`
}

// Repository identifies the hosting repository.
type Repository struct {
	Owner string
	Name  string
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// PagesURL returns the GitHub Pages site root for the repository.
func (r Repository) PagesURL() string {
	return "https://" + r.Owner + ".github.io/" + r.Name
}

// ParseRepository parses an owner/repo identifier.
func ParseRepository(value string) (Repository, error) {
	owner, name, found := strings.Cut(strings.TrimSpace(value), "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, fmt.Errorf("%w: got %q", ErrMalformedRepository, value)
	}
	return Repository{Owner: owner, Name: name}, nil
}

// Builder turns classified image paths into records.
type Builder struct {
	baseURL string
	text    string
}

// NewBuilder returns a builder for repo. A non-empty baseURL replaces the
// repository's Pages URL as the question URL prefix; an empty text falls back
// to DefaultText.
func NewBuilder(repo Repository, baseURL, text string) *Builder {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = repo.PagesURL()
	}
	if text == "" {
		text = DefaultText
	}
	return &Builder{baseURL: base, text: text}
}

// Build constructs the record for c. Level and category both carry the label.
func (b *Builder) Build(c imagepath.Classified) Record {
	return Record{
		QuestionURL:      b.URL(c),
		QuestionLevel:    c.Label,
		QuestionCategory: c.Label,
		QuestionText:     b.text,
	}
}

// URL returns <base>/<problem>/images/<label>/<file>. Segments are used
// verbatim so URLs stay identical to ones already present in stores.
func (b *Builder) URL(c imagepath.Classified) string {
	return strings.Join([]string{b.baseURL, c.ProblemFolder, imagepath.ImagesDir, c.Label, c.ImageFileName}, "/")
}
