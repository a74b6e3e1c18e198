package imagepath

import (
	"path"
	"strings"
)

// ImagesDir is the directory name that must sit between a problem folder and
// its label directories.
const ImagesDir = "images"

const minSegments = 4

// Classified holds the fields extracted from a question image path.
type Classified struct {
	ProblemFolder string
	Label         string
	ImageFileName string
}

// StoreName returns the store file for the classified path, relative to the
// workspace: <problem>/<label>.json.
func (c Classified) StoreName() string {
	return path.Join(c.ProblemFolder, c.Label+".json")
}

// Classify extracts the problem folder, label, and image file name from p.
// It reports false unless p has at least four segments and the third from
// last is "images". Problem folders and labels of "." or ".." are rejected so
// a store path never leaves the workspace.
func Classify(p string) (Classified, bool) {
	segments := Segments(p)
	n := len(segments)
	if n < minSegments || segments[n-3] != ImagesDir {
		return Classified{}, false
	}
	c := Classified{
		ProblemFolder: segments[n-4],
		Label:         segments[n-2],
		ImageFileName: segments[n-1],
	}
	if isDotSegment(c.ProblemFolder) || isDotSegment(c.Label) {
		return Classified{}, false
	}
	return c, true
}

func isDotSegment(s string) bool {
	return s == "." || s == ".."
}

// Segments splits p on "/" and drops empty segments.
func Segments(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}

// Normalize strips any leading "./" prefixes.
func Normalize(p string) string {
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}
