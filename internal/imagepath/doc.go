// Package imagepath decides which changed repository paths are question images
// and extracts the problem folder, label, and file name from them.
//
// Paths must look like <problem>/images/<label>/<file>, optionally nested
// deeper on the left. Only the last four segments are inspected; no case or
// separator normalization happens beyond stripping a leading "./".
package imagepath
