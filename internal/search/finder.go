// Package search walks a directory tree looking for entries whose base name
// matches the typed input, bounded by depth and match count.
package search

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"beacon/internal/core/models"
)

var errLimit = errors.New("match limit reached")

type Finder struct {
	root  string
	depth int
}

func NewFinder(root string, depth int) *Finder {
	return &Finder{root: root, depth: depth}
}

// Search returns at most limit entries under the root whose name matches
// pattern. A pattern without glob metacharacters matches the name exactly.
// Directories deeper than the depth bound are not descended into.
func (f *Finder) Search(ctx context.Context, pattern string, limit int) ([]models.Match, error) {
	var matches []models.Match
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rel, err := filepath.Rel(f.root, p)
		if err != nil || rel == "." {
			return nil
		}
		depth := strings.Count(rel, string(os.PathSeparator)) + 1
		if depth > f.depth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		ok, err := filepath.Match(pattern, d.Name())
		if err != nil {
			// Malformed pattern: nothing can match.
			return filepath.SkipAll
		}
		if !ok {
			return nil
		}
		matches = append(matches, models.Match{Path: p, Kind: probe(p, d)})
		if len(matches) >= limit {
			return errLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errLimit) {
		return matches, err
	}
	return matches, nil
}

// probe decides how a match should be opened: directories are entered,
// text files are edited, anything else falls back to its directory.
func probe(p string, d fs.DirEntry) models.MatchKind {
	if d.IsDir() {
		return models.MatchDir
	}
	f, err := os.Open(p)
	if err != nil {
		return models.MatchBinary
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, _ := f.Read(buf)
	if strings.HasPrefix(http.DetectContentType(buf[:n]), "text/") {
		return models.MatchText
	}
	return models.MatchBinary
}
