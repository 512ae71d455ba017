package material

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/conn-castle/rigkit/internal/errkind"
)

// Scanner finds model descriptors under a folder.
type Scanner struct {
	root     string
	filters  []string
	excludes []string
	log      *slog.Logger
}

// NewScanner returns a scanner for settings.TargetFolder resolved against base.
func NewScanner(base string, settings Settings, log *slog.Logger) *Scanner {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	root := settings.TargetFolder
	if !filepath.IsAbs(root) {
		root = filepath.Join(base, root)
	}
	return &Scanner{root: root, filters: settings.FileFilters, excludes: settings.ExcludePatterns, log: log}
}

// Root is the folder scanned.
func (s *Scanner) Root() string { return s.root }

// Scan returns every descriptor matching a filter at any depth, sorted and
// without duplicates. A filter without a slash matches file names anywhere; a
// filter with one is a full doublestar pattern relative to the root. Files whose
// name contains an exclude pattern are skipped.
func (s *Scanner) Scan() ([]string, error) {
	info, err := os.Stat(s.root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: target folder %s", errkind.ErrNotFound, s.root)
	}
	fsys := os.DirFS(s.root)
	seen := map[string]bool{}
	var out []string
	for _, filter := range s.filters {
		pattern := filter
		if !strings.Contains(pattern, "/") {
			pattern = "**/" + pattern
		}
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("%w: file filter %q", errkind.ErrMalformed, filter)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errkind.IOf("scan "+s.root, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			seen[m] = true
			if s.excluded(path.Base(m)) {
				s.log.Debug("skipping excluded file", "path", m)
				continue
			}
			out = append(out, filepath.Join(s.root, filepath.FromSlash(m)))
		}
	}
	slices.Sort(out)
	s.log.Info("scanned models", "root", s.root, "count", len(out))
	return out, nil
}

func (s *Scanner) excluded(name string) bool {
	for _, p := range s.excludes {
		if p != "" && strings.Contains(name, p) {
			return true
		}
	}
	return false
}
