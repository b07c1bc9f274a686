package changes

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/amaguregi/folio/internal/logging"
)

// ChangeType classifies one entry of a change report.
type ChangeType string

const (
	ChangeNew      ChangeType = "new"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// Change is one changed path, relative to the compared root.
type Change struct {
	Type ChangeType `json:"type"`
	Path string     `json:"path"`

	// Chunks summarize what changed inside a modified file. Only the tree
	// diff policy fills them; mtime detection never reads file contents.
	Chunks []Chunk `json:"chunks,omitempty"`
}

// Report is the result of a detection pass. Changes are sorted by path so
// the list is stable for display and logging.
type Report struct {
	HasChanges bool     `json:"hasChanges"`
	Changes    []Change `json:"changes"`
}

// Detector decides whether a rebuild is warranted and describes what
// changed. Two policies exist: the mtime shortcut used before publishing
// (fast, blind to deletions) and a full tree diff used when a reference
// copy of the content exists.
type Detector struct {
	logger logging.Logger
}

// NewDetector creates a Detector.
func NewDetector(logger logging.Logger) *Detector {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Detector{logger: logger}
}

// ByModTime compares every content file's modification time against the
// output root's. A missing output root yields a single synthetic entry
// meaning "initial build". This policy cannot detect deletions: a removed
// content file leaves no file to be newer than the output.
func (d *Detector) ByModTime(contentRoot, outputRoot string) (*Report, error) {
	outInfo, err := os.Stat(outputRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return &Report{
				HasChanges: true,
				Changes:    []Change{{Type: ChangeNew, Path: "initial build"}},
			}, nil
		}
		return nil, fmt.Errorf("stat output root: %w", err)
	}

	files, err := listFiles(contentRoot)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, rel := range files {
		info, err := os.Stat(filepath.Join(contentRoot, filepath.FromSlash(rel)))
		if err != nil {
			// The file vanished mid-scan; nothing to report for it.
			d.logger.Warn("stat during change scan", logging.F("path", rel), logging.F("error", err.Error()))
			continue
		}
		if info.ModTime().After(outInfo.ModTime()) {
			report.Changes = append(report.Changes, Change{Type: ChangeModified, Path: rel})
		}
	}
	report.HasChanges = len(report.Changes) > 0
	return report, nil
}

// ByTreeDiff compares two directory trees byte for byte. A path present only
// under sourceRoot is new, only under refRoot deleted, in both with
// different bytes modified. Comparison is exact: formatting-only differences
// in JSON register as changes.
func (d *Detector) ByTreeDiff(sourceRoot, refRoot string) (*Report, error) {
	sourceFiles, err := listFiles(sourceRoot)
	if err != nil {
		return nil, err
	}
	refFiles, err := listFiles(refRoot)
	if err != nil {
		return nil, err
	}

	inRef := make(map[string]bool, len(refFiles))
	for _, rel := range refFiles {
		inRef[rel] = true
	}

	report := &Report{}
	seen := make(map[string]bool, len(sourceFiles))
	for _, rel := range sourceFiles {
		seen[rel] = true
		if !inRef[rel] {
			report.Changes = append(report.Changes, Change{Type: ChangeNew, Path: rel})
			continue
		}
		a, err := os.ReadFile(filepath.Join(sourceRoot, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}
		b, err := os.ReadFile(filepath.Join(refRoot, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}
		if !bytes.Equal(a, b) {
			report.Changes = append(report.Changes, Change{
				Type:   ChangeModified,
				Path:   rel,
				Chunks: Summarize(b, a),
			})
		}
	}
	for _, rel := range refFiles {
		if !seen[rel] {
			report.Changes = append(report.Changes, Change{Type: ChangeDeleted, Path: rel})
		}
	}

	sort.Slice(report.Changes, func(i, j int) bool {
		return report.Changes[i].Path < report.Changes[j].Path
	})
	report.HasChanges = len(report.Changes) > 0
	return report, nil
}

// listFiles returns every file under root as a sorted, slash-separated
// relative path. A missing root yields an empty list.
func listFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(out)
	return out, nil
}
