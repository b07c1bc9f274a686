package content

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/amaguregi/folio/internal/logging"
)

// Store owns the on-disk JSON content records under a single root directory.
// It is the only component that writes content files; the site generator
// reads through it and never mutates.
type Store struct {
	root   string
	logger logging.Logger
}

// NewStore creates a Store rooted at root. The directory is not required to
// exist yet; List on a missing root returns an empty slice.
func NewStore(root string, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Store{root: root, logger: logger}
}

// Root returns the content root directory.
func (s *Store) Root() string {
	return s.root
}

// List recursively enumerates every .json file under the content root.
// Paths are absolute and sorted lexicographically so repeated runs see the
// same order.
func (s *Store) List() ([]string, error) {
	var out []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			out = append(out, path)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing content files: %w", err)
	}
	sort.Strings(out)
	return out, nil
}

// Read returns the raw bytes of a content file after checking that they are
// valid JSON. Missing files map to ErrNotFound, syntax problems to ErrParse.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrParse, path)
	}
	return data, nil
}

// ReadInto reads and decodes a content file into v.
func (s *Store) ReadInto(path string, v any) error {
	data, err := s.Read(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return nil
}

// Write serializes record with two-space indentation and writes it
// atomically (temp file + rename) so a crash never leaves a truncated file.
// encoding/json gives stable key order for structs and sorted keys for maps,
// which keeps diffs of content files meaningful.
func (s *Store) Write(path string, record any) error {
	if v, ok := record.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding record for %s: %v", ErrInvalidInput, path, err)
	}
	return atomicWriteFile(path, append(data, '\n'), 0644)
}

// WriteRaw writes pre-serialized content verbatim after checking that it is
// valid JSON. Used by the editor (which round-trips raw text) and by undo,
// which must restore byte-identical content.
func (s *Store) WriteRaw(path string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("%w: %s", ErrInvalidInput, path)
	}
	// Undo may restore a file whose item folder was cleaned up with it.
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating parent folder: %w", err)
	}
	return atomicWriteFile(path, data, 0644)
}

// Create writes a new record for the category, failing with ErrAlreadyExists
// if the target path is taken. name is the file name including the .json
// suffix; for photography and storyboard the per-item folder (file name minus
// suffix) is created first. Returns the path of the new file.
func (s *Store) Create(category Category, name string, record any) (string, error) {
	if !strings.HasSuffix(name, ".json") {
		return "", fmt.Errorf("%w: file name %q must end in .json", ErrInvalidInput, name)
	}

	var path string
	switch category {
	case CategoryHome:
		path = filepath.Join(s.root, "home", name)
	case CategoryPhotography, CategoryStoryboard:
		folder := strings.TrimSuffix(name, ".json")
		path = filepath.Join(s.root, string(category), folder, name)
	default:
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}

	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating item folder: %w", err)
	}
	if err := s.Write(path, record); err != nil {
		return "", err
	}
	s.logger.Info("content file created", logging.F("path", path), logging.F("category", category))
	return path, nil
}

// Delete removes a content file. Thumbs indexes are not deletable through
// this path. If the parent folder is a numbered item folder and becomes
// empty, it is removed as well; failure to do so is not an error.
func (s *Store) Delete(path string) error {
	if strings.HasSuffix(filepath.Base(path), "_thumbs.json") {
		return fmt.Errorf("%w: %s is an index artifact", ErrProtected, path)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	base := filepath.Base(dir)
	if strings.HasPrefix(base, "photography-") || strings.HasPrefix(base, "storyboard-") {
		// Best effort: a non-empty folder is left alone.
		if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
			if err := os.Remove(dir); err != nil {
				s.logger.Warn("removing empty item folder", logging.F("dir", dir), logging.F("error", err.Error()))
			}
		}
	}
	return nil
}

var (
	homeFilePattern = regexp.MustCompile(`^home(\d+)\.json$`)
	itemDirPattern  = map[Category]*regexp.Regexp{
		CategoryPhotography: regexp.MustCompile(`^photography-(\d+)$`),
		CategoryStoryboard:  regexp.MustCompile(`^storyboard-(\d+)$`),
	}
)

// NextOrdinal scans the category for numbered files or folders and returns
// max+1, or 1 when none exist. Numbering is not contiguous: deletes leave
// gaps and gaps are never reused.
func (s *Store) NextOrdinal(category Category) (int, error) {
	dir := filepath.Join(s.root, string(category))
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, fmt.Errorf("scanning %s: %w", dir, err)
	}

	max := 0
	for _, entry := range entries {
		var m []string
		switch category {
		case CategoryHome:
			if entry.IsDir() {
				continue
			}
			m = homeFilePattern.FindStringSubmatch(entry.Name())
		case CategoryPhotography, CategoryStoryboard:
			if !entry.IsDir() {
				continue
			}
			m = itemDirPattern[category].FindStringSubmatch(entry.Name())
		default:
			return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
		}
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max + 1, nil
}

// atomicWriteFile writes data to a temp file in the target directory and
// renames it into place.
func atomicWriteFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		tmp.Close()
		os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
