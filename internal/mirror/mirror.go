package mirror

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/amaguregi/folio/internal/logging"
)

// maxDeleteBatch is the object-store limit on keys per delete call.
const maxDeleteBatch = 1000

// ObjectStore is the minimal remote capability the mirror needs: a flat
// key namespace inside one bucket.
type ObjectStore interface {
	// ListAll returns every key in the bucket, paging internally until the
	// listing is exhausted.
	ListAll(ctx context.Context) ([]string, error)

	// DeleteBatch removes up to maxDeleteBatch keys in one call.
	DeleteBatch(ctx context.Context, keys []string) error

	// Put uploads one object with the given content type.
	Put(ctx context.Context, key string, body []byte, contentType string) error

	// Delete removes a single object. Used by the editor's asset cleanup,
	// not by Sync.
	Delete(ctx context.Context, key string) error
}

// NotifyFunc receives mirror progress: one call per phase transition and one
// per uploaded file.
type NotifyFunc func(step, message string, uploaded, total int)

// Mirror makes a bucket's object set exactly equal a local directory tree.
// The reconciliation is a full replace: list everything, delete everything,
// upload everything. Deletes happen strictly before uploads, so the bucket
// is empty or partial while a sync is in flight; there is no atomic swap.
// A failed sync can leave the bucket mixed; the recovery path is simply to
// run Sync again, since the next pass clears whatever state was left.
type Mirror struct {
	store  ObjectStore
	logger logging.Logger
	notify NotifyFunc
}

// New creates a Mirror over the given object store.
func New(store ObjectStore, logger logging.Logger, notify NotifyFunc) *Mirror {
	if logger == nil {
		logger = logging.Nop{}
	}
	if notify == nil {
		notify = func(string, string, int, int) {}
	}
	return &Mirror{store: store, logger: logger, notify: notify}
}

// localFile pairs a file on disk with its bucket key (the slash-normalized
// path relative to the output root).
type localFile struct {
	path string
	key  string
}

// Sync replaces the bucket contents with the files under outputRoot and
// returns the number of files uploaded. Any remote failure aborts the pass.
func (m *Mirror) Sync(ctx context.Context, outputRoot string) (int, error) {
	if _, err := os.Stat(outputRoot); err != nil {
		return 0, fmt.Errorf("output root %s: %w", outputRoot, err)
	}

	m.notify("listing", "checking bucket contents", 0, 0)
	keys, err := m.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: listing bucket: %w", ErrRemoteOperation, err)
	}

	if len(keys) > 0 {
		m.notify("deleting", fmt.Sprintf("deleting %d existing object(s)", len(keys)), 0, 0)
		for start := 0; start < len(keys); start += maxDeleteBatch {
			end := start + maxDeleteBatch
			if end > len(keys) {
				end = len(keys)
			}
			if err := m.store.DeleteBatch(ctx, keys[start:end]); err != nil {
				return 0, fmt.Errorf("%w: deleting batch: %w", ErrRemoteOperation, err)
			}
		}
	}

	files, err := collectFiles(outputRoot)
	if err != nil {
		return 0, err
	}

	m.notify("uploading", "uploading site files", 0, len(files))
	uploaded := 0
	for _, file := range files {
		body, err := os.ReadFile(file.path)
		if err != nil {
			return uploaded, fmt.Errorf("reading %s: %w", file.path, err)
		}
		if err := m.store.Put(ctx, file.key, body, ContentTypeFor(file.path)); err != nil {
			return uploaded, fmt.Errorf("%w: uploading %s: %w", ErrRemoteOperation, file.key, err)
		}
		uploaded++
		m.notify("uploading", fmt.Sprintf("uploading files (%d/%d)", uploaded, len(files)), uploaded, len(files))
	}

	m.logger.Info("bucket mirrored", logging.F("files", uploaded))
	return uploaded, nil
}

func collectFiles(root string) ([]localFile, error) {
	var files []localFile
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
		files = append(files, localFile{path: path, key: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].key < files[j].key })
	return files, nil
}
