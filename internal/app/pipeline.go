package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/amaguregi/folio/internal/changes"
	"github.com/amaguregi/folio/internal/content"
	"github.com/amaguregi/folio/internal/history"
	"github.com/amaguregi/folio/internal/logging"
	"github.com/amaguregi/folio/internal/mirror"
	"github.com/amaguregi/folio/internal/site"
	"github.com/amaguregi/folio/internal/undo"
)

// Step identifies a phase of a publish or deploy pass.
type Step string

const (
	StepBuilding  Step = "building"
	StepListing   Step = "listing"
	StepDeleting  Step = "deleting"
	StepUploading Step = "uploading"
	StepComplete  Step = "complete"
	StepError     Step = "error"
)

// Event is one progress notification. Events arrive in operation order and
// every pass ends with exactly one of StepComplete or StepError.
type Event struct {
	Step     Step   `json:"step"`
	Message  string `json:"message"`
	Uploaded int    `json:"uploaded,omitempty"`
	Total    int    `json:"total,omitempty"`
}

// ProgressFunc receives Events. Implementations must not block for long;
// the pipeline calls them inline.
type ProgressFunc func(Event)

// RemoteStore is the mirror capability plus URL-addressed delete for the
// editor's asset cleanup cascade.
type RemoteStore interface {
	mirror.ObjectStore
	DeleteByURL(ctx context.Context, rawURL string) error
}

// Pipeline wires the content store, change detector, site generator, remote
// mirror, undo log and run ledger behind the operations the editor and CLI
// invoke. One Pipeline serves one operator; nothing here is safe against
// concurrent publishes.
type Pipeline struct {
	cfg      *Config
	store    *content.Store
	detector *changes.Detector
	undoLog  *undo.Log
	ledger   *history.Store
	remote   RemoteStore
	logger   logging.Logger
	notify   ProgressFunc
}

// NewPipeline builds a Pipeline from cfg, opening the run ledger. The
// remote store is attached separately (SetRemote) because the editor works
// fine without credentials until a deploy is requested.
func NewPipeline(cfg *Config, logger logging.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	if err := os.MkdirAll(filepath.Dir(cfg.HistoryPath), 0755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}
	ledger, err := history.Open(cfg.HistoryPath, logger.With("history"))
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:      cfg,
		store:    content.NewStore(cfg.ContentRoot, logger.With("content")),
		detector: changes.NewDetector(logger.With("changes")),
		undoLog:  undo.NewLog(cfg.UndoCapacity),
		ledger:   ledger,
		logger:   logger,
	}, nil
}

// Close releases the ledger.
func (p *Pipeline) Close() error {
	return p.ledger.Close()
}

// Store exposes the content store for the editor surface.
func (p *Pipeline) Store() *content.Store {
	return p.store
}

// UndoLog exposes the deletion history for display.
func (p *Pipeline) UndoLog() *undo.Log {
	return p.undoLog
}

// SetRemote attaches the object store used by Deploy and the asset cascade.
func (p *Pipeline) SetRemote(r RemoteStore) {
	p.remote = r
}

// Remote returns the attached object store, or nil when none is configured.
func (p *Pipeline) Remote() RemoteStore {
	return p.remote
}

// SetNotify registers the progress observer.
func (p *Pipeline) SetNotify(fn ProgressFunc) {
	p.notify = fn
}

func (p *Pipeline) emit(ev Event) {
	if p.notify != nil {
		p.notify(ev)
	}
}

// CheckChanges reports what changed since the last successful publish. Once
// a snapshot of the content tree exists it diffs against that, which catches
// deletions and yields per-file chunk summaries; before the first publish
// (or with snapshots disabled) it falls back to modification times.
func (p *Pipeline) CheckChanges() (*changes.Report, error) {
	if snap := p.cfg.SnapshotRoot; snap != "" {
		if _, err := os.Stat(snap); err == nil {
			return p.detector.ByTreeDiff(p.cfg.ContentRoot, snap)
		}
	}
	return p.detector.ByModTime(p.cfg.ContentRoot, p.cfg.OutputRoot)
}

// Publish regenerates the site tree from the content store. The change
// report captured beforehand goes into the run ledger. Returns the output
// root on success.
func (p *Pipeline) Publish(ctx context.Context) (string, error) {
	started := time.Now()

	var changesJSON string
	if report, err := p.CheckChanges(); err == nil {
		if enc, err := json.Marshal(report.Changes); err == nil {
			changesJSON = string(enc)
		}
	}

	siteCfg := p.cfg.SiteCfg
	siteCfg.ContentRoot = p.cfg.ContentRoot
	siteCfg.OutputRoot = p.cfg.OutputRoot
	gen := site.New(siteCfg, p.store, p.logger.With("site"))
	gen.SetNotify(func(message string) {
		p.emit(Event{Step: StepBuilding, Message: message})
	})

	out, err := gen.Build()
	if err != nil {
		p.recordRun(ctx, history.KindPublish, started, changesJSON, 0, err)
		p.emit(Event{Step: StepError, Message: err.Error()})
		return "", err
	}

	if dangling, verr := site.VerifyLinks(out); verr != nil {
		p.logger.Warn("link verification failed", logging.F("error", verr.Error()))
	} else if len(dangling) > 0 {
		p.logger.Warn("listing pages link to missing detail pages",
			logging.F("count", len(dangling)), logging.F("links", dangling))
	}

	if err := p.saveSnapshot(); err != nil {
		p.logger.Warn("saving content snapshot", logging.F("error", err.Error()))
	}

	p.recordRun(ctx, history.KindPublish, started, changesJSON, 0, nil)
	p.emit(Event{Step: StepComplete, Message: "publish complete"})
	return out, nil
}

// saveSnapshot replaces the reference copy of the content tree that the
// tree-diff change policy compares against. The copy lands in a sibling
// directory first so a crash mid-copy never leaves a truncated snapshot.
func (p *Pipeline) saveSnapshot() error {
	snap := p.cfg.SnapshotRoot
	if snap == "" {
		return nil
	}
	tmp := snap + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return err
	}
	if err := copyTree(p.cfg.ContentRoot, tmp); err != nil {
		return err
	}
	if err := os.RemoveAll(snap); err != nil {
		return err
	}
	return os.Rename(tmp, snap)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
}

// Deploy mirrors the generated output tree to the remote bucket. The site
// must have been published first and the remote store attached.
func (p *Pipeline) Deploy(ctx context.Context) (int, error) {
	started := time.Now()

	fail := func(err error) (int, error) {
		p.recordRun(ctx, history.KindDeploy, started, "", 0, err)
		p.emit(Event{Step: StepError, Message: err.Error()})
		return 0, err
	}

	if p.remote == nil {
		return fail(mirror.ErrNotConfigured)
	}
	if _, err := os.Stat(p.cfg.OutputRoot); err != nil {
		return fail(fmt.Errorf("site not published yet: %w", err))
	}

	m := mirror.New(p.remote, p.logger.With("mirror"), func(step, message string, uploaded, total int) {
		p.emit(Event{Step: Step(step), Message: message, Uploaded: uploaded, Total: total})
	})
	uploaded, err := m.Sync(ctx, p.cfg.OutputRoot)
	if err != nil {
		p.recordRun(ctx, history.KindDeploy, started, "", uploaded, err)
		p.emit(Event{Step: StepError, Message: err.Error()})
		return uploaded, err
	}

	p.recordRun(ctx, history.KindDeploy, started, "", uploaded, nil)
	p.emit(Event{Step: StepComplete, Message: fmt.Sprintf("deployment complete, %d file(s) uploaded", uploaded)})
	return uploaded, nil
}

func (p *Pipeline) recordRun(ctx context.Context, kind string, started time.Time, changesJSON string, uploaded int, runErr error) {
	run := &history.Run{
		Kind:          kind,
		StartedAt:     started,
		FinishedAt:    time.Now(),
		Status:        history.StatusOK,
		Changes:       changesJSON,
		FilesUploaded: uploaded,
	}
	if runErr != nil {
		run.Status = history.StatusFailed
		run.Error = runErr.Error()
	}
	if err := p.ledger.Add(ctx, run); err != nil {
		p.logger.Warn("recording run", logging.F("error", err.Error()))
	}
}

// RecentRuns returns the latest ledger entries, newest first.
func (p *Pipeline) RecentRuns(ctx context.Context, limit int) ([]history.Run, error) {
	return p.ledger.Recent(ctx, limit)
}

// DeleteFile removes a content file, capturing its exact bytes in the undo
// log first. With cascade, object-store URLs found in the file are deleted
// remotely as well; cascade failures are logged and never block the local
// delete.
func (p *Pipeline) DeleteFile(ctx context.Context, path string, cascade bool) (*undo.Entry, error) {
	payload, err := p.store.Read(path)
	if err != nil && !errors.Is(err, content.ErrParse) {
		return nil, err
	}
	if payload == nil {
		// Even a malformed file can be deleted and restored verbatim.
		payload, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", content.ErrNotFound, path)
		}
	}

	assetURLs := content.ExtractObjectURLs(payload)
	if err := p.store.Delete(path); err != nil {
		return nil, err
	}
	entry := p.undoLog.RecordFileDelete(path, payload, assetURLs)

	if cascade {
		p.cascadeAssetDeletes(ctx, assetURLs)
	}
	return entry, nil
}

// DeleteArrayItem removes one element from a JSON array inside the file at
// path. field names the object field holding the array; empty means the
// file's top level is the array. The removed element is kept in the undo
// log with its original index.
func (p *Pipeline) DeleteArrayItem(ctx context.Context, path, field string, index int, cascade bool) (*undo.Entry, error) {
	data, err := p.store.Read(path)
	if err != nil {
		return nil, err
	}

	var removed any
	var updated any

	if field == "" {
		var arr []any
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil, fmt.Errorf("%w: %s is not an array", content.ErrInvalidInput, path)
		}
		if index < 0 || index >= len(arr) {
			return nil, fmt.Errorf("%w: index %d out of range", content.ErrInvalidInput, index)
		}
		removed = arr[index]
		updated = append(arr[:index], arr[index+1:]...)
	} else {
		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("%w: %s is not an object", content.ErrInvalidInput, path)
		}
		arr, ok := obj[field].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: field %q is not an array", content.ErrInvalidInput, field)
		}
		if index < 0 || index >= len(arr) {
			return nil, fmt.Errorf("%w: index %d out of range", content.ErrInvalidInput, index)
		}
		removed = arr[index]
		obj[field] = append(arr[:index], arr[index+1:]...)
		updated = obj
	}

	removedJSON, err := json.Marshal(removed)
	if err != nil {
		return nil, fmt.Errorf("encoding removed item: %w", err)
	}
	assetURLs := content.ExtractObjectURLs(removedJSON)

	entry, err := p.undoLog.RecordArrayItemDelete(path, field, index, removed, assetURLs)
	if err != nil {
		return nil, err
	}
	if err := p.store.Write(path, updated); err != nil {
		// The write never happened; drop the useless entry again.
		p.undoLog.Take(entry.ID)
		return nil, err
	}

	if cascade {
		p.cascadeAssetDeletes(ctx, assetURLs)
	}
	return entry, nil
}

func (p *Pipeline) cascadeAssetDeletes(ctx context.Context, urls []string) {
	if len(urls) == 0 {
		return
	}
	if p.remote == nil {
		p.logger.Warn("asset cascade requested but remote store not configured",
			logging.F("urls", len(urls)))
		return
	}
	for _, u := range urls {
		if err := p.remote.DeleteByURL(ctx, u); err != nil {
			p.logger.Warn("cascade delete failed", logging.F("url", u), logging.F("error", err.Error()))
		}
	}
}

// Undo consumes one entry from the deletion history and performs the
// inverse operation. File deletes are restored byte for byte; array items
// are spliced back at their recorded index. If the array shrank in the
// meantime the item lands at the end; positions are not re-validated.
func (p *Pipeline) Undo(id string) error {
	entry, ok := p.undoLog.Take(id)
	if !ok {
		return fmt.Errorf("%w: undo entry %s", content.ErrNotFound, id)
	}
	return p.applyUndo(entry)
}

// UndoLatest reverses the most recent deletion without the caller naming an
// entry ID and returns the consumed entry.
func (p *Pipeline) UndoLatest() (*undo.Entry, error) {
	entry, ok := p.undoLog.Latest()
	if !ok {
		return nil, fmt.Errorf("%w: nothing to undo", content.ErrNotFound)
	}
	return entry, p.applyUndo(entry)
}

func (p *Pipeline) applyUndo(entry *undo.Entry) error {
	switch entry.Type {
	case undo.EntryFile:
		return p.store.WriteRaw(entry.Path, entry.Payload)

	case undo.EntryArrayItem:
		data, err := p.store.Read(entry.Path)
		if err != nil {
			return err
		}
		var item any
		if err := json.Unmarshal(entry.Value, &item); err != nil {
			return fmt.Errorf("decoding undo payload: %w", err)
		}

		if entry.Field == "" {
			var arr []any
			if err := json.Unmarshal(data, &arr); err != nil {
				return fmt.Errorf("%w: %s is not an array", content.ErrInvalidInput, entry.Path)
			}
			arr = spliceIn(arr, entry.Index, item)
			return p.store.Write(entry.Path, arr)
		}

		var obj map[string]any
		if err := json.Unmarshal(data, &obj); err != nil {
			return fmt.Errorf("%w: %s is not an object", content.ErrInvalidInput, entry.Path)
		}
		arr, _ := obj[entry.Field].([]any)
		obj[entry.Field] = spliceIn(arr, entry.Index, item)
		return p.store.Write(entry.Path, obj)
	}
	return fmt.Errorf("unknown undo entry type %q", entry.Type)
}

func spliceIn(arr []any, index int, item any) []any {
	if index < 0 {
		index = 0
	}
	if index > len(arr) {
		index = len(arr)
	}
	out := make([]any, 0, len(arr)+1)
	out = append(out, arr[:index]...)
	out = append(out, item)
	out = append(out, arr[index:]...)
	return out
}
