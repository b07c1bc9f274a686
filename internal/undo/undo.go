package undo

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultCapacity bounds the history: only the most recent deletions can be
// reversed. Older entries are evicted oldest-first.
const DefaultCapacity = 10

// EntryType distinguishes the two destructive edits the log can reverse.
type EntryType string

const (
	// EntryFile is a whole-file deletion.
	EntryFile EntryType = "file"

	// EntryArrayItem is a single element removed from a JSON array field.
	EntryArrayItem EntryType = "arrayItem"
)

// Entry captures everything needed to reverse one deletion. Payload holds
// the exact pre-delete bytes for file deletions; Value holds a deep copy of
// the removed element for array-item deletions.
type Entry struct {
	ID        string          `json:"id"`
	Type      EntryType       `json:"type"`
	Path      string          `json:"path"`
	Field     string          `json:"field,omitempty"`
	Index     int             `json:"index,omitempty"`
	Payload   []byte          `json:"-"`
	Value     json.RawMessage `json:"-"`
	Timestamp time.Time       `json:"timestamp"`

	// AssetURLs are object-store URLs found in the deleted content, kept so
	// the caller can offer a remote cleanup cascade.
	AssetURLs []string `json:"assetUrls,omitempty"`
}

// Log is the in-memory, session-scoped history of deletions. It is not
// persisted: restarting the editor forgets everything.
type Log struct {
	mu       sync.Mutex
	entries  []*Entry
	capacity int
}

// NewLog creates a Log. capacity <= 0 selects DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// RecordFileDelete stores the pre-delete bytes of a whole file. Call it
// before removing the file so the payload is exact.
func (l *Log) RecordFileDelete(path string, payload []byte, assetURLs []string) *Entry {
	buf := make([]byte, len(payload))
	copy(buf, payload)
	return l.push(&Entry{
		ID:        uuid.New().String(),
		Type:      EntryFile,
		Path:      path,
		Payload:   buf,
		Timestamp: time.Now(),
		AssetURLs: assetURLs,
	})
}

// RecordArrayItemDelete stores a deep copy of an array element removed from
// the file at path, along with its original index. field names the object
// field holding the array; empty means the file's top level is the array.
// The copy goes through JSON so later mutations of the caller's value
// cannot reach it.
func (l *Log) RecordArrayItemDelete(path, field string, index int, value any, assetURLs []string) (*Entry, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return l.push(&Entry{
		ID:        uuid.New().String(),
		Type:      EntryArrayItem,
		Path:      path,
		Field:     field,
		Index:     index,
		Value:     raw,
		Timestamp: time.Now(),
		AssetURLs: assetURLs,
	}), nil
}

func (l *Log) push(e *Entry) *Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
	return e
}

// Take removes and returns the entry with the given ID. An evicted or
// already-consumed entry is simply absent.
func (l *Log) Take(id string) (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, e := range l.entries {
		if e.ID == id {
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return e, true
		}
	}
	return nil, false
}

// Latest removes and returns the most recent entry.
func (l *Log) Latest() (*Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return nil, false
	}
	e := l.entries[len(l.entries)-1]
	l.entries = l.entries[:len(l.entries)-1]
	return e, true
}

// Entries returns a snapshot, newest first, for display.
func (l *Log) Entries() []*Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*Entry, 0, len(l.entries))
	for i := len(l.entries) - 1; i >= 0; i-- {
		out = append(out, l.entries[i])
	}
	return out
}

// Len reports how many deletions are currently reversible.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
