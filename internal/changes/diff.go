package changes

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Chunk is one added or removed span of a modified file, for display in the
// editor next to the change list.
type Chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

// Summarize computes a character-level diff between the old and new bytes of
// a modified file and returns the non-equal spans, semantically cleaned up.
// Whitespace-only spans are dropped.
func Summarize(base, head []byte) []Chunk {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(base), string(head), true)
	diffs = dmp.DiffCleanupSemantic(diffs)

	chunks := make([]Chunk, 0, len(diffs))
	for _, d := range diffs {
		var kind string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = "added"
		case diffmatchpatch.DiffDelete:
			kind = "removed"
		case diffmatchpatch.DiffEqual:
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		chunks = append(chunks, Chunk{Type: kind, Content: d.Text})
	}
	return chunks
}
