package changes_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaguregi/folio/internal/changes"
)

func writeFile(t *testing.T, root, rel, body string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestByModTimeInitialBuild(t *testing.T) {
	d := changes.NewDetector(nil)
	content := t.TempDir()
	writeFile(t, content, "home/home1.json", "{}")

	report, err := d.ByModTime(content, filepath.Join(t.TempDir(), "missing-output"))
	if err != nil {
		t.Fatalf("ByModTime: %v", err)
	}
	if !report.HasChanges {
		t.Fatal("missing output root should mean changes")
	}
	if len(report.Changes) != 1 || report.Changes[0].Type != changes.ChangeNew {
		t.Errorf("want one synthetic new entry, got %v", report.Changes)
	}
}

func TestByModTimeDetectsNewerContent(t *testing.T) {
	d := changes.NewDetector(nil)
	content := t.TempDir()
	output := t.TempDir()

	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(output, old, old); err != nil {
		t.Fatal(err)
	}

	stale := writeFile(t, content, "home/home1.json", "{}")
	if err := os.Chtimes(stale, old.Add(-time.Hour), old.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	writeFile(t, content, "home/home2.json", "{}")

	report, err := d.ByModTime(content, output)
	if err != nil {
		t.Fatalf("ByModTime: %v", err)
	}
	if !report.HasChanges {
		t.Fatal("newer content file should mean changes")
	}
	if len(report.Changes) != 1 || report.Changes[0].Path != "home/home2.json" {
		t.Errorf("got %v, want only home/home2.json", report.Changes)
	}
}

func TestByModTimeNoChanges(t *testing.T) {
	d := changes.NewDetector(nil)
	content := t.TempDir()
	output := t.TempDir()

	old := time.Now().Add(-time.Hour)
	path := writeFile(t, content, "home/home1.json", "{}")
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	report, err := d.ByModTime(content, output)
	if err != nil {
		t.Fatalf("ByModTime: %v", err)
	}
	if report.HasChanges {
		t.Errorf("no newer files but report claims changes: %v", report.Changes)
	}
}

func TestByTreeDiff(t *testing.T) {
	d := changes.NewDetector(nil)
	source := t.TempDir()
	ref := t.TempDir()

	writeFile(t, source, "a.json", `{"v":1}`)
	writeFile(t, ref, "a.json", `{"v":1}`)

	writeFile(t, source, "b.json", `{"v":2}`)
	writeFile(t, ref, "b.json", `{"v":3}`)

	writeFile(t, source, "c.json", `{}`)
	writeFile(t, ref, "d.json", `{}`)

	report, err := d.ByTreeDiff(source, ref)
	if err != nil {
		t.Fatalf("ByTreeDiff: %v", err)
	}
	if !report.HasChanges {
		t.Fatal("trees differ but report claims no changes")
	}

	want := map[string]changes.ChangeType{
		"b.json": changes.ChangeModified,
		"c.json": changes.ChangeNew,
		"d.json": changes.ChangeDeleted,
	}
	if len(report.Changes) != len(want) {
		t.Fatalf("got %d changes %v, want %d", len(report.Changes), report.Changes, len(want))
	}
	for _, c := range report.Changes {
		if want[c.Path] != c.Type {
			t.Errorf("%s classified as %s, want %s", c.Path, c.Type, want[c.Path])
		}
		if c.Type == changes.ChangeModified && len(c.Chunks) == 0 {
			t.Errorf("modified entry %s carries no chunk summary", c.Path)
		}
		if c.Type != changes.ChangeModified && len(c.Chunks) != 0 {
			t.Errorf("%s entry %s carries chunks: %v", c.Type, c.Path, c.Chunks)
		}
	}
}

// Identical trees must produce a quiet report. Reporting phantom changes
// would trigger needless publishes.
func TestByTreeDiffIdenticalTrees(t *testing.T) {
	d := changes.NewDetector(nil)
	source := t.TempDir()
	ref := t.TempDir()

	for _, root := range []string{source, ref} {
		writeFile(t, root, "home/home1.json", `{"imageName":"A","src":"a.jpg"}`)
		writeFile(t, root, "photography/photography-1/photography-1.json", `{"title":"T"}`)
	}

	report, err := d.ByTreeDiff(source, ref)
	if err != nil {
		t.Fatalf("ByTreeDiff: %v", err)
	}
	if report.HasChanges || len(report.Changes) != 0 {
		t.Errorf("identical trees reported changes: %v", report.Changes)
	}
}

func TestByTreeDiffChangesSortedByPath(t *testing.T) {
	d := changes.NewDetector(nil)
	source := t.TempDir()

	writeFile(t, source, "z.json", `{}`)
	writeFile(t, source, "a.json", `{}`)
	writeFile(t, source, "m.json", `{}`)

	report, err := d.ByTreeDiff(source, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(report.Changes); i++ {
		if report.Changes[i-1].Path > report.Changes[i].Path {
			t.Fatalf("changes not sorted: %v", report.Changes)
		}
	}
}
