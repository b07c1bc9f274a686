package site_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"github.com/amaguregi/folio/internal/content"
	"github.com/amaguregi/folio/internal/site"
	"github.com/amaguregi/folio/internal/testutil"
)

// fixtureTree writes a small but complete content tree: two home slides, a
// reel, nine photography items (two listing pages) and one storyboard item.
func fixtureTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeJSON := func(rel string, v any) {
		t.Helper()
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	writeJSON("home/home1.json", content.HomeImage{ImageName: "First", Src: "first.jpg"})
	writeJSON("home/home2.json", content.HomeImage{ImageName: "Second", Src: "second.jpg"})
	writeJSON("reel/reel.json", content.Reel{ReelName: "Showreel", Src: "reel.mp4"})

	thumbs := make([]content.ThumbEntry, 0, 9)
	for i := 1; i <= 9; i++ {
		title := fmt.Sprintf("Photo %d", i)
		thumbs = append(thumbs, content.ThumbEntry{Title: title, ThumbURL: fmt.Sprintf("thumb%d.jpg", i)})
		writeJSON(fmt.Sprintf("photography/photography-%d/photography-%d.json", i, i),
			content.PhotographyItem{Title: title, Description: "d", Image: fmt.Sprintf("img%d.jpg", i)})
	}
	writeJSON("photography/photography_thumbs.json", thumbs)

	writeJSON("storyboard/storyboard_thumbs.json", []content.ThumbEntry{{Title: "Boards", ThumbURL: "b.jpg"}})
	writeJSON("storyboard/storyboard-1/storyboard-1.json", content.StoryboardItem{
		Title:       "Boards",
		Description: "storyboard description",
		Images:      []content.StoryboardImage{{URL: "p1.jpg", Name: "Panel 1", Description: "opening"}},
	})

	return root
}

func build(t *testing.T, contentRoot string) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "website")
	gen := site.New(site.Config{
		ContentRoot: contentRoot,
		OutputRoot:  out,
		CacheBust:   "test-token",
	}, content.NewStore(contentRoot, nil), nil)
	got, err := gen.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got != out {
		t.Fatalf("Build returned %s, want %s", got, out)
	}
	return out
}

func parsePage(t *testing.T, path string) *goquery.Document {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return doc
}

func TestBuildProducesFixedLayout(t *testing.T) {
	out := build(t, fixtureTree(t))

	for _, rel := range []string{
		"index.html",
		"reel.html",
		"styles.css",
		"photography/photography-list-1.html",
		"photography/photography-list-2.html",
		"storyboard/storyboard-list-1.html",
		"storyboard/pages/Boards-1.html",
	} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing output file %s: %v", rel, err)
		}
	}

	// Nine items at eight per page: no third listing page.
	if _, err := os.Stat(filepath.Join(out, "photography", "photography-list-3.html")); !os.IsNotExist(err) {
		t.Errorf("unexpected third listing page, stat err = %v", err)
	}
}

func TestHomeAndReelUsePlainStylesheet(t *testing.T) {
	out := build(t, fixtureTree(t))

	for _, rel := range []string{"index.html", "reel.html"} {
		doc := parsePage(t, filepath.Join(out, rel))
		href, ok := doc.Find(`link[rel="stylesheet"]`).Attr("href")
		if !ok {
			t.Fatalf("%s has no stylesheet link", rel)
		}
		if href != "styles.css" {
			t.Errorf("%s stylesheet href = %q, want plain styles.css", rel, href)
		}
	}
}

func TestListingPagesCacheBustAndOrdinals(t *testing.T) {
	out := build(t, fixtureTree(t))

	page1 := parsePage(t, filepath.Join(out, "photography", "photography-list-1.html"))
	if href, _ := page1.Find(`link[rel="stylesheet"]`).Attr("href"); href != "../styles.css?v=test-token" {
		t.Errorf("listing stylesheet href = %q", href)
	}
	if n := page1.Find("a.photo-card-link").Length(); n != 8 {
		t.Errorf("page 1 has %d cards, want 8", n)
	}

	page2 := parsePage(t, filepath.Join(out, "photography", "photography-list-2.html"))
	if n := page2.Find("a.photo-card-link").Length(); n != 1 {
		t.Errorf("page 2 has %d cards, want 1", n)
	}

	// The ninth thumb sits first on page two: ordinal (2-1)*8 + 0 + 1 = 9.
	href, ok := page2.Find("a.photo-card-link").First().Attr("href")
	if !ok {
		t.Fatal("page 2 card has no href")
	}
	if href != "/photography/pages/Photo-9-9.html" {
		t.Errorf("page 2 first card href = %q, want /photography/pages/Photo-9-9.html", href)
	}
}

func TestDetailPagesCacheBustAndContent(t *testing.T) {
	out := build(t, fixtureTree(t))

	detail := parsePage(t, filepath.Join(out, "photography", "pages", "Photo-3-3.html"))
	if href, _ := detail.Find(`link[rel="stylesheet"]`).Attr("href"); href != "../../styles.css?v=test-token" {
		t.Errorf("detail stylesheet href = %q", href)
	}

	board := parsePage(t, filepath.Join(out, "storyboard", "pages", "Boards-1.html"))
	if !strings.Contains(board.Text(), "storyboard description") {
		t.Error("storyboard detail page is missing the item description")
	}
	if !strings.Contains(board.Text(), "Panel 1") {
		t.Error("storyboard detail page is missing the panel name")
	}
}

func TestPaginationLinks(t *testing.T) {
	out := build(t, fixtureTree(t))

	page1 := parsePage(t, filepath.Join(out, "photography", "photography-list-1.html"))
	if page1.Find(`a[href="/photography/photography-list-2.html"]`).Length() == 0 {
		t.Error("page 1 has no link to page 2")
	}

	page2 := parsePage(t, filepath.Join(out, "photography", "photography-list-2.html"))
	if page2.Find(`a[href="/photography/photography-list-1.html"]`).Length() == 0 {
		t.Error("page 2 has no link back to page 1")
	}
}

func TestBuildRequiresThumbsIndex(t *testing.T) {
	root := fixtureTree(t)
	if err := os.Remove(filepath.Join(root, "photography", "photography_thumbs.json")); err != nil {
		t.Fatal(err)
	}

	gen := site.New(site.Config{
		ContentRoot: root,
		OutputRoot:  filepath.Join(t.TempDir(), "website"),
		CacheBust:   "x",
	}, content.NewStore(root, nil), nil)
	if _, err := gen.Build(); err == nil {
		t.Fatal("Build without thumbs index should fail")
	}
}

func TestBuildRequiresReel(t *testing.T) {
	root := fixtureTree(t)
	if err := os.Remove(filepath.Join(root, "reel", "reel.json")); err != nil {
		t.Fatal(err)
	}

	gen := site.New(site.Config{
		ContentRoot: root,
		OutputRoot:  filepath.Join(t.TempDir(), "website"),
		CacheBust:   "x",
	}, content.NewStore(root, nil), nil)
	if _, err := gen.Build(); err == nil {
		t.Fatal("Build without reel record should fail")
	}
}

func TestBuildSkipsMalformedItem(t *testing.T) {
	root := fixtureTree(t)
	bad := filepath.Join(root, "photography", "photography-4", "photography-4.json")
	if err := os.WriteFile(bad, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}

	logger := &testutil.DummyLogger{}
	out := filepath.Join(t.TempDir(), "website")
	gen := site.New(site.Config{
		ContentRoot: root,
		OutputRoot:  out,
		CacheBust:   "test-token",
	}, content.NewStore(root, nil), logger)
	if _, err := gen.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if logger.WarnCount() == 0 {
		t.Error("skipping a malformed item should log a warning")
	}

	if _, err := os.Stat(filepath.Join(out, "photography", "pages", "Photo-4-4.html")); !os.IsNotExist(err) {
		t.Errorf("malformed item should be skipped, stat err = %v", err)
	}
	// Its neighbors still render.
	if _, err := os.Stat(filepath.Join(out, "photography", "pages", "Photo-5-5.html")); err != nil {
		t.Errorf("intact item missing: %v", err)
	}
}

func TestVerifyLinks(t *testing.T) {
	out := build(t, fixtureTree(t))

	dangling, err := site.VerifyLinks(out)
	if err != nil {
		t.Fatalf("VerifyLinks: %v", err)
	}
	if len(dangling) != 0 {
		t.Errorf("fresh build has dangling links: %v", dangling)
	}

	// Removing a detail page makes its listing link dangle.
	if err := os.Remove(filepath.Join(out, "photography", "pages", "Photo-3-3.html")); err != nil {
		t.Fatal(err)
	}
	dangling, err = site.VerifyLinks(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(dangling) != 1 || !strings.Contains(dangling[0], "Photo-3-3.html") {
		t.Errorf("dangling = %v, want the removed detail page", dangling)
	}
}
