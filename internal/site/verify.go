package site

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// VerifyLinks walks the generated listing pages and checks that every detail
// link they carry resolves to a file in the output tree. A dangling link
// usually means the thumbs index and the detail folders have drifted apart
// (the numbering invariant is the operator's responsibility, so this is a
// warning surface, not a build failure).
func VerifyLinks(outputRoot string) ([]string, error) {
	var dangling []string

	err := filepath.WalkDir(outputRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || !strings.Contains(entry.Name(), "-list-") || !strings.HasSuffix(entry.Name(), ".html") {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		doc, parseErr := goquery.NewDocumentFromReader(f)
		f.Close()
		if parseErr != nil {
			return fmt.Errorf("parsing %s: %w", path, parseErr)
		}

		doc.Find("a.photo-card-link").Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok || !strings.HasPrefix(href, "/") {
				return
			}
			target := filepath.Join(outputRoot, filepath.FromSlash(strings.TrimPrefix(href, "/")))
			if _, statErr := os.Stat(target); statErr != nil {
				dangling = append(dangling, href)
			}
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dangling, nil
}
