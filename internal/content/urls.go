package content

import (
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/amaguregi/folio/internal/logging"
)

// Object-store URL detection is an explicit rule set, not reflective
// sniffing: a URL counts as object-store-hosted when its host matches the
// virtual-hosted bucket pattern below.
var objectURLPattern = regexp.MustCompile(`https?://[a-zA-Z0-9\-]+\.s3[a-zA-Z0-9\-.]*\.amazonaws\.com/[^\s"'}]+`)

// imageExtensions enumerates the extensions the editor treats as images.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".svg":  true,
}

// IsObjectURL reports whether raw points at an object-store bucket.
func IsObjectURL(raw string) bool {
	return objectURLPattern.MatchString(raw)
}

// IsImageURL reports whether raw looks like an image by extension.
func IsImageURL(raw string) bool {
	ext := strings.ToLower(path.Ext(strings.SplitN(raw, "?", 2)[0]))
	return imageExtensions[ext]
}

// ExtractObjectURLs returns every object-store URL found in raw serialized
// content, in order of appearance.
func ExtractObjectURLs(data []byte) []string {
	return objectURLPattern.FindAllString(string(data), -1)
}

// AssetURL is one object-store URL found in the content, flagged when it
// points at an image so the editor can offer a preview.
type AssetURL struct {
	URL   string `json:"url"`
	Image bool   `json:"image"`
}

// URLsByFile maps a content file path to the object-store URLs it contains.
type URLsByFile struct {
	File string     `json:"file"`
	URLs []AssetURL `json:"urls"`
}

// FindObjectURLs scans every content file for object-store URLs. Unreadable
// files are skipped; the scan works on raw bytes so malformed JSON still
// yields its URLs.
func (s *Store) FindObjectURLs() ([]URLsByFile, error) {
	files, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []URLsByFile
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			s.logger.Warn("skipping unreadable file during url scan", logging.F("path", file), logging.F("error", err.Error()))
			continue
		}
		if urls := ExtractObjectURLs(data); len(urls) > 0 {
			assets := make([]AssetURL, len(urls))
			for i, u := range urls {
				assets[i] = AssetURL{URL: u, Image: IsImageURL(u)}
			}
			out = append(out, URLsByFile{File: file, URLs: assets})
		}
	}
	return out, nil
}
