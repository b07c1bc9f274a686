package site

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "embed"

	"github.com/amaguregi/folio/internal/content"
	"github.com/amaguregi/folio/internal/logging"
)

//go:embed styles.css
var defaultStyles []byte

// Config controls one generation run.
type Config struct {
	// ContentRoot is the directory holding the JSON content records.
	ContentRoot string

	// OutputRoot is where the site tree is written.
	OutputRoot string

	// StylesPath optionally points at the stylesheet to publish as
	// styles.css. When empty the embedded default is used.
	StylesPath string

	// PerPage is the listing page size. 0 means the default of 8.
	PerPage int

	// CacheBust is the token appended to stylesheet links on listing and
	// detail pages (styles.css?v=<token>). When empty the wall clock at
	// build time is used, which matches prior releases but makes
	// regeneration non-reproducible; pass a fixed token (for instance a
	// content hash) for deterministic output.
	CacheBust string

	// SiteName and Tagline fill the navigation logo block.
	SiteName string
	Tagline  string

	// SiteTitle is the home page <title>.
	SiteTitle string

	// Copyright is the footer line.
	Copyright string
}

func (c *Config) applyDefaults() {
	if c.PerPage == 0 {
		c.PerPage = 8
	}
	if c.CacheBust == "" {
		c.CacheBust = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	if c.SiteName == "" {
		c.SiteName = "AITOR MAGUREGI"
	}
	if c.Tagline == "" {
		c.Tagline = "DIGITAL VISUAL ARTIST"
	}
	if c.SiteTitle == "" {
		c.SiteTitle = "Aitor Maguregi - Digital Visual Artist"
	}
	if c.Copyright == "" {
		c.Copyright = "©Aitor Maguregi 2025"
	}
}

// Generator renders the content store into the static site tree:
//
//	OutputRoot/
//	  index.html, reel.html, styles.css
//	  photography/photography-list-<n>.html
//	  photography/pages/<slug>-<n>.html
//	  storyboard/ (same shape)
//
// Generation is synchronous and deterministic apart from the cache-bust
// token. Missing required inputs (reel record, thumbs indexes) fail the
// whole run; a malformed per-item record only skips that item.
type Generator struct {
	cfg    Config
	store  *content.Store
	tmpl   *template.Template
	logger logging.Logger
	notify func(message string)
}

// New creates a Generator. store must be rooted at cfg.ContentRoot.
func New(cfg Config, store *content.Store, logger logging.Logger) *Generator {
	cfg.applyDefaults()
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Generator{cfg: cfg, store: store, tmpl: newTemplates(), logger: logger}
}

// SetNotify registers a callback fired once per generation phase.
func (g *Generator) SetNotify(fn func(message string)) {
	g.notify = fn
}

func (g *Generator) step(message string) {
	g.logger.Info(message)
	if g.notify != nil {
		g.notify(message)
	}
}

// Build generates the full site tree and returns the output root.
func (g *Generator) Build() (string, error) {
	if err := os.MkdirAll(g.cfg.OutputRoot, 0755); err != nil {
		return "", fmt.Errorf("creating output root: %w", err)
	}

	g.step("rendering home page")
	if err := g.buildHome(); err != nil {
		return "", err
	}

	g.step("publishing stylesheet")
	if err := g.writeStyles(); err != nil {
		return "", err
	}

	g.step("rendering reel page")
	if err := g.buildReel(); err != nil {
		return "", err
	}

	g.step("rendering photography pages")
	if err := g.buildCategory(content.CategoryPhotography); err != nil {
		return "", err
	}

	g.step("rendering storyboard pages")
	if err := g.buildCategory(content.CategoryStoryboard); err != nil {
		return "", err
	}

	return g.cfg.OutputRoot, nil
}

func (g *Generator) nav() navData {
	return navData{SiteName: g.cfg.SiteName, Tagline: g.cfg.Tagline}
}

// loadHomeImages reads content/home/*.json ordered by filename. Every home
// record is required to parse; the home page is not rendered partially.
func (g *Generator) loadHomeImages() ([]content.HomeImage, error) {
	dir := filepath.Join(g.cfg.ContentRoot, "home")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading home content: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	images := make([]content.HomeImage, 0, len(names))
	for _, name := range names {
		var img content.HomeImage
		if err := g.store.ReadInto(filepath.Join(dir, name), &img); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, nil
}

func (g *Generator) buildHome() error {
	images, err := g.loadHomeImages()
	if err != nil {
		return err
	}

	// The carousel script needs the same list the server-side markup was
	// rendered from.
	rawJSON, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("encoding home images: %w", err)
	}

	data := homeData{
		Title:      g.cfg.SiteTitle,
		Nav:        g.nav(),
		Copyright:  g.cfg.Copyright,
		ImagesJSON: template.JS(rawJSON),
	}
	for i, img := range images {
		data.Images = append(data.Images, homeImage{Name: img.ImageName, Src: img.Src, Active: i == 0})
	}

	return g.render("home", filepath.Join(g.cfg.OutputRoot, "index.html"), data)
}

func (g *Generator) writeStyles() error {
	styles := defaultStyles
	if g.cfg.StylesPath != "" {
		data, err := os.ReadFile(g.cfg.StylesPath)
		if err != nil {
			return fmt.Errorf("reading stylesheet %s: %w", g.cfg.StylesPath, err)
		}
		styles = data
	}
	if err := os.WriteFile(filepath.Join(g.cfg.OutputRoot, "styles.css"), styles, 0644); err != nil {
		return fmt.Errorf("writing styles.css: %w", err)
	}
	return nil
}

func (g *Generator) buildReel() error {
	var reel content.Reel
	if err := g.store.ReadInto(filepath.Join(g.cfg.ContentRoot, "reel", "reel.json"), &reel); err != nil {
		return fmt.Errorf("reel record is required: %w", err)
	}
	data := reelData{
		Title:     "Reel - " + g.cfg.SiteName,
		Nav:       g.nav(),
		Copyright: g.cfg.Copyright,
		ReelName:  reel.ReelName,
		Src:       reel.Src,
	}
	return g.render("reel", filepath.Join(g.cfg.OutputRoot, "reel.html"), data)
}

// categoryLabel returns the display name used in titles and breadcrumbs.
func categoryLabel(category content.Category) string {
	return strings.ToUpper(string(category)[:1]) + string(category)[1:]
}

func (g *Generator) buildCategory(category content.Category) error {
	label := categoryLabel(category)
	outDir := filepath.Join(g.cfg.OutputRoot, string(category))
	pagesDir := filepath.Join(outDir, "pages")
	if err := os.MkdirAll(pagesDir, 0755); err != nil {
		return fmt.Errorf("creating %s output: %w", category, err)
	}

	var thumbs []content.ThumbEntry
	thumbsPath := filepath.Join(g.cfg.ContentRoot, string(category), string(category)+"_thumbs.json")
	if err := g.store.ReadInto(thumbsPath, &thumbs); err != nil {
		return fmt.Errorf("%s thumbs index is required: %w", category, err)
	}

	// Listing pages, numbered from 1.
	listBase := "/" + string(category) + "/" + string(category) + "-list-"
	pages := Paginate(thumbs, g.cfg.PerPage)
	totalPages := len(pages)
	for i, pageThumbs := range pages {
		pageNo := i + 1
		data := listingData{
			Title:      fmt.Sprintf("%s - Page %d", label, pageNo),
			Stylesheet: "../styles.css?v=" + g.cfg.CacheBust,
			Nav:        g.nav(),
			Copyright:  g.cfg.Copyright,
			Breadcrumb: []breadcrumbItem{
				{Label: "Home", Link: "/index.html"},
				{Label: label},
			},
			Pagination: paginate(pageNo, totalPages, listBase),
		}
		for j, thumb := range pageThumbs {
			// Position in the thumbs index, which the operator keeps in
			// step with the detail folder numbering.
			ordinal := (pageNo-1)*g.cfg.PerPage + j + 1
			data.Cards = append(data.Cards, card{
				Title:     thumb.Title,
				ThumbURL:  thumb.ThumbURL,
				DetailURL: "/" + string(category) + "/pages/" + DetailFileName(thumb.Title, ordinal),
			})
		}
		out := filepath.Join(outDir, fmt.Sprintf("%s-list-%d.html", category, pageNo))
		if err := g.render("listing", out, data); err != nil {
			return err
		}
	}

	return g.buildDetails(category, label, pagesDir)
}

func paginate(current, total int, baseURL string) paginationData {
	p := paginationData{}
	if current > 1 {
		p.PrevHref = fmt.Sprintf("%s%d.html", baseURL, current-1)
	}
	if current < total {
		p.NextHref = fmt.Sprintf("%s%d.html", baseURL, current+1)
	}
	for n := 1; n <= total; n++ {
		p.Pages = append(p.Pages, pageLink{
			N:       n,
			Href:    fmt.Sprintf("%s%d.html", baseURL, n),
			Current: n == current,
		})
	}
	return p
}

// buildDetails renders one detail page per numbered item folder. A folder
// with no JSON file is filtered out silently; a malformed record skips just
// that item.
func (g *Generator) buildDetails(category content.Category, label string, pagesDir string) error {
	contentDir := filepath.Join(g.cfg.ContentRoot, string(category))
	entries, err := os.ReadDir(contentDir)
	if err != nil {
		return fmt.Errorf("reading %s content: %w", category, err)
	}

	dirPattern := regexp.MustCompile("^" + string(category) + `-(\d+)$`)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m := dirPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		ordinal, _ := strconv.Atoi(m[1])

		recordPath, ok := firstJSONFile(filepath.Join(contentDir, entry.Name()))
		if !ok {
			continue
		}

		var (
			title string
			data  detailData
			tmpl  string
		)
		switch category {
		case content.CategoryPhotography:
			var item content.PhotographyItem
			if err := g.store.ReadInto(recordPath, &item); err != nil {
				g.logger.Warn("skipping malformed item", logging.F("path", recordPath), logging.F("error", err.Error()))
				continue
			}
			title = item.Title
			tmpl = "photographyDetail"
			data = detailData{Description: item.Description, Image: item.Image}
		case content.CategoryStoryboard:
			var item content.StoryboardItem
			if err := g.store.ReadInto(recordPath, &item); err != nil {
				g.logger.Warn("skipping malformed item", logging.F("path", recordPath), logging.F("error", err.Error()))
				continue
			}
			title = item.Title
			tmpl = "storyboardDetail"
			data = detailData{Description: item.Description}
			for _, img := range item.Images {
				data.Images = append(data.Images, storyboardPanel{URL: img.URL, Name: img.Name, Description: img.Description})
			}
		}

		data.Title = title
		data.Stylesheet = "../../styles.css?v=" + g.cfg.CacheBust
		data.Nav = g.nav()
		data.Copyright = g.cfg.Copyright
		data.Breadcrumb = []breadcrumbItem{
			{Label: "Home", Link: "/index.html"},
			{Label: label, Link: "/" + string(category) + "/" + string(category) + "-list-1.html"},
			{Label: title},
		}

		out := filepath.Join(pagesDir, DetailFileName(title, ordinal))
		if err := g.render(tmpl, out, data); err != nil {
			return err
		}
	}
	return nil
}

// firstJSONFile returns the lexicographically first .json file in dir.
func firstJSONFile(dir string) (string, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), true
}

func (g *Generator) render(name, outPath string, data any) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer f.Close()
	if err := g.tmpl.ExecuteTemplate(f, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", outPath, err)
	}
	return nil
}
