package content

import (
	"fmt"
)

// Category identifies one of the content kinds, each with its own storage
// convention: home keeps flat home<N>.json files, photography and storyboard
// keep one folder per item (photography-<N>/, storyboard-<N>/).
type Category string

const (
	CategoryHome        Category = "home"
	CategoryPhotography Category = "photography"
	CategoryStoryboard  Category = "storyboard"
)

// ParseCategory validates a raw category string.
func ParseCategory(raw string) (Category, error) {
	switch Category(raw) {
	case CategoryHome, CategoryPhotography, CategoryStoryboard:
		return Category(raw), nil
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalidInput, raw)
}

// HomeImage is one carousel slide on the home page. One record per file
// under content/home/.
type HomeImage struct {
	ImageName string `json:"imageName"`
	Src       string `json:"src"`
}

// Validate checks the required fields.
func (h *HomeImage) Validate() error {
	if h.ImageName == "" {
		return fmt.Errorf("%w: home image missing imageName", ErrInvalidInput)
	}
	if h.Src == "" {
		return fmt.Errorf("%w: home image missing src", ErrInvalidInput)
	}
	return nil
}

// PhotographyItem is the detail record stored inside a photography-<N> folder.
type PhotographyItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Validate checks the required fields. Description and image are optional;
// the detail page renders whatever is present.
func (p *PhotographyItem) Validate() error {
	if p.Title == "" {
		return fmt.Errorf("%w: photography item missing title", ErrInvalidInput)
	}
	return nil
}

// StoryboardImage is one panel inside a storyboard item.
type StoryboardImage struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StoryboardItem is the detail record stored inside a storyboard-<N> folder.
type StoryboardItem struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Images      []StoryboardImage `json:"images"`
}

// Validate checks the required fields.
func (s *StoryboardItem) Validate() error {
	if s.Title == "" {
		return fmt.Errorf("%w: storyboard item missing title", ErrInvalidInput)
	}
	return nil
}

// ThumbEntry is one row of a category's thumbs index, the ordered list that
// drives the paginated listing pages. The index numbering must stay
// consistent with the detail folders; keeping it so is the operator's job.
type ThumbEntry struct {
	Title    string `json:"title"`
	ThumbURL string `json:"thumbUrl"`
}

// Reel is the single video record behind reel.html.
type Reel struct {
	ReelName string `json:"reelName"`
	Src      string `json:"src"`
}

// Validate checks the required fields.
func (r *Reel) Validate() error {
	if r.Src == "" {
		return fmt.Errorf("%w: reel missing src", ErrInvalidInput)
	}
	return nil
}

// NewItemRecord returns the default record shape used when creating a new
// item in the given category.
func NewItemRecord(category Category) any {
	switch category {
	case CategoryHome:
		return &HomeImage{ImageName: "New Image", Src: "placeholder.png"}
	case CategoryPhotography:
		return &PhotographyItem{Title: "New Photography", Description: "", Image: ""}
	case CategoryStoryboard:
		return &StoryboardItem{Title: "New Storyboard", Description: "", Images: []StoryboardImage{}}
	}
	return nil
}
