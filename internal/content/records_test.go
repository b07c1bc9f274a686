package content_test

import (
	"errors"
	"testing"

	"github.com/amaguregi/folio/internal/content"
)

func TestParseCategory(t *testing.T) {
	for _, raw := range []string{"home", "photography", "storyboard"} {
		if _, err := content.ParseCategory(raw); err != nil {
			t.Errorf("ParseCategory(%q): %v", raw, err)
		}
	}
	if _, err := content.ParseCategory("videos"); !errors.Is(err, content.ErrInvalidInput) {
		t.Errorf("ParseCategory of unknown category returned %v, want ErrInvalidInput", err)
	}
}

func TestRecordValidation(t *testing.T) {
	cases := []struct {
		name   string
		record interface{ Validate() error }
		ok     bool
	}{
		{"home ok", &content.HomeImage{ImageName: "A", Src: "a.jpg"}, true},
		{"home no src", &content.HomeImage{ImageName: "A"}, false},
		{"home no name", &content.HomeImage{Src: "a.jpg"}, false},
		{"photography ok", &content.PhotographyItem{Title: "T"}, true},
		{"photography no title", &content.PhotographyItem{}, false},
		{"storyboard ok", &content.StoryboardItem{Title: "T"}, true},
		{"storyboard no title", &content.StoryboardItem{}, false},
		{"reel ok", &content.Reel{Src: "reel.mp4"}, true},
		{"reel no src", &content.Reel{ReelName: "Reel"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.record.Validate()
			if c.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !c.ok && !errors.Is(err, content.ErrInvalidInput) {
				t.Errorf("Validate returned %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestNewItemRecordValidatesClean(t *testing.T) {
	for _, category := range []content.Category{content.CategoryHome, content.CategoryPhotography, content.CategoryStoryboard} {
		record := content.NewItemRecord(category)
		v, ok := record.(interface{ Validate() error })
		if !ok {
			t.Fatalf("default %s record has no Validate", category)
		}
		if err := v.Validate(); err != nil {
			t.Errorf("default %s record invalid: %v", category, err)
		}
	}
}
