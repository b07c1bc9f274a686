package site_test

import (
	"testing"

	"github.com/amaguregi/folio/internal/site"
)

// Every non-alphanumeric character maps to exactly one dash. Runs are not
// collapsed, so consecutive specials yield consecutive dashes.
func TestSlug(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Dunes", "Dunes"},
		{"A/B: Test!", "A-B--Test-"},
		{"hello world", "hello-world"},
		{"été", "-t-"},
		{"", ""},
		{"2024 Recap", "2024-Recap"},
	}
	for _, c := range cases {
		if got := site.Slug(c.title); got != c.want {
			t.Errorf("Slug(%q) = %q, want %q", c.title, got, c.want)
		}
	}
}

func TestDetailFileName(t *testing.T) {
	cases := []struct {
		title   string
		ordinal int
		want    string
	}{
		{"A/B: Test!", 7, "A-B--Test--7.html"},
		{"Dunes", 1, "Dunes-1.html"},
		{"hello world", 12, "hello-world-12.html"},
	}
	for _, c := range cases {
		if got := site.DetailFileName(c.title, c.ordinal); got != c.want {
			t.Errorf("DetailFileName(%q, %d) = %q, want %q", c.title, c.ordinal, got, c.want)
		}
	}
}
