package mirror_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/amaguregi/folio/internal/mirror"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "s3-config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRemoteConfig(t *testing.T) {
	path := writeConfig(t, `{
		"accessKeyId": "AKIA123",
		"secretAccessKey": "secret",
		"region": "eu-west-1",
		"bucket": "my-site"
	}`)

	cfg, err := mirror.LoadRemoteConfig(path)
	if err != nil {
		t.Fatalf("LoadRemoteConfig: %v", err)
	}
	if cfg.Bucket != "my-site" || cfg.Region != "eu-west-1" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadRemoteConfigDefaultsRegion(t *testing.T) {
	path := writeConfig(t, `{"accessKeyId":"A","secretAccessKey":"S","bucket":"b"}`)
	cfg, err := mirror.LoadRemoteConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Region != "us-east-1" {
		t.Errorf("region = %q, want us-east-1 default", cfg.Region)
	}
}

func TestLoadRemoteConfigNotConfigured(t *testing.T) {
	cases := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "nope.json")},
		{"missing credentials", writeConfig(t, `{"bucket":"b"}`)},
		{"missing bucket", writeConfig(t, `{"accessKeyId":"A","secretAccessKey":"S"}`)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := mirror.LoadRemoteConfig(c.path); !errors.Is(err, mirror.ErrNotConfigured) {
				t.Errorf("got %v, want ErrNotConfigured", err)
			}
		})
	}
}

func TestKeyFromURL(t *testing.T) {
	cases := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://my-site.s3.eu-west-1.amazonaws.com/photos/dunes.jpg", "photos/dunes.jpg", false},
		{"https://my-site.s3.amazonaws.com/a%20b.jpg", "a b.jpg", false},
		{"https://other-bucket.s3.amazonaws.com/x.jpg", "", true},
		{"https://example.com/x.jpg", "", true},
	}
	for _, c := range cases {
		got, err := mirror.KeyFromURL("my-site", c.url)
		if c.wantErr {
			if err == nil {
				t.Errorf("KeyFromURL(%q) succeeded with %q, want error", c.url, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("KeyFromURL(%q): %v", c.url, err)
			continue
		}
		if got != c.want {
			t.Errorf("KeyFromURL(%q) = %q, want %q", c.url, got, c.want)
		}
	}
}
