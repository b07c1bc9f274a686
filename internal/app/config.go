package app

import (
	"path/filepath"

	"github.com/amaguregi/folio/internal/site"
)

// Config aggregates the runtime settings the pipeline needs. Everything is
// explicit and passed by parameter; there are no package-level singletons.
type Config struct {
	// ContentRoot is the directory holding the JSON content records.
	ContentRoot string

	// OutputRoot is where the generated site tree is written.
	OutputRoot string

	// RemoteConfigPath points at the JSON file with object-store
	// credentials. Remote operations fail fast when it is absent.
	RemoteConfigPath string

	// HistoryPath is the publish/deploy ledger database.
	HistoryPath string

	// SnapshotRoot holds the reference copy of the content tree taken at
	// the last successful publish. Change detection diffs against it; empty
	// disables snapshots and falls back to modification times.
	SnapshotRoot string

	// UndoCapacity bounds the in-memory deletion history. 0 keeps the
	// default of 10.
	UndoCapacity int

	// SiteCfg carries generation options; ContentRoot and OutputRoot are
	// filled in from the fields above before each build.
	SiteCfg site.Config
}

// DefaultConfig returns a Config with the conventional layout: content/ and
// dist/website/ next to the working directory, credentials in
// s3-config.json, ledger under .folio/.
func DefaultConfig() *Config {
	return &Config{
		ContentRoot:      "content",
		OutputRoot:       filepath.Join("dist", "website"),
		RemoteConfigPath: "s3-config.json",
		HistoryPath:      filepath.Join(".folio", "history.db"),
		SnapshotRoot:     filepath.Join(".folio", "last-published"),
	}
}
