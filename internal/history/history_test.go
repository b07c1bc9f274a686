package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaguregi/folio/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	runs := []*history.Run{
		{Kind: history.KindPublish, StartedAt: base, FinishedAt: base.Add(time.Second), Status: history.StatusOK, Changes: `[{"type":"new","path":"initial build"}]`},
		{Kind: history.KindDeploy, StartedAt: base.Add(time.Minute), FinishedAt: base.Add(2 * time.Minute), Status: history.StatusOK, FilesUploaded: 14},
		{Kind: history.KindDeploy, StartedAt: base.Add(2 * time.Minute), FinishedAt: base.Add(3 * time.Minute), Status: history.StatusFailed, Error: "simulated"},
	}
	for _, run := range runs {
		if err := store.Add(ctx, run); err != nil {
			t.Fatalf("Add: %v", err)
		}
		if run.ID == "" {
			t.Error("Add left the run without an ID")
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent returned %d runs, want 3", len(got))
	}

	// Newest first.
	if got[0].Kind != history.KindDeploy || got[0].Status != history.StatusFailed {
		t.Errorf("newest run = %+v, want the failed deploy", got[0])
	}
	if got[0].Error != "simulated" {
		t.Errorf("error text = %q", got[0].Error)
	}
	if got[1].FilesUploaded != 14 {
		t.Errorf("uploaded count = %d, want 14", got[1].FilesUploaded)
	}
	if got[2].Changes == "" {
		t.Error("publish run lost its change report")
	}
	if !got[2].StartedAt.Equal(base) {
		t.Errorf("started at %v, want %v", got[2].StartedAt, base)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		run := &history.Run{
			Kind:      history.KindPublish,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Status:    history.StatusOK,
		}
		if err := store.Add(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("Recent(2) returned %d runs", len(got))
	}
}

func TestRecentEmptyLedger(t *testing.T) {
	store := openStore(t)
	got, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("empty ledger returned %d runs", len(got))
	}
}
