package library

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"mediashelf/internal/content"
	"mediashelf/internal/services"
)

func TestCommitFailsWhileAnotherWriterHoldsLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "library.db")
	store, err := OpenPath(dbPath)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	store.lockWait = 100 * time.Millisecond

	other := flock.New(dbPath + ".lock")
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("expected to take lock, got ok=%v err=%v", ok, err)
	}

	records := []Record{{Type: content.TypeGame, Title: "Hades", ExternalID: "7", ExternalSource: "rawg"}}
	_, err = store.Commit(context.Background(), "subject", "", records)
	if !errors.Is(err, services.ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	if err := other.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	saved, err := store.Commit(context.Background(), "subject", "", records)
	if err != nil || saved != 1 {
		t.Fatalf("expected commit after unlock, got %d %v", saved, err)
	}
}
