package catalog

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-kit/log"
	bolt "go.etcd.io/bbolt"
)

// storeTestSuite runs the same checks against any Store implementation
func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("SaveAndGet", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		run := NewRun("stdvector")
		run.Seed = 2072019
		run.Entries = 10
		run.Checksum = 0xdeadbeef
		if err := store.SaveRun(run); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}

		got, err := store.GetRun(run.ID)
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if got.Seed != run.Seed || got.Entries != run.Entries || got.Checksum != run.Checksum {
			t.Errorf("GetRun returned %+v, want %+v", got, run)
		}
		if !got.CreatedAt.Equal(run.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, run.CreatedAt)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		_, err := store.GetRun("missing")
		if !errors.Is(err, ErrRunNotFound) {
			t.Errorf("GetRun error = %v, want ErrRunNotFound", err)
		}
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		run := NewRun("stdvector")
		store.SaveRun(run)
		run.Entries = 42
		store.SaveRun(run)

		got, err := store.GetRun(run.ID)
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if got.Entries != 42 {
			t.Errorf("Entries = %d, want 42", got.Entries)
		}
	})

	t.Run("LoadRunsNewestFirst", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		var ids []string
		for i := 0; i < 3; i++ {
			run := NewRun("stdvector")
			run.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			if err := store.SaveRun(run); err != nil {
				t.Fatalf("SaveRun failed: %v", err)
			}
			ids = append(ids, run.ID)
		}

		runs, err := store.LoadRuns()
		if err != nil {
			t.Fatalf("LoadRuns failed: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("LoadRuns returned %d runs, want 3", len(runs))
		}
		for i, run := range runs {
			if want := ids[2-i]; run.ID != want {
				t.Errorf("runs[%d] = %s, want %s", i, run.ID, want)
			}
		}
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		run := NewRun("hvector")
		store.SaveRun(run)
		if err := store.DeleteRun(run.ID); err != nil {
			t.Fatalf("DeleteRun failed: %v", err)
		}
		if _, err := store.GetRun(run.ID); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("run still present after delete: %v", err)
		}

		// Idempotent
		if err := store.DeleteRun(run.ID); err != nil {
			t.Errorf("DeleteRun should be idempotent: %v", err)
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeTestSuite(t, func(t *testing.T) Store {
		return NewMemoryStore()
	})
}

func TestBboltStore(t *testing.T) {
	storeTestSuite(t, func(t *testing.T) Store {
		store, err := NewBboltStore(filepath.Join(t.TempDir(), "catalog.db"), log.NewNopLogger())
		if err != nil {
			t.Fatalf("failed to open store: %v", err)
		}
		return store
	})
}

func TestBboltStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.db")

	store, err := NewBboltStore(path, log.NewNopLogger())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	run := NewRun("stdvector")
	if err := store.SaveRun(run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}
	store.Close()

	store, err = NewBboltStore(path, log.NewNopLogger())
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer store.Close()

	if _, err := store.GetRun(run.ID); err != nil {
		t.Errorf("GetRun after reopen failed: %v", err)
	}
	version, err := store.CreatedBy()
	if err != nil || version != Version {
		t.Errorf("CreatedBy = %q, %v; want %q", version, err, Version)
	}
}

func TestBboltStore_RefusesIncompatibleCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")

	store, err := NewBboltStore(path, log.NewNopLogger())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	err = store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put(versionKey, []byte("v0.9.0"))
	})
	if err != nil {
		t.Fatalf("failed to rewrite version: %v", err)
	}
	store.Close()

	_, err = NewBboltStore(path, log.NewNopLogger())
	if !errors.Is(err, ErrIncompatibleVersion) {
		t.Errorf("NewBboltStore error = %v, want ErrIncompatibleVersion", err)
	}

	// a refused catalog must not keep the file lock
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("catalog still locked after refusal: %v", err)
	}
	db.Close()
}

func TestBboltStore_SkipsCorruptedRecords(t *testing.T) {
	store, err := NewBboltStore(filepath.Join(t.TempDir(), "catalog.db"), log.NewNopLogger())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	store.SaveRun(NewRun("stdvector"))
	err = store.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).Put([]byte("broken"), []byte("{not json"))
	})
	if err != nil {
		t.Fatalf("failed to inject record: %v", err)
	}

	runs, err := store.LoadRuns()
	if err != nil {
		t.Fatalf("LoadRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("LoadRuns returned %d runs, want 1", len(runs))
	}
}
