package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/mod/semver"
)

var (
	runsBucket = []byte("runs")
	metaBucket = []byte("meta")

	versionKey = []byte("version")
)

// BboltStore implements Store using bbolt
type BboltStore struct {
	db     *bolt.DB
	logger log.Logger
}

// NewBboltStore opens (or creates) the catalog database at dbPath
func NewBboltStore(dbPath string, logger log.Logger) (*BboltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt database: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{runsBucket, metaBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket: %w", err)
			}
		}
		meta := tx.Bucket(metaBucket)
		if meta.Get(versionKey) == nil {
			return meta.Put(versionKey, []byte(Version))
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &BboltStore{db: db, logger: logger}
	createdBy, err := s.CreatedBy()
	if err == nil {
		err = checkCatalogVersion(createdBy)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog %s: %w", dbPath, err)
	}

	level.Debug(logger).Log("msg", "catalog opened", "path", dbPath, "created_by", createdBy)
	return s, nil
}

func checkCatalogVersion(createdBy string) error {
	ok, err := IsCompatibleVersion(createdBy, Version)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: created by %s, this build reads %s.x.x", ErrIncompatibleVersion, createdBy, semver.Major(Version))
	}
	return nil
}

// Close closes the database
func (s *BboltStore) Close() error {
	return s.db.Close()
}

func (s *BboltStore) SaveRun(run *Run) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		data, err := encodeJSON(run)
		if err != nil {
			return err
		}
		return b.Put([]byte(run.ID), data)
	})
}

func (s *BboltStore) GetRun(id string) (*Run, error) {
	var run *Run

	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(runsBucket).Get([]byte(id))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		run = &Run{}
		return decodeJSON(v, run)
	})
	if err != nil {
		return nil, err
	}

	return run, nil
}

func (s *BboltStore) LoadRuns() ([]*Run, error) {
	var runs []*Run

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(runsBucket)
		return b.ForEach(func(k, v []byte) error {
			var run Run
			if err := decodeJSON(v, &run); err != nil {
				level.Warn(s.logger).Log("msg", "skipping corrupted run record", "id", string(k), "err", err)
				return nil
			}
			runs = append(runs, &run)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sortNewestFirst(runs)

	return runs, nil
}

func (s *BboltStore) DeleteRun(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(runsBucket).Delete([]byte(id))
	})
}

// CreatedBy returns the catalog layout version the database was created with.
func (s *BboltStore) CreatedBy() (string, error) {
	var version string
	err := s.db.View(func(tx *bolt.Tx) error {
		version = string(tx.Bucket(metaBucket).Get(versionKey))
		return nil
	})
	return version, err
}
