// Package catalog records provenance for every generated fixture file so a
// fixture can be traced back to the generator, seed and tool version that
// produced it.
package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"
)

// Version is the fixture layout version written into every run record.
// Bump the major version whenever generated values for a given seed change.
const Version = "v1.0.0"

var (
	ErrRunNotFound         = errors.New("run not found")
	ErrIncompatibleVersion = errors.New("incompatible version")
)

// Run describes one generated fixture file.
type Run struct {
	ID          string        `json:"id"`
	Generator   string        `json:"generator"`
	Format      string        `json:"format"`
	Compression string        `json:"compression,omitempty"`
	Path        string        `json:"path"`
	Seed        uint32        `json:"seed"`
	Entries     int64         `json:"entries"`
	Bytes       int64         `json:"bytes"`
	Checksum    uint64        `json:"checksum"`
	Version     string        `json:"version"`
	CreatedAt   time.Time     `json:"created_at"`
	Duration    time.Duration `json:"duration"`
}

// NewRun returns a run with a fresh ID stamped with the current Version.
func NewRun(generator string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Generator: generator,
		Version:   Version,
		CreatedAt: time.Now().UTC(),
	}
}

// IsCompatibleVersion checks whether a run written by runVersion can be
// reproduced by toolVersion.
// Compatibility rules:
// - Major version must match exactly.
// - Minor and patch versions can differ.
func IsCompatibleVersion(runVersion, toolVersion string) (bool, error) {
	if !semver.IsValid(runVersion) {
		return false, fmt.Errorf("invalid run version: %s", runVersion)
	}
	if !semver.IsValid(toolVersion) {
		return false, fmt.Errorf("invalid tool version: %s", toolVersion)
	}

	return semver.Major(runVersion) == semver.Major(toolVersion), nil
}

// CheckCompatible returns an error wrapping ErrIncompatibleVersion when run
// cannot be reproduced by the current Version.
func (r *Run) CheckCompatible() error {
	ok, err := IsCompatibleVersion(r.Version, Version)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: run %s was written by %s, this build writes %s.x.x",
			ErrIncompatibleVersion, r.ID, r.Version, semver.Major(Version))
	}
	return nil
}
