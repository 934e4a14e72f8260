package catalog

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Checksum returns the xxhash64 digest and size of the file at path.
func Checksum(path string) (sum uint64, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	h := xxhash.New()
	size, err = io.Copy(h, f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return h.Sum64(), size, nil
}

// FormatChecksum renders a checksum the way it is printed by the CLI.
func FormatChecksum(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
