// Package backup creates and rotates pre-setup snapshots of the
// installation's configuration files.
package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const snapshotPrefix = "pre-setup-"

// FileClass controls how a missing source file is treated.
type FileClass int

const (
	// Mandatory files abort the snapshot when they cannot be copied.
	Mandatory FileClass = iota
	// Optional files are skipped silently when absent.
	Optional
)

// Entry is one file to include in a snapshot.
type Entry struct {
	Path  string
	Class FileClass
}

// Snapshot is an immutable timestamped directory of copied files.
type Snapshot struct {
	Dir     string
	RunID   string
	Copied  []string
	Skipped []string
}

// Take copies the given files into a new timestamped directory under
// root. Mandatory files that cannot be copied fail the snapshot; optional
// files that are absent are recorded as skipped.
func Take(root, runID string, entries []Entry, now time.Time) (*Snapshot, error) {
	dir := filepath.Join(root, snapshotPrefix+now.Format("20060102_150405"))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	snap := &Snapshot{Dir: dir, RunID: runID}
	for _, e := range entries {
		dst := filepath.Join(dir, filepath.Base(e.Path))
		if err := copyFile(e.Path, dst); err != nil {
			if e.Class == Optional && errors.Is(err, fs.ErrNotExist) {
				snap.Skipped = append(snap.Skipped, e.Path)
				continue
			}
			return nil, fmt.Errorf("snapshot %s: %w", e.Path, err)
		}
		snap.Copied = append(snap.Copied, e.Path)
	}

	if runID != "" {
		meta := fmt.Sprintf("run_id=%s\ntaken_at=%s\n", runID, now.UTC().Format(time.RFC3339))
		if err := os.WriteFile(filepath.Join(dir, "snapshot.meta"), []byte(meta), 0o640); err != nil {
			return nil, fmt.Errorf("write snapshot metadata: %w", err)
		}
	}
	return snap, nil
}

// Rotate removes the oldest snapshots under root, keeping the newest keep
// directories. Timestamped names sort chronologically, so name order is
// age order.
func Rotate(root string, keep int) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("rotate snapshots: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), snapshotPrefix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= keep {
		return nil, nil
	}
	sort.Strings(names)

	var removed []string
	for _, name := range names[:len(names)-keep] {
		if err := os.RemoveAll(filepath.Join(root, name)); err != nil {
			return removed, fmt.Errorf("remove snapshot %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
