package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// BackupDir is the directory, relative to the store, that holds backups.
const BackupDir = "backups"

// backupTimeFormat renders the timestamp part of a backup file name.
const backupTimeFormat = "20060102_150405"

// Backup is the on-disk snapshot of a collection taken before it is replaced.
type Backup struct {
	Collection string    `json:"collection"`
	CreatedAt  time.Time `json:"created_at"`
	Records    []Record  `json:"records"`
}

// backupName returns {collection}_backup_{YYYYMMDD_HHMMSS}_{ULID}.json.
// The ULID keeps two backups in the same second apart and sorts by time.
func backupName(collection string, now time.Time) string {
	return fmt.Sprintf("%s_backup_%s_%s.json", collection, now.Format(backupTimeFormat), ulid.Make())
}

// writeBackup writes records to a new file in dir. The file appears only
// once fully written.
func writeBackup(dir, collection string, records []Record, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create %s: %w", ErrBackupWrite, dir, err)
	}

	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(Backup{
		Collection: collection,
		CreatedAt:  now.UTC(),
		Records:    records,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("%w: encode: %w", ErrBackupWrite, err)
	}

	path := filepath.Join(dir, backupName(collection, now))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackupWrite, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("%w: %w", ErrBackupWrite, err)
	}
	return path, nil
}

// ListBackups returns the backup files in dir, oldest first.
// A missing directory yields no backups.
func ListBackups(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") || !strings.Contains(e.Name(), "_backup_") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// ReadBackup loads a backup file. Syncs never call it.
func ReadBackup(path string) (*Backup, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode backup %s: %w", path, err)
	}
	return &b, nil
}
