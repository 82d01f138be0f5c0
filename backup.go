package fsplit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const backupTimeLayout = "2006-01-02T15:04:05.000Z"

// BackupStore keeps append-only byte copies of files about to be rewritten.
type BackupStore struct {
	Dir string
	Now func() time.Time
}

func NewBackupStore(dir string) *BackupStore {
	return &BackupStore{Dir: dir, Now: time.Now}
}

// BackupName returns the backup file name for fileName taken at t.
func BackupName(fileName string, t time.Time) string {
	stamp := t.UTC().Format(backupTimeLayout)
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return fmt.Sprintf("%s-%s.backup", fileName, stamp)
}

// Create copies data for path into a new backup file. It never overwrites an
// existing backup; a name collision moves the timestamp forward by a millisecond.
func (s *BackupStore) Create(path string, data []byte) (*BackupRecord, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return nil, &BackupError{Path: path, Err: err}
	}

	t := s.Now().UTC().Truncate(time.Millisecond)
	for attempt := 0; attempt < 1000; attempt++ {
		backupPath := filepath.Join(s.Dir, BackupName(filepath.Base(path), t))
		err := writeExclusive(backupPath, data)
		if errors.Is(err, fs.ErrExist) {
			t = t.Add(time.Millisecond)
			continue
		}
		if err != nil {
			return nil, &BackupError{Path: path, Err: err}
		}
		return &BackupRecord{
			OriginalPath: path,
			BackupPath:   backupPath,
			Timestamp:    t,
			Hash:         HashBytes(data),
		}, nil
	}
	return nil, &BackupError{Path: path, Err: errors.New("no free backup name")}
}

// Restore writes the backed-up bytes back to the original path.
func (s *BackupStore) Restore(fsys FileSystem, rec *BackupRecord) error {
	data, err := os.ReadFile(rec.BackupPath)
	if err != nil {
		return fmt.Errorf("failed to read backup %s: %w", rec.BackupPath, err)
	}
	if rec.Hash != "" && HashBytes(data) != rec.Hash {
		return fmt.Errorf("backup %s does not match its recorded hash", rec.BackupPath)
	}
	if err := fsys.WriteFile(rec.OriginalPath, data); err != nil {
		return fmt.Errorf("failed to restore %s: %w", rec.OriginalPath, err)
	}
	return nil
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
