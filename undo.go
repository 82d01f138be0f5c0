package fsplit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"
)

// Undoer reverts the most recent split recorded in the journal.
type Undoer struct {
	fs      FileSystem
	journal *Journal
	backups *BackupStore
	logger  *zap.Logger
}

func NewUndoer(fsys FileSystem, journal *Journal, backups *BackupStore, logger *zap.Logger) *Undoer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Undoer{fs: fsys, journal: journal, backups: backups, logger: logger}
}

// Undo refuses to touch anything if a written file changed after the split.
func (u *Undoer) Undo(ctx context.Context) (Summary, error) {
	var s Summary
	entry, err := u.journal.Last(ctx)
	if err != nil {
		return s, err
	}

	for _, f := range entry.Files {
		data, err := u.fs.ReadFile(f.Path)
		if err != nil {
			if f.Created && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return s, fmt.Errorf("%s: %w", f.Path, err)
		}
		if HashBytes(data) != f.Hash {
			return s, fmt.Errorf("%s: %w", f.Path, ErrModifiedOnDisk)
		}
	}

	dirs := make(map[string]struct{})
	for i := len(entry.Files) - 1; i >= 0; i-- {
		f := entry.Files[i]
		if f.Created {
			if err := u.fs.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.Failed = append(s.Failed, f.Path)
				continue
			}
			dirs[filepath.Dir(f.Path)] = struct{}{}
			s.Deleted = append(s.Deleted, f.Path)
			continue
		}
		rec := &BackupRecord{OriginalPath: f.Path, BackupPath: f.Backup, Hash: f.BackupHash}
		if err := u.backups.Restore(u.fs, rec); err != nil {
			u.logger.Error("restore failed", zap.String("path", f.Path), zap.Error(err))
			s.Failed = append(s.Failed, f.Path)
			continue
		}
		s.Restored = append(s.Restored, f.Path)
	}

	for dir := range dirs {
		if empty, err := IsEmptyDir(dir); err == nil && empty {
			_ = u.fs.Remove(dir)
		}
	}

	if len(s.Failed) > 0 {
		return s, fmt.Errorf("undo of %s incomplete: %d file(s) failed", entry.Original, len(s.Failed))
	}
	if err := u.journal.MarkUndone(ctx, entry.ID); err != nil {
		return s, err
	}
	u.logger.Info("undone", zap.String("id", entry.ID), zap.String("path", entry.Original))
	return s, nil
}
