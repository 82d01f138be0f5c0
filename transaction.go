package fsplit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"
)

type TxState int

const (
	TxIdle TxState = iota
	TxBackedUp
	TxWritten
	TxVerified
	TxRolledBack
)

func (s TxState) String() string {
	switch s {
	case TxIdle:
		return "idle"
	case TxBackedUp:
		return "backed-up"
	case TxWritten:
		return "written"
	case TxVerified:
		return "verified"
	case TxRolledBack:
		return "rolled-back"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// WrittenFile records one file written by a committed transaction.
type WrittenFile struct {
	Path       string
	Hash       string
	Created    bool
	Backup     string
	BackupHash string
}

// TransactionManager applies a set of output files all-or-nothing.
type TransactionManager struct {
	fs       FileSystem
	backups  *BackupStore
	counting Counting
	logger   *zap.Logger
}

func NewTransactionManager(fsys FileSystem, backups *BackupStore, counting Counting, logger *zap.Logger) *TransactionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransactionManager{fs: fsys, backups: backups, counting: counting, logger: logger}
}

type transaction struct {
	m          *TransactionManager
	buf        *SourceBuffer
	result     *TransactionResult
	original   *BackupRecord
	existing   map[string]*BackupRecord
	written    []string
	createdDir []string
}

// Commit backs up the original and any existing targets, writes files (the
// original last), verifies them and rolls everything back on failure. A failed
// transaction is reported in the result; only a failed rollback or backup is
// returned as an error.
func (m *TransactionManager) Commit(ctx context.Context, buf *SourceBuffer, original []byte, files []OutputFile) (*TransactionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx := &transaction{
		m:        m,
		buf:      buf,
		result:   &TransactionResult{State: TxIdle},
		existing: make(map[string]*BackupRecord),
	}
	if err := tx.backup(original, files); err != nil {
		tx.result.Error = err.Error()
		return tx.result, err
	}
	tx.transition(TxBackedUp)

	if err := tx.write(files); err != nil {
		return tx.rollback(err)
	}
	tx.transition(TxWritten)

	if err := Verify(m.fs, tx.written, m.counting); err != nil {
		return tx.rollback(err)
	}
	tx.transition(TxVerified)

	tx.result.Success = true
	tx.result.WrittenFiles = tx.written
	return tx.result, nil
}

func (tx *transaction) transition(s TxState) {
	tx.result.State = s
	tx.m.logger.Debug("transaction state",
		zap.String("path", tx.buf.Path),
		zap.String("state", s.String()),
	)
}

func (tx *transaction) backup(original []byte, files []OutputFile) error {
	rec, err := tx.m.backups.Create(tx.buf.Path, original)
	if err != nil {
		return err
	}
	tx.original = rec
	tx.result.Backup = rec

	for _, f := range files {
		if f.Path == tx.buf.Path {
			continue
		}
		ok, err := tx.m.fs.Exists(f.Path)
		if err != nil {
			return &BackupError{Path: f.Path, Err: err}
		}
		if !ok {
			continue
		}
		data, err := tx.m.fs.ReadFile(f.Path)
		if err != nil {
			return &BackupError{Path: f.Path, Err: err}
		}
		rec, err := tx.m.backups.Create(f.Path, data)
		if err != nil {
			return err
		}
		tx.existing[f.Path] = rec
		tx.m.logger.Info("existing target backed up", zap.String("path", f.Path), zap.String("backup", rec.BackupPath))
	}
	return nil
}

func (tx *transaction) write(files []OutputFile) error {
	ordered := make([]OutputFile, 0, len(files))
	var last *OutputFile
	for i := range files {
		if files[i].Path == tx.buf.Path {
			last = &files[i]
			continue
		}
		ordered = append(ordered, files[i])
	}
	if last != nil {
		ordered = append(ordered, *last)
	}

	for _, f := range ordered {
		if err := tx.ensureDir(filepath.Dir(f.Path)); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
		}
		data := tx.buf.Encode(f.Content)
		// recorded first so a partial write is undone too
		tx.written = append(tx.written, f.Path)
		if err := tx.m.fs.WriteFile(f.Path, data); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Path, err)
		}

		_, existed := tx.existing[f.Path]
		wf := WrittenFile{
			Path:    f.Path,
			Hash:    HashBytes(data),
			Created: !existed && f.Path != tx.buf.Path,
		}
		switch {
		case f.Path == tx.buf.Path:
			wf.Backup, wf.BackupHash = tx.original.BackupPath, tx.original.Hash
		case existed:
			rec := tx.existing[f.Path]
			wf.Backup, wf.BackupHash = rec.BackupPath, rec.Hash
		}
		tx.result.Files = append(tx.result.Files, wf)
	}
	return nil
}

func (tx *transaction) ensureDir(dir string) error {
	ok, err := tx.m.fs.Exists(dir)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if err := tx.m.fs.MkdirAll(dir); err != nil {
		return err
	}
	tx.createdDir = append(tx.createdDir, dir)
	return nil
}

func (tx *transaction) rollback(cause error) (*TransactionResult, error) {
	tx.m.logger.Warn("rolling back", zap.String("path", tx.buf.Path), zap.Error(cause))

	var errs []error
	for i := len(tx.written) - 1; i >= 0; i-- {
		path := tx.written[i]
		if path == tx.buf.Path {
			continue
		}
		if rec, ok := tx.existing[path]; ok {
			if err := tx.m.backups.Restore(tx.m.fs, rec); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		if err := tx.m.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove %s: %w", path, err))
		}
	}
	if err := tx.m.backups.Restore(tx.m.fs, tx.original); err != nil {
		errs = append(errs, err)
	}
	for i := len(tx.createdDir) - 1; i >= 0; i-- {
		if empty, err := IsEmptyDir(tx.createdDir[i]); err == nil && empty {
			_ = tx.m.fs.Remove(tx.createdDir[i])
		}
	}

	tx.result.Success = false
	tx.result.Error = cause.Error()
	tx.result.Files = nil
	tx.transition(TxRolledBack)

	if len(errs) > 0 {
		err := &RollbackError{
			Original: tx.buf.Path,
			Backup:   tx.original.BackupPath,
			Cause:    cause,
			Err:      errors.Join(errs...),
		}
		tx.m.logger.Error("rollback failed", zap.String("path", tx.buf.Path), zap.Error(err))
		return tx.result, err
	}
	return tx.result, nil
}
