package fsplit

import (
	"errors"
	"fmt"
)

var (
	ErrNotUTF8         = errors.New("input is not valid UTF-8")
	ErrRollbackFailed  = errors.New("rollback failed")
	ErrBackupFailed    = errors.New("backup failed")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrModifiedOnDisk  = errors.New("file changed since the split")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrVerification    = errors.New("verification failed")
	ErrUnsupportedFile = errors.New("unsupported file extension")
)

type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string { return e.Err.Error() }
func (e *DetailedError) Unwrap() error { return e.Err }

type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalidConfig }

type BackupError struct {
	Path string
	Err  error
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("backup %s: %v", e.Path, e.Err)
}

func (e *BackupError) Unwrap() error        { return e.Err }
func (e *BackupError) Is(target error) bool { return target == ErrBackupFailed }

type VerificationError struct {
	Path   string
	Reason string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed for %s: %s", e.Path, e.Reason)
}

func (e *VerificationError) Is(target error) bool { return target == ErrVerification }

// RollbackError means the original file may not have been restored.
type RollbackError struct {
	Original string
	Backup   string
	Cause    error
	Err      error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback of %s failed (backup kept at %s): %v; cause: %v", e.Original, e.Backup, e.Err, e.Cause)
}

func (e *RollbackError) Unwrap() error        { return e.Err }
func (e *RollbackError) Is(target error) bool { return target == ErrRollbackFailed }
