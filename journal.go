package fsplit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

const journalFileName = "journal.db"

// JournalEntry is one recorded transaction.
type JournalEntry struct {
	ID        string
	Original  string
	Backup    string
	State     string
	Error     string
	CreatedAt time.Time
	Undone    bool
	Files     []WrittenFile
}

// Journal persists transactions so they can be listed and undone.
type Journal struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenJournal opens (or creates) the journal database in dir.
func OpenJournal(dir string, logger *zap.Logger) (*Journal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	path := filepath.Join(dir, journalFileName)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	_, err = db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			original TEXT NOT NULL,
			backup TEXT NOT NULL DEFAULT '',
			state TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			undone INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS files (
			tx_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			path TEXT NOT NULL,
			hash TEXT NOT NULL,
			created INTEGER NOT NULL,
			backup TEXT NOT NULL DEFAULT '',
			backup_hash TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (tx_id, seq)
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_created ON transactions(created_at);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup journal: %w", err)
	}
	return &Journal{db: db, path: path, logger: logger}, nil
}

func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Record stores res and assigns it an id.
func (j *Journal) Record(ctx context.Context, original string, res *TransactionResult) error {
	id := uuid.NewString()
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin journal transaction: %w", err)
	}
	defer tx.Rollback()

	backup := ""
	if res.Backup != nil {
		backup = res.Backup.BackupPath
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO transactions (id, original, backup, state, error, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, original, backup, res.State.String(), res.Error, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	for i, f := range res.Files {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO files (tx_id, seq, path, hash, created, backup, backup_hash) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, f.Path, f.Hash, boolInt(f.Created), f.Backup, f.BackupHash,
		)
		if err != nil {
			return fmt.Errorf("failed to record file %s: %w", f.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit journal: %w", err)
	}

	res.ID = id
	j.logger.Debug("journal recorded", zap.String("id", id), zap.String("path", original), zap.Int("files", len(res.Files)))
	return nil
}

// Last returns the most recent verified transaction that has not been undone.
func (j *Journal) Last(ctx context.Context) (*JournalEntry, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT id, original, backup, state, error, created_at, undone FROM transactions
		 WHERE state = ? AND undone = 0 ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		TxVerified.String(),
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNothingToUndo
	}
	if err != nil {
		return nil, err
	}
	if e.Files, err = j.files(ctx, e.ID); err != nil {
		return nil, err
	}
	return e, nil
}

func (j *Journal) MarkUndone(ctx context.Context, id string) error {
	if _, err := j.db.ExecContext(ctx, `UPDATE transactions SET undone = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to mark %s undone: %w", id, err)
	}
	return nil
}

// List returns up to limit transactions, newest first.
func (j *Journal) List(ctx context.Context, limit int) ([]JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, original, backup, state, error, created_at, undone FROM transactions
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].Files, err = j.files(ctx, entries[i].ID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (j *Journal) files(ctx context.Context, id string) ([]WrittenFile, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT path, hash, created, backup, backup_hash FROM files WHERE tx_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal files: %w", err)
	}
	defer rows.Close()

	var files []WrittenFile
	for rows.Next() {
		var f WrittenFile
		var created int
		if err := rows.Scan(&f.Path, &f.Hash, &created, &f.Backup, &f.BackupHash); err != nil {
			return nil, err
		}
		f.Created = created != 0
		files = append(files, f)
	}
	return files, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (*JournalEntry, error) {
	var e JournalEntry
	var created int64
	var undone int
	if err := r.Scan(&e.ID, &e.Original, &e.Backup, &e.State, &e.Error, &created, &undone); err != nil {
		return nil, err
	}
	e.CreatedAt = time.UnixMilli(created)
	e.Undone = undone != 0
	return &e, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
