package fsplit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupName(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 123_000_000, time.UTC)
	assert.Equal(t, "page.tsx-2024-03-09T14-05-07-123Z.backup", BackupName("page.tsx", ts))
}

func TestBackupRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"text", []byte("export const a = 1;\n")},
		{"empty", []byte{}},
		{"crlf with bom", []byte(utf8BOM + "a\r\nb\r\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			original := filepath.Join(dir, "src", "page.ts")
			mustWrite(t, original, string(tt.data))

			store := NewBackupStore(filepath.Join(dir, "backups"))
			rec, err := store.Create(original, tt.data)
			require.NoError(t, err)
			assert.Equal(t, HashBytes(tt.data), rec.Hash)

			mustWrite(t, original, "clobbered")
			require.NoError(t, store.Restore(OSFileSystem{}, rec))

			got, err := os.ReadFile(original)
			require.NoError(t, err)
			assert.Equal(t, tt.data, got)
		})
	}
}

func TestBackupCollisionMovesForward(t *testing.T) {
	dir := t.TempDir()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewBackupStore(dir)
	store.Now = func() time.Time { return fixed }

	first, err := store.Create("/x/page.ts", []byte("one"))
	require.NoError(t, err)
	second, err := store.Create("/x/page.ts", []byte("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first.BackupPath, second.BackupPath)
	assert.Equal(t, fixed.Add(time.Millisecond), second.Timestamp)
	assert.Equal(t, "one", mustRead(t, first.BackupPath))
	assert.Equal(t, "two", mustRead(t, second.BackupPath))
}

func TestBackupRestoreRejectsTamperedBackup(t *testing.T) {
	dir := t.TempDir()
	store := NewBackupStore(filepath.Join(dir, "backups"))
	rec, err := store.Create(filepath.Join(dir, "a.ts"), []byte("original"))
	require.NoError(t, err)

	mustWrite(t, rec.BackupPath, "tampered")
	err = store.Restore(OSFileSystem{}, rec)
	assert.ErrorContains(t, err, "does not match")
	assert.NoFileExists(t, filepath.Join(dir, "a.ts"))
}

func TestBackupCreateFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	mustWrite(t, blocker, "x")

	_, err := NewBackupStore(filepath.Join(blocker, "sub")).Create("a.ts", []byte("a"))
	var be *BackupError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, "a.ts", be.Path)
}
