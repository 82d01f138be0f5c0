package fsplit

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAppDryRunPrintsPlanWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "dashboard.tsx")
	small := filepath.Join(dir, "small.ts")
	mustWrite(t, big, dashboardSource)
	mustWrite(t, small, "export const a = 1;\n")

	cfg := DefaultConfig()
	cfg.MaxLines = 5
	var out bytes.Buffer
	app, err := NewApp(cfg, &Options{Files: []string{big, small, filepath.Join(dir, "missing.ts")}, DryRun: true, Out: &out}, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer app.Close()

	s, err := app.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Dry run: nothing written", s.Message)
	assert.Len(t, s.Skipped, 1)
	assert.Len(t, s.Failed, 1)
	assert.Contains(t, out.String(), "dashboard-main.tsx [Main]")
	assert.Equal(t, dashboardSource, mustRead(t, big))
	assert.NoFileExists(t, filepath.Join(dir, "dashboard-main.tsx"))
}

func TestAppRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Layout = "sideways"
	_, err := NewApp(cfg, &Options{DryRun: true}, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestAnalyze(t *testing.T) {
	plan, err := Analyze("dashboard.tsx", dashboardSource, DefaultConfig())
	require.NoError(t, err)
	assert.Len(t, plan.Files, 7)
	assert.Equal(t, "Dashboard", plan.Module.DefaultExport)

	_, err = Analyze("bin.ts", string([]byte{0xff}), DefaultConfig())
	assert.ErrorIs(t, err, ErrNotUTF8)
}

func TestDescribeResult(t *testing.T) {
	assert.Contains(t, describeResult("a.ts", &TransactionResult{Success: true, Skipped: true}), "within the line limit")
	assert.Contains(t, describeResult("a.ts", &TransactionResult{Success: true}), "no declarations")
	assert.Contains(t, describeResult("a.ts", &TransactionResult{State: TxRolledBack, Error: "boom"}), "rolled back: boom")

	out := describeResult("a.ts", &TransactionResult{
		Success:      true,
		Backup:       &BackupRecord{BackupPath: "/b/a.ts.backup"},
		WrittenFiles: []string{"a-types.ts", "a.ts"},
		Warnings:     []string{"a.ts: line 3: odd"},
	})
	assert.Contains(t, out, "backup /b/a.ts.backup")
	assert.Contains(t, out, "  a-types.ts\n")
	assert.Contains(t, out, "warning: a.ts: line 3: odd")
}

func TestRenderPlanForTool(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.tsx")
	mustWrite(t, path, dashboardSource)

	out, err := renderPlan(path, DefaultConfig())
	require.NoError(t, err)
	assert.Contains(t, out, "[Utilities]")

	_, err = renderPlan(filepath.Join(t.TempDir(), "absent.tsx"), DefaultConfig())
	assert.Error(t, err)
}
