package fsplit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lithammer/dedent"
	"github.com/stretchr/testify/require"
)

// source dedents a raw test fixture and drops its leading newline.
func source(s string) string {
	return strings.TrimPrefix(dedent.Dedent(s), "\n")
}

func mustBuffer(t *testing.T, path, text string) *SourceBuffer {
	t.Helper()
	buf, err := NewSourceBuffer(path, []byte(text))
	require.NoError(t, err)
	return buf
}

func mustRules(t *testing.T, mutate func(*Config)) *Rules {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(cfg)
	}
	rules, err := cfg.Compile()
	require.NoError(t, err)
	return rules
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
