package fsplit

import (
	"context"
	"fmt"
	"io"
)

// Split splits the file at path and records the transaction in the journal.
func Split(ctx context.Context, path string, cfg *Config) (*TransactionResult, error) {
	app, err := NewApp(cfg, &Options{Files: []string{path}, Out: io.Discard}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fsplit: %w", err)
	}
	defer app.Close()

	res, _, err := app.SplitPath(ctx, app.pathResolver.Resolve(path))
	return res, err
}

// Analyze plans content as if it were the file name, without writing anything.
func Analyze(name, content string, cfg *Config) (*SplitPlan, error) {
	rules, err := cfg.Compile()
	if err != nil {
		return nil, err
	}
	buf, err := NewSourceBuffer(name, []byte(content))
	if err != nil {
		return nil, err
	}
	return NewSplitter(rules, OSFileSystem{}, nil, nil).Plan(buf), nil
}

// Undo reverts the most recent split.
func Undo(ctx context.Context, cfg *Config) (Summary, error) {
	app, err := NewApp(cfg, &Options{Undo: true, Out: io.Discard}, nil)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to initialize fsplit: %w", err)
	}
	defer app.Close()
	return app.Execute(ctx)
}
