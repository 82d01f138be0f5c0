package fsplit

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// SplitPlan is everything decided about one file before anything is written.
type SplitPlan struct {
	Path     string
	Buffer   *SourceBuffer
	Naming   Naming
	Blocks   []Block
	Warnings []ScanWarning
	Module   *ModulePlan
	Files    []OutputFile
}

func (p *SplitPlan) WarningStrings() []string {
	out := make([]string, len(p.Warnings))
	for i, w := range p.Warnings {
		out[i] = fmt.Sprintf("%s: %s", p.Path, w)
	}
	return out
}

type Splitter struct {
	rules  *Rules
	fs     FileSystem
	tm     *TransactionManager
	logger *zap.Logger
}

func NewSplitter(rules *Rules, fsys FileSystem, tm *TransactionManager, logger *zap.Logger) *Splitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Splitter{rules: rules, fs: fsys, tm: tm, logger: logger}
}

// Plan scans, classifies and synthesizes buf without touching storage.
func (s *Splitter) Plan(buf *SourceBuffer) *SplitPlan {
	blocks, warnings := Scan(buf, s.rules.Counting)
	for _, w := range warnings {
		s.logger.Warn("scan warning",
			zap.String("path", buf.Path),
			zap.Int("line", w.Line+1),
			zap.String("kind", string(w.Kind)),
		)
	}

	fc := &FileContext{DefaultExport: DefaultExportName(blocks), Rules: s.rules}
	module := BuildPlan(blocks, fc)
	naming := NewNaming(buf.Path, s.rules.Layout)

	s.logger.Debug("planned",
		zap.String("path", buf.Path),
		zap.Int("lines", len(buf.Lines)),
		zap.Int("blocks", len(blocks)),
		zap.String("default", fc.DefaultExport),
	)
	return &SplitPlan{
		Path:     buf.Path,
		Buffer:   buf,
		Naming:   naming,
		Blocks:   blocks,
		Warnings: warnings,
		Module:   module,
		Files:    Synthesize(module, naming),
	}
}

// Oversized reports whether buf exceeds the line threshold.
func (s *Splitter) Oversized(buf *SourceBuffer) bool {
	return len(buf.Lines) > s.rules.MaxLines
}

// SplitFile splits the file at path when it exceeds the line threshold.
func (s *Splitter) SplitFile(ctx context.Context, path string) (*TransactionResult, *SplitPlan, error) {
	if !s.rules.Supports(path) {
		return nil, nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
	}
	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	buf, err := NewSourceBuffer(path, data)
	if err != nil {
		return nil, nil, err
	}

	if !s.Oversized(buf) {
		s.logger.Info("below threshold", zap.String("path", path), zap.Int("lines", len(buf.Lines)))
		return &TransactionResult{Success: true, Skipped: true}, nil, nil
	}

	plan := s.Plan(buf)
	if plan.Module.BlockCount() == 0 {
		s.logger.Info("nothing to split", zap.String("path", path))
		return &TransactionResult{Success: true, Warnings: plan.WarningStrings()}, plan, nil
	}

	res, err := s.tm.Commit(ctx, buf, data, plan.Files)
	if res != nil {
		res.Warnings = plan.WarningStrings()
	}
	return res, plan, err
}
