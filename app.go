package fsplit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"

	"go.uber.org/zap"
)

// Options selects what one App run does.
type Options struct {
	Files      []string
	DryRun     bool
	Undo       bool
	History    bool
	Nvim       bool
	Extensions []string
	Out        io.Writer
}

// printsOutput reports whether the run writes plans or history to Out.
func (o *Options) printsOutput() bool {
	return o.History || o.DryRun || (len(o.Files) == 0 && !o.Undo)
}

type ProgressUpdate func(current, total int)

const historyLimit = 20

type App struct {
	opts             *Options
	rules            *Rules
	logger           *zap.Logger
	pathResolver     *PathResolver
	sourceProvider   *SourceProvider
	fs               FileSystem
	backups          *BackupStore
	journal          *Journal
	splitter         *Splitter
	progressCallback ProgressUpdate
	closers          []func()
}

func NewApp(cfg *Config, opts *Options, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	rules, err := cfg.Compile()
	if err != nil {
		return nil, err
	}

	pr, err := NewPathResolver()
	if err != nil {
		return nil, err
	}

	a := &App{
		opts:           opts,
		rules:          rules,
		logger:         logger,
		pathResolver:   pr,
		sourceProvider: NewSourceProvider(),
		fs:             OSFileSystem{},
	}

	needsState := !opts.DryRun && (opts.Undo || opts.History || len(opts.Files) > 0)
	if needsState {
		stateDir, err := StateDir()
		if err != nil {
			return nil, err
		}
		backupDir := rules.BackupDir
		if backupDir == "" {
			backupDir = filepath.Join(stateDir, "backups")
		}
		a.backups = NewBackupStore(pr.Resolve(backupDir))

		j, err := OpenJournal(stateDir, logger)
		if err != nil {
			return nil, err
		}
		a.journal = j
		a.closers = append(a.closers, func() { j.Close() })
	}

	if opts.Nvim && needsState {
		nfs, err := NewNvimFileSystem()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to nvim: %w", err)
		}
		a.fs = nfs
		a.closers = append(a.closers, nfs.Close)
	}

	tm := NewTransactionManager(a.fs, a.backups, rules.Counting, logger)
	a.splitter = NewSplitter(rules, a.fs, tm, logger)
	return a, nil
}

func (a *App) SetProgressCallback(cb ProgressUpdate) { a.progressCallback = cb }

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) Execute(ctx context.Context) (summary Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{Err: fmt.Errorf("panic: %v", r), Stack: debug.Stack()}
		}
	}()

	switch {
	case a.opts.Undo:
		return a.undoLastSplit(ctx)
	case a.opts.History:
		return a.printHistory(ctx)
	case len(a.opts.Files) == 0:
		return a.analyzeContent()
	case a.opts.DryRun:
		return a.planFiles(ctx)
	default:
		return a.splitFiles(ctx)
	}
}

// SplitPath runs one file through the splitter and records the outcome.
func (a *App) SplitPath(ctx context.Context, path string) (*TransactionResult, *SplitPlan, error) {
	res, plan, err := a.splitter.SplitFile(ctx, path)
	if res != nil && res.Backup != nil && a.journal != nil {
		if jerr := a.journal.Record(ctx, path, res); jerr != nil {
			a.logger.Error("journal write failed", zap.String("path", path), zap.Error(jerr))
		}
	}
	return res, plan, err
}

func (a *App) splitFiles(ctx context.Context) (Summary, error) {
	var s Summary
	total := len(a.opts.Files)
	for i, f := range a.opts.Files {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		path := a.pathResolver.Resolve(f)

		res, _, err := a.SplitPath(ctx, path)
		var rbErr *RollbackError
		var bkErr *BackupError
		switch {
		case errors.As(err, &rbErr), errors.As(err, &bkErr):
			s.Failed = append(s.Failed, path)
			a.relativizeSummaryPaths(&s)
			return s, err
		case err != nil:
			a.logger.Warn("skipping file", zap.String("path", path), zap.Error(err))
			s.Failed = append(s.Failed, path)
			s.Warnings = append(s.Warnings, err.Error())
		case res.Skipped:
			s.Skipped = append(s.Skipped, path)
		case res.Success && res.Backup == nil:
			s.Skipped = append(s.Skipped, path)
			s.Warnings = append(s.Warnings, res.Warnings...)
		case res.Success:
			s.Split = append(s.Split, path)
			for _, wf := range res.Files {
				if wf.Created {
					s.Created = append(s.Created, wf.Path)
				}
			}
			s.Warnings = append(s.Warnings, res.Warnings...)
		default:
			s.Failed = append(s.Failed, path)
			s.Warnings = append(s.Warnings, res.Warnings...)
			s.Warnings = append(s.Warnings, fmt.Sprintf("%s: rolled back: %s", path, res.Error))
		}
		a.reportProgress(i+1, total)
	}

	s.Message = fmt.Sprintf("Split %d of %d file(s)", len(s.Split), total)
	a.relativizeSummaryPaths(&s)
	return s, nil
}

func (a *App) planFiles(ctx context.Context) (Summary, error) {
	var s Summary
	for _, f := range a.opts.Files {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		path := a.pathResolver.Resolve(f)
		buf, err := LoadSource(a.fs, path)
		if err != nil {
			s.Failed = append(s.Failed, path)
			s.Warnings = append(s.Warnings, err.Error())
			continue
		}
		if !a.splitter.Oversized(buf) {
			s.Skipped = append(s.Skipped, path)
			continue
		}
		plan := a.splitter.Plan(buf)
		if err := PrintPlan(a.opts.Out, plan, a.pathResolver); err != nil {
			return s, err
		}
		s.Warnings = append(s.Warnings, plan.WarningStrings()...)
	}
	s.Message = "Dry run: nothing written"
	a.relativizeSummaryPaths(&s)
	return s, nil
}

func (a *App) analyzeContent() (Summary, error) {
	content, err := a.sourceProvider.GetContent()
	if err != nil || content == "" {
		return Summary{Message: "Empty source"}, err
	}

	snippets, err := ExtractSnippets(content, a.opts.Extensions)
	if err != nil {
		return Summary{}, err
	}
	for _, sn := range snippets {
		buf, err := NewSourceBuffer(sn.Path, []byte(sn.Content))
		if err != nil {
			return Summary{}, err
		}
		if err := PrintPlan(a.opts.Out, a.splitter.Plan(buf), a.pathResolver); err != nil {
			return Summary{}, err
		}
	}
	return Summary{Message: fmt.Sprintf("Analyzed %d snippet(s)", len(snippets))}, nil
}

func (a *App) undoLastSplit(ctx context.Context) (Summary, error) {
	u := NewUndoer(a.fs, a.journal, a.backups, a.logger)
	s, err := u.Undo(ctx)
	if errors.Is(err, ErrNothingToUndo) {
		return Summary{Message: "No undo"}, nil
	}
	if err == nil {
		s.Message = "Undone"
	}
	a.relativizeSummaryPaths(&s)
	return s, err
}

// History returns the most recent journal entries.
func (a *App) History(ctx context.Context) ([]JournalEntry, error) {
	return a.journal.List(ctx, historyLimit)
}

func (a *App) printHistory(ctx context.Context) (Summary, error) {
	entries, err := a.History(ctx)
	if err != nil {
		return Summary{}, err
	}
	if len(entries) == 0 {
		return Summary{Message: "No history"}, nil
	}
	fmt.Fprint(a.opts.Out, FormatHistory(entries, a.pathResolver))
	return Summary{}, nil
}

func (a *App) reportProgress(current, total int) {
	if a.progressCallback != nil {
		a.progressCallback(current, total)
	}
}

func (a *App) relativizeSummaryPaths(s *Summary) {
	relList := func(paths []string) []string {
		var res []string
		for _, p := range paths {
			res = append(res, a.pathResolver.Relative(p))
		}
		return res
	}
	s.Split = relList(s.Split)
	s.Created = relList(s.Created)
	s.Skipped = relList(s.Skipped)
	s.Restored = relList(s.Restored)
	s.Deleted = relList(s.Deleted)
	s.Failed = relList(s.Failed)
}
