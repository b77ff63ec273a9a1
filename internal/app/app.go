package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"cljblock/internal/codeblock"
	"cljblock/internal/config"
	"cljblock/internal/document"
	"cljblock/internal/errx"
	"cljblock/internal/output"
	"cljblock/internal/render"
	"cljblock/internal/runner"
)

// ChangeWatcher reports whether a note changed while an interpreter ran.
type ChangeWatcher interface {
	Close() (changed bool, err error)
}

// WatchFunc starts a ChangeWatcher for a note.
type WatchFunc func(path string) (ChangeWatcher, error)

// WatchNotes is the WatchFunc backed by filesystem notifications.
func WatchNotes(path string) (ChangeWatcher, error) {
	w, err := document.Watch(path)
	if err != nil {
		return nil, err
	}
	return w, nil
}

// App wires the locator, validator and executor together.
type App struct {
	ConfigStore config.Store
	Documents   document.Manager
	Runner      runner.Runner
	Output      output.Printer
	Logger      zerolog.Logger

	// Watch is optional. It records edits made to the note while a block
	// runs, for the log; the note is re-read before output is inserted either
	// way.
	Watch WatchFunc
}

// ExecuteOptions selects the note and cursor for Execute.
type ExecuteOptions struct {
	Path string

	// Offset is the cursor as a byte offset. It is used when Line is zero.
	Offset int

	// Line and Col are a 1-based cursor position, Col counted in characters.
	Line int
	Col  int

	// Root overrides the note collection root. Default: nearest ancestor
	// holding .obsidian, else the note's directory.
	Root string

	// DryRun runs the interpreter and prints what would be inserted without
	// touching the note.
	DryRun bool

	// MaxChars overrides the truncation threshold used when limit_output is on.
	MaxChars int
}

func New(deps App) *App {
	return &deps
}

// Execute runs the block under the cursor and writes its output back after
// the block as comment lines.
func (a *App) Execute(ctx context.Context, opts ExecuteOptions) error {
	cfg, err := a.ConfigStore.Load(ctx)
	if err != nil {
		return err
	}

	// The watch covers the first read.
	watch := a.startWatch(opts.Path)
	defer watch.stop()

	doc, err := a.Documents.Load(ctx, opts.Path)
	if err != nil {
		return err
	}

	offset := opts.Offset
	if opts.Line > 0 {
		col := opts.Col
		if col < 1 {
			col = 1
		}
		if offset, err = document.OffsetAt(doc.Text, opts.Line, col); err != nil {
			return err
		}
	}

	block, ok := codeblock.Locate(doc.Text, offset)
	if !ok {
		a.Logger.Info().Str("path", doc.Path).Int("offset", offset).Msg("no code block at cursor")
		return a.Output.Notice(ctx, "No clojure or clojurescript code block at cursor.")
	}
	log := a.Logger.With().
		Str("path", doc.Path).
		Str("language", string(block.Language)).
		Int("line", block.Line(doc.Text)).
		Logger()

	if err := config.Validate(block.Language, cfg); err != nil {
		log.Warn().Err(err).Msg("settings incomplete")
		return err
	}

	root := strings.TrimSpace(opts.Root)
	if root == "" {
		if root, err = document.FindRoot(doc.Path); err != nil {
			return err
		}
	}

	inv, err := runner.BuildInvocation(block, cfg, root)
	if err != nil {
		log.Error().Err(err).Msg("build invocation")
		return err
	}
	log.Debug().Str("dir", inv.Dir).Str("command", inv.String()).Msg("starting interpreter")

	res := <-a.Runner.Start(ctx, inv)
	if watch.stop() {
		log.Info().Msg("note changed while the interpreter ran")
	}

	log = log.With().Dur("duration", res.Duration).Str("outcome", res.Outcome().String()).Logger()
	switch res.Outcome() {
	case runner.OutcomeFailure:
		err := res.Err
		if stderr := strings.TrimSpace(res.Stderr); stderr != "" {
			err = fmt.Errorf("%w\n%s", err, stderr)
		}
		log.Error().Err(res.Err).Str("stderr", res.Stderr).Msg("interpreter failed")
		return errx.Execution(err)

	case runner.OutcomeDiagnostic:
		log.Error().Str("stderr", res.Stderr).Msg("interpreter wrote to stderr")
		stderr := strings.TrimSpace(res.Stderr)
		if stderr == "" {
			stderr = res.Stderr
		}
		return errx.Diagnostic(stderr)

	case runner.OutcomeEmpty:
		log.Info().Msg("no output")
		return a.Output.Notice(ctx, "No output.")
	}

	text := render.CommentOutput(res.Stdout, render.Options{Limit: cfg.LimitOutput, MaxChars: opts.MaxChars})

	target, insertAt, err := a.reresolve(ctx, doc, block)
	if err != nil {
		log.Error().Err(err).Msg("re-resolve insertion point")
		return err
	}

	ins := output.Insertion{
		Path:     doc.Path,
		Language: string(block.Language),
		Line:     strings.Count(target.Text[:insertAt], "\n") + 1,
		Text:     text,
		DryRun:   opts.DryRun,
	}
	if opts.DryRun {
		return a.Output.PrintInsertion(ctx, ins)
	}

	updated, err := target.Insert(insertAt, text)
	if err != nil {
		return err
	}
	if err := a.Documents.Save(ctx, updated); err != nil {
		log.Error().Err(err).Msg("write output")
		return err
	}
	log.Info().Int("bytes", len(text)).Msg("output inserted")
	return a.Output.PrintInsertion(ctx, ins)
}

// noteWatch wraps an optional ChangeWatcher so it can be stopped from any
// return path.
type noteWatch struct {
	w       ChangeWatcher
	stopped bool
	changed bool
}

func (a *App) startWatch(path string) *noteWatch {
	if a.Watch == nil {
		return &noteWatch{}
	}
	w, err := a.Watch(path)
	if err != nil {
		a.Logger.Debug().Err(err).Str("path", path).Msg("change watch unavailable")
		return &noteWatch{}
	}
	return &noteWatch{w: w}
}

// stop closes the watcher once and reports whether the note changed. An
// unwatched note reports false.
func (nw *noteWatch) stop() bool {
	if nw.w == nil || nw.stopped {
		return nw.changed
	}
	nw.stopped = true
	changed, err := nw.w.Close()
	nw.changed = changed || err != nil
	return nw.changed
}

// reresolve re-reads the note and finds the block again if the text moved.
func (a *App) reresolve(ctx context.Context, doc document.Document, block codeblock.Block) (document.Document, int, error) {
	cur, err := a.Documents.Load(ctx, doc.Path)
	if err != nil {
		return document.Document{}, 0, err
	}
	if cur.Text == doc.Text {
		return cur, block.InsertAt, nil
	}
	moved, ok := codeblock.Relocate(cur.Text, block)
	if !ok {
		return document.Document{}, 0, fmt.Errorf("%s: %w", doc.Path, errx.ErrDocumentChanged)
	}
	return cur, moved.InsertAt, nil
}

// SetConfig applies and persists one settings edit.
func (a *App) SetConfig(ctx context.Context, key, value string) error {
	cfg, err := a.ConfigStore.Load(ctx)
	if err != nil {
		return err
	}
	if cfg, err = config.Set(cfg, key, value); err != nil {
		return err
	}
	if err := a.ConfigStore.Save(ctx, cfg); err != nil {
		return err
	}
	a.Logger.Info().Str("key", key).Msg("setting saved")
	return a.Output.Notice(ctx, fmt.Sprintf("%s saved", key))
}

// ShowConfig prints the effective settings. path is shown for reference.
func (a *App) ShowConfig(ctx context.Context, path string) error {
	cfg, err := a.ConfigStore.Load(ctx)
	if err != nil {
		return err
	}
	return a.Output.PrintConfig(ctx, path, config.Fields(cfg))
}
