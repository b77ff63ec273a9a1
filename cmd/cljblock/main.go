package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"cljblock/internal/app"
	"cljblock/internal/config"
	"cljblock/internal/document"
	"cljblock/internal/errx"
	"cljblock/internal/logging"
	"cljblock/internal/output"
	"cljblock/internal/runner"
)

const kVersion = "0.1.0"

type globalOptions struct {
	ConfigPath string
	LogDir     string
	LogLevel   string
	Verbose    bool
	JSON       bool
}

// usageError marks errors caused by bad arguments.
type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

func main() {
	// Optional: lets CLJBLOCK_* overrides live in a .env beside the notes.
	_ = godotenv.Load()
	os.Exit(realMain(os.Args, os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var opts globalOptions
	pr := output.NewStdPrinter(stdout, stderr, false)
	logger := zerolog.Nop()

	onUsageError := func(c *cli.Context, err error, isSubcommand bool) error {
		return usageError{err}
	}

	cliApp := &cli.App{
		Name:            "cljblock",
		Usage:           "run clojure and clojurescript code blocks in markdown notes",
		Version:         kVersion,
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		Suggest:         true,
		Flags:           globalFlags(&opts),
		OnUsageError:    onUsageError,
		ExitErrHandler:  func(*cli.Context, error) {},
		Before: func(c *cli.Context) error {
			pr.JSON = opts.JSON
			logDir := strings.TrimSpace(opts.LogDir)
			if logDir == "" {
				// No cache dir means no log file; the command still runs.
				logDir, _ = config.DefaultLogDir()
			}
			logger = logging.New(logging.Config{
				Level:   opts.LogLevel,
				Console: opts.Verbose,
				Stderr:  stderrFile(stderr),
				Dir:     logDir,
			})
			return nil
		},
		Action: func(c *cli.Context) error {
			if c.Args().Present() {
				return usageError{fmt.Errorf("unknown command: %s", c.Args().First())}
			}
			_ = cli.ShowAppHelp(c)
			return usageError{errors.New("missing command")}
		},
	}

	deps := func() (*app.App, *config.FileStore, error) {
		cfgPath, err := resolveConfigPath(opts.ConfigPath)
		if err != nil {
			return nil, nil, err
		}
		store := config.NewFileStore(cfgPath)
		a := app.New(app.App{
			ConfigStore: store,
			Documents:   document.NewFSManager(),
			Runner:      runner.NewProcessRunner(),
			Output:      pr,
			Logger:      logger,
			Watch:       app.WatchNotes,
		})
		return a, store, nil
	}
	cliApp.Commands = []*cli.Command{
		execCommand(deps, onUsageError),
		blocksCommand(deps, onUsageError),
		configCommand(deps, pr, onUsageError),
	}

	err := cliApp.RunContext(ctx, args)
	if err == nil {
		return errx.ExitOK
	}

	_ = pr.PrintError(ctx, err)
	var ue usageError
	if errors.As(err, &ue) {
		return errx.ExitUsage
	}
	return errx.ExitCode(err)
}

type depsFunc func() (*app.App, *config.FileStore, error)

func globalFlags(opts *globalOptions) []cli.Flag {
	return []cli.Flag{
		newGlobalStringFlag("config-path", "c", "settings file (.yaml or .toml)", "", &opts.ConfigPath),
		newGlobalStringFlag("log-dir", "", "directory for the rolling log file", "", &opts.LogDir),
		newGlobalStringFlag("log-level", "", "log level: WARN, INFO, DEBUG, TRACE", "INFO", &opts.LogLevel),
		newGlobalBoolFlag("verbose", "", "also write log lines to stderr", false, &opts.Verbose),
		newGlobalBoolFlag("json", "", "emit JSON output", false, &opts.JSON),
	}
}

func execCommand(deps depsFunc, onUsageError cli.OnUsageErrorFunc) *cli.Command {
	return &cli.Command{
		Name:         "exec",
		Usage:        "run the code block under the cursor and insert its output after the block",
		ArgsUsage:    "<note.md>",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			newIntFlag("offset", "o", "cursor byte offset", 0),
			newIntFlag("line", "l", "cursor line (1-based)", 0),
			newIntFlag("col", "", "cursor column in characters (1-based)", 1),
			newStringFlag("root", "r", "note collection root (default: nearest dir with .obsidian)", ""),
			newBoolFlag("dry-run", "n", "print the output instead of writing it", false),
			newIntFlag("max-chars", "", "truncation threshold when limit_output is on", 0),
		},
		Action: func(c *cli.Context) error {
			if c.Args().Len() != 1 {
				return usageError{errors.New("exec: expected exactly one <note.md>")}
			}
			if !c.IsSet("offset") && !c.IsSet("line") {
				return usageError{errors.New("exec: one of --offset or --line is required")}
			}
			if c.IsSet("offset") && c.IsSet("line") {
				return usageError{errors.New("exec: --offset and --line are mutually exclusive")}
			}
			if c.Int("offset") < 0 {
				return usageError{errors.New("exec: --offset must be >= 0")}
			}

			a, _, err := deps()
			if err != nil {
				return err
			}
			return a.Execute(c.Context, app.ExecuteOptions{
				Path:     c.Args().First(),
				Offset:   c.Int("offset"),
				Line:     c.Int("line"),
				Col:      c.Int("col"),
				Root:     c.String("root"),
				DryRun:   c.Bool("dry-run"),
				MaxChars: c.Int("max-chars"),
			})
		},
	}
}

func blocksCommand(deps depsFunc, onUsageError cli.OnUsageErrorFunc) *cli.Command {
	return &cli.Command{
		Name:         "blocks",
		Usage:        "list clojure and clojurescript code blocks in notes",
		ArgsUsage:    "[pattern...] (default: " + document.DefaultPattern + ")",
		OnUsageError: onUsageError,
		Flags: []cli.Flag{
			newStringFlag("root", "r", "directory the patterns are relative to", "."),
			newIntFlag("workers", "w", "notes scanned in parallel", 0),
		},
		Action: func(c *cli.Context) error {
			a, _, err := deps()
			if err != nil {
				return err
			}
			return a.ListBlocks(c.Context, app.ListOptions{
				Root:     c.String("root"),
				Patterns: c.Args().Slice(),
				Workers:  c.Int("workers"),
			})
		},
	}
}

func configCommand(deps depsFunc, pr *output.StdPrinter, onUsageError cli.OnUsageErrorFunc) *cli.Command {
	return &cli.Command{
		Name:         "config",
		Usage:        "show or edit settings",
		OnUsageError: onUsageError,
		Action: func(c *cli.Context) error {
			return usageError{errors.New("config: missing subcommand (init|show|set)")}
		},
		Subcommands: []*cli.Command{
			{
				Name:         "init",
				Usage:        "write a settings file",
				OnUsageError: onUsageError,
				Flags: []cli.Flag{
					newStringFlag("bb", "", "babashka executable", "bb"),
					newStringFlag("nbb", "", "nbb script run by node", ""),
					newStringFlag("node", "", "node executable", "node"),
					newStringFlag("working-dir", "", "interpreter working dir, relative to the note root", ""),
					newBoolFlag("force", "f", "overwrite an existing settings file", false),
				},
				Action: func(c *cli.Context) error {
					_, store, err := deps()
					if err != nil {
						return err
					}
					return runConfigInit(c, store, pr)
				},
			},
			{
				Name:         "show",
				Usage:        "print the effective settings",
				OnUsageError: onUsageError,
				Action: func(c *cli.Context) error {
					a, store, err := deps()
					if err != nil {
						return err
					}
					return a.ShowConfig(c.Context, store.Path)
				},
			},
			{
				Name:         "set",
				Usage:        "change one setting (" + strings.Join(config.Keys, ", ") + ")",
				ArgsUsage:    "<key> <value>",
				OnUsageError: onUsageError,
				Action: func(c *cli.Context) error {
					if c.Args().Len() != 2 {
						return usageError{errors.New("config set: expected <key> <value>")}
					}
					a, _, err := deps()
					if err != nil {
						return err
					}
					return a.SetConfig(c.Context, c.Args().Get(0), c.Args().Get(1))
				},
			},
		},
	}
}

func runConfigInit(c *cli.Context, store *config.FileStore, pr *output.StdPrinter) error {
	if _, err := os.Stat(store.Path); err == nil && !c.Bool("force") {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", store.Path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat config %s: %w", store.Path, err)
	}

	cfg := config.Defaults()
	cfg.BBPath = c.String("bb")
	cfg.NBBPath = c.String("nbb")
	cfg.NodePath = c.String("node")
	cfg.WorkingDir = c.String("working-dir")
	if err := store.Save(c.Context, cfg); err != nil {
		return err
	}

	if err := pr.Notice(c.Context, fmt.Sprintf("wrote config: %s", store.Path)); err != nil {
		return err
	}
	if cfg.NBBPath == "" {
		return pr.Notice(c.Context, "note: set nbb_path to run clojurescript blocks (cljblock config set nbb_path <path>)")
	}
	return nil
}

func resolveConfigPath(flagValue string) (string, error) {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p, nil
	}
	p, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return p, nil
}

// stderrFile returns w as an *os.File when it is one, for terminal detection.
func stderrFile(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
