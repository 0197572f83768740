package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/harrison/todoscan/internal/config"
	"github.com/harrison/todoscan/internal/display"
	"github.com/harrison/todoscan/internal/fileutil"
	"github.com/harrison/todoscan/internal/filelock"
	"github.com/harrison/todoscan/internal/history"
	"github.com/harrison/todoscan/internal/logger"
	"github.com/harrison/todoscan/internal/models"
	"github.com/harrison/todoscan/internal/scanner"
	"github.com/harrison/todoscan/internal/todo"
)

// runScan implements the root command: bootstrap and load the
// configuration, then scan the requested directory.
func runScan(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config-file")
	directory, _ := cmd.Flags().GetString("directory")
	noRecursion, _ := cmd.Flags().GetBool("no-recursion")
	verbose, _ := cmd.Flags().GetBool("verbose")

	overrides := config.Overrides{NoRecursion: noRecursion, Verbose: verbose}
	if cmd.Flags().Changed("output") {
		output, _ := cmd.Flags().GetString("output")
		overrides.Output = &output
	}

	created, err := config.Bootstrap(configPath)
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		display.WarnInvalidConfig(configPath, err).Display(cmd.ErrOrStderr())
		return err
	}
	cfg.MergeWithFlags(overrides)

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if created {
		log.LogInfo(fmt.Sprintf("Created default configuration %s", configPath))
	}

	return scanDirectory(cmd.Context(), scanRequest{
		fs:     afero.NewOsFs(),
		cfg:    cfg,
		root:   directory,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
		log:    log,
	})
}

type scanRequest struct {
	fs     afero.Fs
	cfg    *config.Config
	root   string
	stdout io.Writer
	stderr io.Writer
	log    *logger.ConsoleLogger
}

// scanDirectory runs one scan. The todo file is locked for the whole run and
// closed before the summary is logged.
func scanDirectory(ctx context.Context, req scanRequest) error {
	cfg, log := req.cfg, req.log
	if ctx == nil {
		ctx = context.Background()
	}

	if err := scanner.CheckRoot(req.fs, req.root); err != nil {
		display.WarnRootUnreadable(req.root, err).Display(req.stderr)
		return err
	}

	absRoot, err := filepath.Abs(req.root)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", req.root, err)
	}

	sink := req.stdout
	seen := todo.NewTaskSet()
	var closeSink func() error

	if cfg.Filename != "" {
		lock, err := filelock.Acquire(cfg.Filename)
		if err != nil {
			if errors.Is(err, filelock.ErrLocked) {
				display.WarnOutputLocked(cfg.Filename, filelock.LockPath(cfg.Filename)).Display(req.stderr)
			}
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				log.LogWarn(err.Error())
			}
		}()

		if !cfg.ForceOverwrite {
			seen, err = todo.LoadTaskSet(req.fs, cfg.Filename)
			if err != nil {
				return err
			}
			log.LogDebug(fmt.Sprintf("Loaded %d existing tasks from %s", seen.Len(), cfg.Filename))
		}

		flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
		if cfg.ForceOverwrite {
			flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
		}
		f, err := req.fs.OpenFile(cfg.Filename, flags, 0644)
		if err != nil {
			return fmt.Errorf("open todo file: %w", err)
		}
		w := bufio.NewWriter(f)
		sink = w
		closeSink = func() error {
			if err := w.Flush(); err != nil {
				f.Close()
				return fmt.Errorf("flush todo file: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close todo file: %w", err)
			}
			return nil
		}
	}

	opts := todo.FormatOptions{Tags: cfg.Tags, Location: cfg.LocationRule()}
	if cfg.TagWithProject {
		opts.Project = filepath.Base(absRoot)
	}
	formatter := todo.NewFormatter(sink, seen, opts)

	recorder := openRecorder(ctx, cfg.HistoryDB, absRoot, cfg.Filename, log)
	defer recorder.close()

	s := scanner.New(req.fs, scanner.Options{
		Recursive: cfg.Recursive,
		Filter: fileutil.NewPathFilter(req.fs, fileutil.FilterOptions{
			Exclude:    cfg.ExcludeRules(),
			Include:    cfg.IncludeRules(),
			OutputFile: cfg.Filename,
			ConfigFile: cfg.Path,
		}),
		Matcher:   cfg.Matcher(),
		Formatter: formatter,
		Logger:    log,
		OnEntry:   recorder.record,
	})

	log.LogInfo(fmt.Sprintf("Scanning %s", req.root))
	result, scanErr := s.Scan(ctx, req.root)

	if closeSink != nil {
		if err := closeSink(); err != nil && scanErr == nil {
			scanErr = err
		}
	}
	recorder.finish(result, scanErr)
	log.LogSummary(result)

	if scanErr != nil {
		log.LogError(fmt.Sprintf("Scan of %s stopped after %d entries: %v", req.root, result.EntriesWritten, scanErr))
		return fmt.Errorf("scan failed: %w", scanErr)
	}

	if cfg.PrintResult && cfg.Filename != "" {
		content, err := afero.ReadFile(req.fs, cfg.Filename)
		if err != nil {
			return fmt.Errorf("read todo file: %w", err)
		}
		display.DisplayResult(req.stdout, cfg.Filename, content)
	}
	return nil
}

// runRecorder writes the run to the history database. Every failure is
// logged once and disables further recording; history never fails a scan.
type runRecorder struct {
	ctx   context.Context
	store *history.Store
	run   *history.Run
	log   *logger.ConsoleLogger
}

func openRecorder(ctx context.Context, dbPath, root, output string, log *logger.ConsoleLogger) *runRecorder {
	r := &runRecorder{ctx: ctx, log: log}
	if dbPath == "" {
		return r
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		log.LogWarn(fmt.Sprintf("History disabled: %v", err))
		return r
	}
	run, err := store.StartRun(ctx, root, output)
	if err != nil {
		log.LogWarn(fmt.Sprintf("History disabled: %v", err))
		store.Close()
		return r
	}

	log.LogDebug(fmt.Sprintf("Recording run %s in %s", run.ID, dbPath))
	r.store, r.run = store, run
	return r
}

func (r *runRecorder) record(e todo.Entry) {
	if r.run == nil {
		return
	}
	if err := r.store.RecordEntry(r.ctx, r.run.ID, e); err != nil {
		r.log.LogWarn(fmt.Sprintf("History disabled: %v", err))
		r.run = nil
	}
}

func (r *runRecorder) finish(result models.ScanResult, scanErr error) {
	if r.run == nil {
		return
	}
	// The scan context may already be cancelled.
	if err := r.store.FinishRun(context.Background(), r.run, result, scanErr); err != nil {
		r.log.LogWarn(fmt.Sprintf("Failed to record run: %v", err))
	}
}

func (r *runRecorder) close() {
	if r.store != nil {
		r.store.Close()
	}
}
