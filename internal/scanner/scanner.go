// Package scanner walks a directory tree and turns annotated source lines
// into todo entries.
//
// The walk is depth-first in directory listing order and uses an explicit
// stack, so deep trees do not grow the goroutine stack. Directories reached
// through symbolic links are entered at most once.
package scanner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/harrison/todoscan/internal/fileutil"
	"github.com/harrison/todoscan/internal/logger"
	"github.com/harrison/todoscan/internal/models"
	"github.com/harrison/todoscan/internal/todo"
)

var (
	// ErrRootUnreadable is returned when the scan root cannot be listed.
	ErrRootUnreadable = errors.New("scan directory cannot be read")
	// ErrAlreadyScanned is returned when Scan is called on a used Scanner.
	ErrAlreadyScanned = errors.New("scanner has already run")
)

// State is the lifecycle state of a Scanner.
type State int

const (
	StateIdle State = iota
	StateScanning
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Logger receives progress and per-file warnings.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogWarn(message string)
}

// Options wires the scanner to its collaborators.
type Options struct {
	// Recursive enables descending into accepted subdirectories
	Recursive bool
	// Filter decides which entries are visited
	Filter *fileutil.PathFilter
	// Matcher finds annotations in lines
	Matcher *todo.Matcher
	// Formatter renders and writes entries
	Formatter *todo.Formatter
	// Logger may be nil
	Logger Logger
	// OnEntry, if set, is called after every written entry
	OnEntry func(todo.Entry)
}

// Scanner performs one scan.
type Scanner struct {
	fs       afero.Fs
	opts     Options
	state    State
	realpath func(string) (string, error)
}

// New creates a Scanner reading through fs.
func New(fs afero.Fs, opts Options) *Scanner {
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	s := &Scanner{fs: fs, opts: opts, state: StateIdle, realpath: cleanAbs}
	if _, ok := fs.(*afero.OsFs); ok {
		s.realpath = evalAbs
	}
	return s
}

// State returns the scanner's lifecycle state.
func (s *Scanner) State() State {
	return s.state
}

// CheckRoot verifies that root is a directory that can be listed.
func (s *Scanner) CheckRoot(root string) error {
	return CheckRoot(s.fs, root)
}

// CheckRoot verifies that root is a directory of fs that can be listed.
// Failures wrap ErrRootUnreadable.
func CheckRoot(fs afero.Fs, root string) error {
	info, err := fs.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRootUnreadable, root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrRootUnreadable, root)
	}
	f, err := fs.Open(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRootUnreadable, root, err)
	}
	defer f.Close()
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %w", ErrRootUnreadable, root, err)
	}
	return nil
}

// frame is one directory being walked.
type frame struct {
	dir     string
	entries []os.FileInfo
	next    int
}

// Scan walks root and writes an entry for every new annotation. Per-file
// read problems are logged and recorded as warnings; a failing sink or a
// cancelled context stops the walk. The returned result is valid in both
// cases.
func (s *Scanner) Scan(ctx context.Context, root string) (models.ScanResult, error) {
	if s.state != StateIdle {
		return models.ScanResult{}, ErrAlreadyScanned
	}
	if err := s.CheckRoot(root); err != nil {
		return models.ScanResult{}, err
	}

	s.state = StateScanning
	defer func() { s.state = StateDone }()

	start := time.Now()
	result := models.ScanResult{Root: root}

	visited := make(map[string]bool)
	var stack []*frame

	push := func(dir string) {
		key, err := s.realpath(dir)
		if err != nil {
			s.opts.Logger.LogDebug(fmt.Sprintf("skipping %s: %v", dir, err))
			return
		}
		if visited[key] {
			s.opts.Logger.LogDebug(fmt.Sprintf("skipping %s: already visited as %s", dir, key))
			return
		}
		visited[key] = true

		entries, err := afero.ReadDir(s.fs, dir)
		if err != nil {
			s.opts.Logger.LogDebug(fmt.Sprintf("skipping %s: %v", dir, err))
			return
		}
		result.DirsVisited++
		s.opts.Logger.LogDebug(fmt.Sprintf("scanning directory %s (%d entries)", dir, len(entries)))
		stack = append(stack, &frame{dir: dir, entries: entries})
	}

	push(trimTrailingSlash(root))

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return s.finish(&result, start), err
		}

		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := top.entries[top.next]
		top.next++

		path := joinPath(top.dir, entry.Name())
		isDir, ok := s.isDir(path, entry)
		if !ok {
			continue
		}
		if !s.opts.Filter.Accept(path, isDir) {
			s.opts.Logger.LogTrace(fmt.Sprintf("filtered %s", path))
			continue
		}

		if isDir {
			if s.opts.Recursive {
				push(path)
			}
			continue
		}

		if err := s.scanFile(path, &result); err != nil {
			return s.finish(&result, start), err
		}
	}

	return s.finish(&result, start), nil
}

func (s *Scanner) finish(result *models.ScanResult, start time.Time) models.ScanResult {
	result.Duration = time.Since(start)
	return *result
}

// isDir resolves symbolic links so that linked directories are walked like
// real ones. Dangling links report ok == false.
func (s *Scanner) isDir(path string, info os.FileInfo) (isDir bool, ok bool) {
	if info.Mode()&os.ModeSymlink == 0 {
		return info.IsDir(), true
	}
	target, err := s.fs.Stat(path)
	if err != nil {
		s.opts.Logger.LogDebug(fmt.Sprintf("skipping dangling link %s", path))
		return false, false
	}
	return target.IsDir(), true
}

// scanFile matches every line of path. Only sink failures are returned.
func (s *Scanner) scanFile(path string, result *models.ScanResult) error {
	f, err := s.fs.Open(path)
	if err != nil {
		s.warn(result, fmt.Sprintf("cannot open %s: %v", path, err))
		return nil
	}
	defer f.Close()

	result.FilesScanned++

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), todo.MaxLineSize)

	lineNumber := 0
	for sc.Scan() {
		lineNumber++

		keyword, message, ok := s.opts.Matcher.Match(sc.Text())
		if !ok {
			continue
		}
		result.Matches++

		entry, written, err := s.opts.Formatter.Write(message, path, lineNumber, s.opts.Matcher.Priority(keyword))
		if err != nil {
			return err
		}
		if !written {
			if strings.TrimSpace(message) == "" {
				result.EmptySkipped++
			} else {
				result.DuplicateSkipped++
			}
			continue
		}

		result.EntriesWritten++
		s.opts.Logger.LogDebug(fmt.Sprintf("%s:%d %s: %s", path, lineNumber, keyword, entry.Task))
		if s.opts.OnEntry != nil {
			s.opts.OnEntry(entry)
		}
	}

	if err := sc.Err(); err != nil {
		s.warn(result, fmt.Sprintf("stopped reading %s at line %d: %v", path, lineNumber, err))
	}
	return nil
}

func (s *Scanner) warn(result *models.ScanResult, message string) {
	result.Warnings = append(result.Warnings, message)
	s.opts.Logger.LogWarn(message)
}

func joinPath(parent, name string) string {
	if strings.HasSuffix(parent, "/") {
		return parent + name
	}
	return parent + "/" + name
}

func trimTrailingSlash(p string) string {
	for len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	return p
}

func cleanAbs(p string) (string, error) {
	return filepath.Abs(p)
}

func evalAbs(p string) (string, error) {
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}
