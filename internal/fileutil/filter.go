package fileutil

import (
	"path/filepath"

	"github.com/spf13/afero"
)

// FilterOptions configures a PathFilter.
type FilterOptions struct {
	Exclude Rules
	Include Rules

	// OutputFile and ConfigFile are never treated as scan input.
	// Empty values are ignored.
	OutputFile string
	ConfigFile string
}

// PathFilter decides whether a directory should be descended into or a file
// should be scanned.
type PathFilter struct {
	fs        afero.Fs
	exclude   Rules
	include   Rules
	selfPaths []string
}

// NewPathFilter creates a PathFilter reading permissions through fs.
func NewPathFilter(fs afero.Fs, opts FilterOptions) *PathFilter {
	f := &PathFilter{
		fs:      fs,
		exclude: opts.Exclude,
		include: opts.Include,
	}
	for _, p := range []string{opts.OutputFile, opts.ConfigFile} {
		if p != "" {
			f.selfPaths = append(f.selfPaths, absPath(p))
		}
	}
	return f
}

// Accept reports whether path passes the rules. The first failing rule wins.
func (f *PathFilter) Accept(path string, isDir bool) bool {
	name := filepath.Base(path)

	if isDir {
		if name == "." || name == ".." {
			return false
		}
		if f.exclude.Dirs.MatchAny(name) {
			return false
		}
		if !f.include.Dirs.Empty() && !f.include.Dirs.MatchAny(name) {
			return false
		}
		if f.exclude.Paths.MatchAny(path) {
			return false
		}
	} else {
		if f.exclude.Files.MatchAny(name) {
			return false
		}
		if !f.include.Files.Empty() && !f.include.Files.MatchAny(name) {
			return false
		}
		if f.isSelf(path) {
			return false
		}
	}

	if !f.include.Paths.Empty() && !f.include.Paths.MatchAny(path) {
		return false
	}

	return f.Readable(path)
}

// Readable reports whether path can be opened for reading.
func (f *PathFilter) Readable(path string) bool {
	file, err := f.fs.Open(path)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

func (f *PathFilter) isSelf(path string) bool {
	abs := absPath(path)
	for _, p := range f.selfPaths {
		if abs == p {
			return true
		}
	}
	return false
}

// absPath resolves path against the working directory, falling back to a
// cleaned relative path when the working directory is unavailable.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
