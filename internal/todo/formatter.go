package todo

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

// MaxLineSize bounds a single line read from a source or todo file.
const MaxLineSize = 1 << 20

// Tag template macros.
const (
	FilenameMacro      = "$filename"
	DirectoryMacro     = "$directory"
	FileExtensionMacro = "$fileextension"
)

// Entry is a single rendered todo.txt line.
type Entry struct {
	Priority string
	Project  string
	Tags     []string
	Task     string
	Location string
	// Source and Line identify where the annotation was found.
	Source string
	Line   int
}

// String renders the entry without a trailing newline.
func (e Entry) String() string {
	var b strings.Builder
	if e.Priority != "" {
		b.WriteString("(" + e.Priority + ") ")
	}
	if e.Project != "" {
		b.WriteString("+" + e.Project + " ")
	}
	for _, tag := range e.Tags {
		b.WriteString("@" + tag + " ")
	}
	b.WriteString("'" + e.Task + "'")
	b.WriteString(" (" + e.Location + ")")
	return b.String()
}

// FormatOptions controls how entries are rendered.
type FormatOptions struct {
	// Project is added as "+Project" when non-empty
	Project string
	// Tags are tag templates expanded per entry
	Tags []string
	// Location rewrites the source path. When nil the location is "path:line".
	Location *LocationRule
}

type flusher interface {
	Flush() error
}

// Formatter renders entries and writes them to a sink, one per line.
// Every task it writes is added to its TaskSet, so a task is written at most
// once per Formatter.
type Formatter struct {
	w    io.Writer
	seen *TaskSet
	opts FormatOptions
}

// NewFormatter creates a Formatter writing to w. seen holds tasks that must
// not be written again; a nil seen starts from an empty set.
func NewFormatter(w io.Writer, seen *TaskSet, opts FormatOptions) *Formatter {
	if seen == nil {
		seen = NewTaskSet()
	}
	return &Formatter{w: w, seen: seen, opts: opts}
}

// Seen returns the formatter's dedup set.
func (f *Formatter) Seen() *TaskSet {
	return f.seen
}

// Render builds the entry for an annotation without writing it.
func (f *Formatter) Render(task, source string, line int, priority string) Entry {
	e := Entry{
		Priority: priority,
		Project:  f.opts.Project,
		Task:     strings.TrimSpace(task),
		Source:   source,
		Line:     line,
	}
	for _, tmpl := range f.opts.Tags {
		e.Tags = append(e.Tags, ExpandTag(tmpl, source))
	}
	if f.opts.Location != nil {
		e.Location = f.opts.Location.Apply(source, line)
	} else {
		e.Location = source + ":" + strconv.Itoa(line)
	}
	return e
}

// Write renders and writes the entry for an annotation, then flushes the
// sink if it buffers. It reports false without writing when the trimmed
// task is empty or was already recorded.
func (f *Formatter) Write(task, source string, line int, priority string) (Entry, bool, error) {
	task = strings.TrimSpace(task)
	if task == "" || f.seen.Contains(task) {
		return Entry{}, false, nil
	}

	e := f.Render(task, source, line, priority)
	if _, err := io.WriteString(f.w, e.String()+"\n"); err != nil {
		return Entry{}, false, fmt.Errorf("write entry for %s:%d: %w", source, line, err)
	}
	if fl, ok := f.w.(flusher); ok {
		if err := fl.Flush(); err != nil {
			return Entry{}, false, fmt.Errorf("flush entry for %s:%d: %w", source, line, err)
		}
	}

	f.seen.Add(task)
	return e, true, nil
}

// ExpandTag expands the macros of a tag template for the file at location.
// Spaces become dashes. A file without an extension uses its base name for
// $fileextension.
func ExpandTag(tmpl, location string) string {
	tag := strings.ReplaceAll(tmpl, " ", "-")
	tag = strings.ReplaceAll(tag, FilenameMacro, filepath.Base(location))
	tag = strings.ReplaceAll(tag, DirectoryMacro, filepath.Base(filepath.Dir(location)))
	tag = strings.ReplaceAll(tag, FileExtensionMacro, fileExtension(location))
	return tag
}

func fileExtension(location string) string {
	base := filepath.Base(location)
	ext := filepath.Ext(base)
	if ext == base {
		// dotfiles such as ".bashrc" have no extension
		ext = ""
	}
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return base
	}
	return ext
}
