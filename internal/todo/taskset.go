package todo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

var (
	leadingToken   = regexp.MustCompile(`^[@+]\S+ `)
	locationSuffix = regexp.MustCompile(` \([^)]*\)$`)
	priorityMarker = regexp.MustCompile(`^\(.\) `)
	quotedTask     = regexp.MustCompile(`^[^']*'(.+)'[^']*$`)
)

// TaskSet is the set of task texts already recorded.
type TaskSet struct {
	tasks map[string]struct{}
}

// NewTaskSet returns an empty set.
func NewTaskSet() *TaskSet {
	return &TaskSet{tasks: make(map[string]struct{})}
}

// Contains reports whether task has been recorded.
func (s *TaskSet) Contains(task string) bool {
	_, ok := s.tasks[task]
	return ok
}

// Add records task.
func (s *TaskSet) Add(task string) {
	s.tasks[task] = struct{}{}
}

// Len returns the number of recorded tasks.
func (s *TaskSet) Len() int {
	return len(s.tasks)
}

// LoadTaskSet reads a previously written todo file. A missing file yields an
// empty set.
func LoadTaskSet(fsys afero.Fs, path string) (*TaskSet, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewTaskSet(), nil
		}
		return nil, fmt.Errorf("open todo file %s: %w", path, err)
	}
	defer f.Close()

	set, err := ReadTaskSet(f)
	if err != nil {
		return nil, fmt.Errorf("read todo file %s: %w", path, err)
	}
	return set, nil
}

// ReadTaskSet collects the task text of every line ParseEntryLine accepts.
func ReadTaskSet(r io.Reader) (*TaskSet, error) {
	set := NewTaskSet()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for sc.Scan() {
		if task, ok := ParseEntryLine(sc.Text()); ok {
			set.Add(task)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// ParseEntryLine recovers the task text from a todo.txt entry. The location
// suffix is removed, then the priority marker and every leading "+project "
// or "@tag " token, before taking the text between the first and last single
// quote. Only leading tokens are stripped, so task text mentioning "@x " or
// "+y " survives, and so does a project or tag containing a quote. Lines
// without a quoted segment are reported with ok == false.
func ParseEntryLine(line string) (task string, ok bool) {
	line = strings.TrimRight(line, "\r\n")

	line = locationSuffix.ReplaceAllString(line, "")
	line = priorityMarker.ReplaceAllString(line, "")
	for {
		loc := leadingToken.FindStringIndex(line)
		if loc == nil {
			break
		}
		line = line[loc[1]:]
	}

	m := quotedTask.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return m[1], true
}
