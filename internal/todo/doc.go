// Package todo extracts annotations from source lines and writes them as
// todo.txt entries.
//
// An entry has the shape
//
//	(A) +project @tag1 @tag2 'task text' (location)
//
// where the priority, project and tags are optional. Matcher finds the
// annotation in a line, Formatter renders and writes the entry, and TaskSet
// tracks task texts already written so that no task is emitted twice.
// ParseEntryLine reverses the format well enough to rebuild a TaskSet from a
// previous run's output.
package todo
