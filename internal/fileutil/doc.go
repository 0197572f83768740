// Package fileutil decides which filesystem entries a scan visits.
//
// Two pieces live here:
//
//   - RuleSet: an ordered list of compiled regular expressions with
//     "matches anywhere" semantics. An empty RuleSet matches nothing.
//   - PathFilter: applies the include/exclude rule groups to a path along
//     three independent axes (file base names, directory base names and
//     full paths), excludes the tool's own output and configuration files,
//     and rejects entries that cannot be opened for reading.
//
// # Rule axes
//
// Files are matched by base name against the "files" rules, directories by
// base name against the "dirs" rules, and both by full path against the
// "paths" rules. Exclusion always wins over inclusion on the same axis; an
// empty include list means "include everything".
//
// Example:
//
//	rules, err := fileutil.CompileRules(fileutil.RuleSpec{
//	    Files: []string{`\.go$`},
//	    Dirs:  []string{`^vendor$`},
//	})
//
// PathFilter holds no mutable state: calling Accept twice with the same
// arguments against an unchanged filesystem yields the same answer.
package fileutil
