// Package display renders user-facing terminal output for todoscan.
//
// # Warnings
//
// Fatal conditions the user can fix are shown as a Warning with an optional
// suggestion:
//
//	display.WarnRootUnreadable(dir, err).Display(os.Stderr)
//
// # Results
//
// DisplayResult echoes the todo file after a scan and DisplayRuns lists
// recorded runs from the history database.
//
// Colors come from fatih/color and are only written to terminals.
package display
