// Package models holds the records shared between the scanner, the console
// logger and the run history.
package models

import "time"

// ScanResult summarizes a single scan run
type ScanResult struct {
	Root             string        // Directory the scan started from
	DirsVisited      int           // Directories walked, including the root
	FilesScanned     int           // Files opened and read
	Matches          int           // Lines carrying an annotation
	EntriesWritten   int           // Entries written to the sink
	DuplicateSkipped int           // Matches suppressed as already recorded
	EmptySkipped     int           // Matches whose message was blank
	Warnings         []string      // Per-file problems that did not stop the scan
	Duration         time.Duration // Wall time of the traversal
}

// Skipped returns the number of matches that produced no entry.
func (r ScanResult) Skipped() int {
	return r.DuplicateSkipped + r.EmptySkipped
}
