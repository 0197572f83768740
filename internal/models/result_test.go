package models

import "testing"

func TestScanResultSkipped(t *testing.T) {
	r := ScanResult{Matches: 7, EntriesWritten: 3, DuplicateSkipped: 3, EmptySkipped: 1}
	if got := r.Skipped(); got != 4 {
		t.Errorf("Skipped() = %d, want 4", got)
	}
	if r.EntriesWritten+r.Skipped() != r.Matches {
		t.Errorf("written + skipped should equal matches")
	}
}
