package scheduler

import (
	"testing"
	"time"
)

func TestOverdueCutoffCoversAllOfYesterday(t *testing.T) {
	now := time.Date(2026, 9, 1, 10, 30, 0, 0, time.UTC)
	cutoff := overdueCutoff(now)

	// A pending movement timestamped yesterday afternoon is overdue.
	yesterdayAfternoon := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)
	if yesterdayAfternoon.After(cutoff) {
		t.Errorf("movement dated %v should fall within the overdue window ending %v", yesterdayAfternoon, cutoff)
	}

	// Anything dated today, even at midnight, is not overdue yet.
	todayMidnight := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if !todayMidnight.After(cutoff) {
		t.Errorf("movement dated %v should fall outside the overdue window ending %v", todayMidnight, cutoff)
	}
}

func TestOverdueCutoffKeepsLocation(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	now := time.Date(2026, 9, 1, 23, 59, 0, 0, loc)
	cutoff := overdueCutoff(now)
	if cutoff.Location() != loc {
		t.Errorf("cutoff location = %v, want %v", cutoff.Location(), loc)
	}
	if !cutoff.Before(time.Date(2026, 9, 1, 0, 0, 0, 0, loc)) {
		t.Errorf("cutoff %v should precede today's midnight", cutoff)
	}
}
