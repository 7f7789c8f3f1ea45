package main

import (
	"testing"
	"time"

	"github.com/cwbudde/arcfit/internal/store"
)

func infoAt(jobID string, age time.Duration) store.CheckpointInfo {
	return store.CheckpointInfo{
		JobID:     jobID,
		Status:    "converged",
		Tactic:    "radius",
		Timestamp: time.Now().Add(-age),
	}
}

func TestSelectCheckpointsByAge(t *testing.T) {
	infos := []store.CheckpointInfo{
		infoAt("old", 10*24*time.Hour),
		infoAt("recent", 2*24*time.Hour),
		infoAt("fresh", time.Hour),
	}

	toDelete := selectCheckpointsForDeletion(infos, 0, 7)
	if len(toDelete) != 1 {
		t.Fatalf("Expected 1 checkpoint to delete, got %d", len(toDelete))
	}
	if toDelete[0].JobID != "old" {
		t.Errorf("Expected old checkpoint selected, got %s", toDelete[0].JobID)
	}
}

func TestSelectCheckpointsKeepLast(t *testing.T) {
	infos := []store.CheckpointInfo{
		infoAt("a", 4*time.Hour),
		infoAt("b", 3*time.Hour),
		infoAt("c", 2*time.Hour),
		infoAt("d", time.Hour),
	}

	toDelete := selectCheckpointsForDeletion(infos, 2, 0)
	if len(toDelete) != 2 {
		t.Fatalf("Expected 2 checkpoints to delete, got %d", len(toDelete))
	}
	// Oldest first
	if toDelete[0].JobID != "a" || toDelete[1].JobID != "b" {
		t.Errorf("Expected oldest two (a, b), got %s, %s", toDelete[0].JobID, toDelete[1].JobID)
	}
}

func TestSelectCheckpointsKeepLastCoversAll(t *testing.T) {
	infos := []store.CheckpointInfo{
		infoAt("a", time.Hour),
		infoAt("b", 2*time.Hour),
	}

	if toDelete := selectCheckpointsForDeletion(infos, 5, 0); len(toDelete) != 0 {
		t.Errorf("Keeping more than exist should delete nothing, got %d", len(toDelete))
	}
}

func TestSelectCheckpointsCombinedNoDuplicates(t *testing.T) {
	infos := []store.CheckpointInfo{
		infoAt("ancient", 30*24*time.Hour),
		infoAt("old", 10*24*time.Hour),
		infoAt("fresh", time.Hour),
	}

	// "ancient" matches both the age cutoff and the keep-last overflow;
	// it must appear once.
	toDelete := selectCheckpointsForDeletion(infos, 2, 7)
	seen := make(map[string]int)
	for _, info := range toDelete {
		seen[info.JobID]++
	}
	if seen["ancient"] != 1 {
		t.Errorf("Expected ancient exactly once, got %d", seen["ancient"])
	}
	if seen["fresh"] != 0 {
		t.Error("Fresh checkpoint should survive")
	}
}

func TestShortenJobID(t *testing.T) {
	if got := shortenJobID("short"); got != "short" {
		t.Errorf("Short IDs pass through, got %q", got)
	}
	long := "0123456789abcdef"
	if got := shortenJobID(long); got != "0123456789ab..." {
		t.Errorf("Long IDs are truncated, got %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
