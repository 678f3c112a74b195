package realtime

import (
	"testing"
	"time"

	"greylog/internal/lookup"

	"github.com/pterm/pterm"
)

func testLogger() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(pterm.LogLevelError)
}

func TestRecordAndSnapshot(t *testing.T) {
	collector := NewActivityCollector(testLogger())

	collector.Record(lookup.Result{Outcome: lookup.OutcomeLogged, IP: "1.2.3.4"})
	collector.Record(lookup.Result{Outcome: lookup.OutcomeHit, IP: "1.2.3.4"})
	collector.Record(lookup.Result{Outcome: lookup.OutcomeHit, IP: "5.6.7.8"})

	snapshot := collector.Snapshot()

	if snapshot.Totals["logged"] != 1 {
		t.Errorf("expected 1 logged, got %d", snapshot.Totals["logged"])
	}
	if snapshot.Totals["hit"] != 2 {
		t.Errorf("expected 2 hits, got %d", snapshot.Totals["hit"])
	}
	if len(snapshot.Recent) != 3 {
		t.Fatalf("expected 3 recent events, got %d", len(snapshot.Recent))
	}
	// Newest first
	if snapshot.Recent[0].IP != "5.6.7.8" {
		t.Errorf("expected the newest event first, got %s", snapshot.Recent[0].IP)
	}
	if snapshot.LookupRate <= 0 {
		t.Error("expected a positive lookup rate")
	}
}

func TestSnapshotCapsRecentEvents(t *testing.T) {
	collector := NewActivityCollector(testLogger())

	for i := 0; i < MaxRecentEvents+20; i++ {
		collector.Record(lookup.Result{Outcome: lookup.OutcomeHit, IP: "1.2.3.4"})
	}

	snapshot := collector.Snapshot()
	if len(snapshot.Recent) != MaxRecentEvents {
		t.Errorf("expected recent events capped at %d, got %d", MaxRecentEvents, len(snapshot.Recent))
	}
	if snapshot.Totals["hit"] != int64(MaxRecentEvents+20) {
		t.Errorf("expected totals to keep counting past the cap, got %d", snapshot.Totals["hit"])
	}
}

func TestPruneDropsOldEvents(t *testing.T) {
	collector := NewActivityCollector(testLogger())

	collector.Record(lookup.Result{Outcome: lookup.OutcomeHit, IP: "1.2.3.4"})
	// Age the event out of the window
	collector.buffer[0].Timestamp = time.Now().Add(-2 * BufferDuration)
	collector.Record(lookup.Result{Outcome: lookup.OutcomeHit, IP: "5.6.7.8"})

	snapshot := collector.Snapshot()

	if len(snapshot.Recent) != 1 {
		t.Fatalf("expected the aged event pruned, got %d events", len(snapshot.Recent))
	}
	if snapshot.Recent[0].IP != "5.6.7.8" {
		t.Errorf("expected the fresh event to survive, got %s", snapshot.Recent[0].IP)
	}
	if snapshot.Totals["hit"] != 2 {
		t.Errorf("expected totals unaffected by pruning, got %d", snapshot.Totals["hit"])
	}
}
