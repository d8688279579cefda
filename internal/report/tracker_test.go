package report

import "testing"

func TestTrackerOrdersCompletions(t *testing.T) {
	var tr Tracker

	a := tr.Begin()
	b := tr.Begin()
	if a != 1 || b != 2 {
		t.Fatalf("expected sequences 1,2 got %d,%d", a, b)
	}

	// B completes first, then A arrives late and must be dropped.
	if !tr.Complete(b) {
		t.Fatal("newest dispatch completing first must win")
	}
	if tr.Complete(a) {
		t.Fatal("earlier dispatch completing later must be discarded")
	}
}

func TestTrackerInOrderCompletions(t *testing.T) {
	var tr Tracker
	a := tr.Begin()
	b := tr.Begin()
	if !tr.Complete(a) {
		t.Fatal("first completion should win")
	}
	if !tr.Complete(b) {
		t.Fatal("later dispatch completing later should win")
	}
}

func TestTrackerFailedCompletionStillBlocksOlder(t *testing.T) {
	var tr Tracker
	a := tr.Begin()
	b := tr.Begin()
	// B completes (as a failure at the caller); A is still stale afterwards.
	tr.Complete(b)
	if tr.Complete(a) {
		t.Fatal("completion order counts regardless of the fetch outcome")
	}
}
