package report

import "sync"

// Tracker orders fetch completions. Every dispatch takes a monotonically
// increasing ticket; at completion time the ticket is compared against the
// newest completion seen so far, and anything older is discarded. This is
// what keeps a slow early fetch from overwriting the result of a later one.
type Tracker struct {
	mu     sync.Mutex
	next   uint64
	newest uint64
}

// Begin allocates the sequence number for a fetch about to be dispatched.
func (t *Tracker) Begin() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.next++
	return t.next
}

// Complete records that the fetch with the given sequence finished, in
// success or failure, and reports whether it is the newest completion. A
// false return means a later-dispatched fetch already completed and this
// result must not be applied.
func (t *Tracker) Complete(seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if seq < t.newest {
		return false
	}
	t.newest = seq
	return true
}
