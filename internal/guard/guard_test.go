package guard

import "testing"

func TestBeginSupersedesPreviousToken(t *testing.T) {
	g := New()

	t1 := g.Begin()
	if !g.Current(t1) {
		t.Fatalf("expected fresh token to be current")
	}

	t2 := g.Begin()
	if g.Current(t1) {
		t.Fatalf("superseded token must not be current")
	}
	if !g.Current(t2) {
		t.Fatalf("expected newest token to be current")
	}
	if t2 <= t1 {
		t.Fatalf("tokens must be strictly increasing: t1=%d t2=%d", t1, t2)
	}
}

func TestZeroTokenNeverCurrent(t *testing.T) {
	g := New()
	if g.Current(0) {
		t.Fatalf("zero token must never be current")
	}
	g.Begin()
	if g.Current(0) {
		t.Fatalf("zero token must never be current after activation")
	}
}

func TestInvalidate(t *testing.T) {
	g := New()
	tok := g.Begin()
	g.Invalidate()
	if g.Current(tok) {
		t.Fatalf("token must be stale after Invalidate")
	}
}

// An older activation's late-arriving result must lose to a newer one: with
// t1 < t2, t1 is stale no matter which load resolves first.
func TestOutOfOrderCompletionIsDiscarded(t *testing.T) {
	g := New()
	t1 := g.Begin()
	t2 := g.Begin()

	// t2's load "resolves" first and applies.
	if !g.Current(t2) {
		t.Fatalf("t2 should apply")
	}
	// t1's load resolves afterwards and must be a no-op.
	if g.Current(t1) {
		t.Fatalf("t1 must be discarded")
	}
}
