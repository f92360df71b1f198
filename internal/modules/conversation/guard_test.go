package conversation

import "testing"

func TestGuardResetsOnProgress(t *testing.T) {
	g := NewLoopGuard(20, 3)
	prev := State{Destination: "Tokyo", NoProgressCount: 2}
	next := prev.Clone()
	next.TravelerAges = []int{30}
	next.NoProgressCount = 2

	if g.Evaluate(prev, &next, false) {
		t.Fatal("progress turn must not escalate")
	}
	if next.NoProgressCount != 0 {
		t.Errorf("no_progress_count = %d, want 0 after a slot change", next.NoProgressCount)
	}
}

func TestGuardEscalatesAfterConsecutiveStalls(t *testing.T) {
	g := NewLoopGuard(20, 3)
	st := State{Destination: "Tokyo"}

	for i := 1; i <= 2; i++ {
		next := st.Clone()
		if g.Evaluate(st, &next, false) {
			t.Fatalf("stall %d escalated early", i)
		}
		st = next
	}
	next := st.Clone()
	if !g.Evaluate(st, &next, false) {
		t.Fatal("third consecutive stall must escalate")
	}
	if next.TerminalSignal != SignalHumanHandoff {
		t.Errorf("signal = %q, want human_handoff", next.TerminalSignal)
	}
}

func TestGuardRerenderExemption(t *testing.T) {
	g := NewLoopGuard(20, 3)
	st := State{Destination: "Tokyo", NoProgressCount: 2}

	// Re-showing an unacknowledged summary is valid dialogue, not a stall:
	// the counter must neither increment nor escalate, however often it happens.
	for i := 0; i < 10; i++ {
		next := st.Clone()
		if g.Evaluate(st, &next, true) {
			t.Fatal("exempt re-render must never escalate")
		}
		if next.NoProgressCount != 2 {
			t.Errorf("no_progress_count = %d, want unchanged 2", next.NoProgressCount)
		}
		st = next
	}
}

func TestGuardCeiling(t *testing.T) {
	g := NewLoopGuard(20, 3)
	if g.CeilingExceeded(20) {
		t.Error("turn 20 is still within the ceiling")
	}
	if !g.CeilingExceeded(21) {
		t.Error("turn 21 must breach the ceiling")
	}
}
