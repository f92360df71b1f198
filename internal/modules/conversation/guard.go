// README: Loop guard: hard turn ceiling and soft no-progress escalation.
package conversation

const (
	DefaultTurnCeiling     = 20
	DefaultNoProgressLimit = 3
)

// LoopGuard keeps a session from conversing forever. The two counters are
// deliberately distinct: the turn ceiling is unconditional, while the
// no-progress limit honors the confirmation gate's re-render exemption
// (re-showing an unacknowledged summary is valid dialogue, not a stall).
type LoopGuard struct {
	TurnCeiling     int
	NoProgressLimit int
}

func NewLoopGuard(turnCeiling, noProgressLimit int) LoopGuard {
	if turnCeiling <= 0 {
		turnCeiling = DefaultTurnCeiling
	}
	if noProgressLimit <= 0 {
		noProgressLimit = DefaultNoProgressLimit
	}
	return LoopGuard{TurnCeiling: turnCeiling, NoProgressLimit: noProgressLimit}
}

// CeilingExceeded reports whether the hard turn limit is breached. Checked
// before dispatch; a breach short-circuits the whole turn into human handoff.
func (g LoopGuard) CeilingExceeded(turnCount int) bool {
	return turnCount > g.TurnCeiling
}

// Evaluate updates next's no-progress counter given the facts before the
// turn, and forces human handoff once the soft limit is hit. exempt marks the
// confirmation gate's legitimate re-render.
func (g LoopGuard) Evaluate(prev State, next *State, exempt bool) (escalated bool) {
	if FactsChanged(prev, *next) {
		next.NoProgressCount = 0
		return false
	}
	if exempt {
		return false
	}
	next.NoProgressCount++
	if next.NoProgressCount >= g.NoProgressLimit {
		next.TerminalSignal = SignalHumanHandoff
		return true
	}
	return false
}
