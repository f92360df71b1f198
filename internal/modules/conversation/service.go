// README: Orchestrator: per-turn routing between slot-filling, confirmation,
// loop guard, and terminal handoffs.
package conversation

import (
	"context"
	"errors"
	"log"
	"time"

	"tripsure/internal/ai"
	"tripsure/internal/geo"
)

var ErrBadRequest = errors.New("session id and message are required")

// PricingHandoff receives the finalized fact snapshot once the user confirms.
// This core does not wait for or interpret a price.
type PricingHandoff interface {
	QuoteRequested(ctx context.Context, snapshot FactsSnapshot) error
}

// EscalationHandoff receives the session and recent transcript when the
// dialogue gives up and hands off to a human.
type EscalationHandoff interface {
	Escalate(ctx context.Context, sessionID string, transcript []TranscriptLine) error
}

// Deps wires the orchestrator's collaborators. Transcripts, Locker, Pricing,
// and Escalation may be nil (features degrade to log lines); Checkpoints and
// Extractor are required.
type Deps struct {
	Checkpoints CheckpointStore
	Transcripts TranscriptStore
	Locker      SessionLocker
	Extractor   ai.Extractor
	Resolver    geo.Resolver
	Pricing     PricingHandoff
	Escalation  EscalationHandoff

	Guard           LoopGuard
	ExtractTimeout  time.Duration
	TranscriptTurns int
}

// Service drives one dialogue turn to completion: load, classify, dispatch,
// guard, persist, render. Exactly one state mutation and one Save per turn.
type Service struct {
	checkpoints CheckpointStore
	transcripts TranscriptStore
	locker      SessionLocker
	extractor   ai.Extractor
	resolver    geo.Resolver
	pricing     PricingHandoff
	escalation  EscalationHandoff

	guard           LoopGuard
	extractTimeout  time.Duration
	transcriptTurns int

	now func() time.Time
}

func NewService(deps Deps) *Service {
	if deps.ExtractTimeout <= 0 {
		deps.ExtractTimeout = 8 * time.Second
	}
	if deps.TranscriptTurns <= 0 {
		deps.TranscriptTurns = 10
	}
	// Backfill whichever guard limit the caller left zero.
	deps.Guard = NewLoopGuard(deps.Guard.TurnCeiling, deps.Guard.NoProgressLimit)
	return &Service{
		checkpoints:     deps.Checkpoints,
		transcripts:     deps.Transcripts,
		locker:          deps.Locker,
		extractor:       deps.Extractor,
		resolver:        deps.Resolver,
		pricing:         deps.Pricing,
		escalation:      deps.Escalation,
		guard:           deps.Guard,
		extractTimeout:  deps.ExtractTimeout,
		transcriptTurns: deps.TranscriptTurns,
		now:             time.Now,
	}
}

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	Prompt string         `json:"prompt"`
	Signal TerminalSignal `json:"terminal_signal,omitempty"`
}

const greeting = "Hi! I can get you a travel insurance quote in a couple of questions. "

// HandleTurn processes one (session, utterance) pair to completion. A
// checkpoint-store failure is returned without a Save, so the transport layer
// can safely retry the whole turn.
func (s *Service) HandleTurn(ctx context.Context, sessionID, utterance string) (TurnResult, error) {
	if sessionID == "" || utterance == "" {
		return TurnResult{}, ErrBadRequest
	}

	if s.locker != nil {
		release, err := s.locker.AcquireTurnLock(ctx, sessionID)
		if err != nil {
			return TurnResult{}, err
		}
		defer release()
	}

	st, _, err := s.checkpoints.Load(ctx, sessionID)
	if err != nil {
		return TurnResult{}, err
	}

	// A terminal session answers every later turn with its terminal message;
	// only the turn counter still moves.
	if st.Terminal() {
		st.TurnCount++
		if err := s.checkpoints.Save(ctx, sessionID, st); err != nil {
			return TurnResult{}, err
		}
		return TurnResult{Prompt: terminalMessage(st.TerminalSignal), Signal: st.TerminalSignal}, nil
	}

	st.TurnCount++

	// Hard ceiling: unconditional, bypasses extraction and dispatch entirely.
	if s.guard.CeilingExceeded(st.TurnCount) {
		st.TerminalSignal = SignalHumanHandoff
		st.PendingQuestion = SlotNone
		if err := s.checkpoints.Save(ctx, sessionID, st); err != nil {
			return TurnResult{}, err
		}
		s.recordTranscript(ctx, sessionID, utterance, handoffMessage)
		s.emitEscalation(ctx, sessionID)
		log.Printf("conversation: session %s hit turn ceiling (%d), human handoff", sessionID, st.TurnCount)
		return TurnResult{Prompt: handoffMessage, Signal: SignalHumanHandoff}, nil
	}

	ex := s.extract(ctx, st, utterance)

	// An explicit ask for a human wins over everything else.
	if ex != nil && ex.Intent == ai.IntentHandoff {
		st.TerminalSignal = SignalHumanHandoff
		st.PendingQuestion = SlotNone
		if err := s.checkpoints.Save(ctx, sessionID, st); err != nil {
			return TurnResult{}, err
		}
		s.recordTranscript(ctx, sessionID, utterance, handoffMessage)
		s.emitEscalation(ctx, sessionID)
		return TurnResult{Prompt: handoffMessage, Signal: SignalHumanHandoff}, nil
	}

	prev := st.Clone()
	var warnings []string
	exempt := false
	askWhich := false

	if ex != nil && ex.Intent == ai.IntentQuestion {
		warnings = append(warnings,
			"I can't answer policy questions myself, but an agent can once your quote is ready.")
	}

	// Dispatch to exactly one of the two mutation paths.
	if st.AwaitingConfirmation {
		outcome := Confirm(st, utterance, ex)
		st = outcome.State
		exempt = outcome.Rerender
		askWhich = outcome.AskWhich
	} else {
		outcome := Fill(st, utterance, ex, s.now(), s.classify(ctx))
		st = outcome.State
		warnings = append(warnings, outcome.Warnings...)
	}

	if !st.Terminal() {
		if s.guard.Evaluate(prev, &st, exempt) {
			log.Printf("conversation: session %s stalled %d turns, human handoff", sessionID, st.NoProgressCount)
		}
	}

	if err := s.checkpoints.Save(ctx, sessionID, st); err != nil {
		return TurnResult{}, err
	}

	prompt := s.renderPrompt(prev, st, warnings, askWhich)
	s.recordTranscript(ctx, sessionID, utterance, prompt)

	switch st.TerminalSignal {
	case SignalProceedToPricing:
		s.emitPricing(ctx, sessionID, st)
	case SignalHumanHandoff:
		s.emitEscalation(ctx, sessionID)
	}

	return TurnResult{Prompt: prompt, Signal: st.TerminalSignal}, nil
}

// State exposes the committed state for a session (support tooling).
func (s *Service) State(ctx context.Context, sessionID string) (State, bool, error) {
	return s.checkpoints.Load(ctx, sessionID)
}

// extract calls the extraction port with a bounded context. Any failure
// degrades to an empty result so the keyword fallback path still progresses
// the turn; extraction errors are never user-visible.
func (s *Service) extract(ctx context.Context, st State, utterance string) *ai.Extraction {
	if s.extractor == nil {
		return nil
	}
	exCtx, cancel := context.WithTimeout(ctx, s.extractTimeout)
	defer cancel()

	awaiting := "false"
	if st.AwaitingConfirmation {
		awaiting = "true"
	}
	ex, err := s.extractor.Extract(exCtx, utterance, map[string]string{
		"current_date":          s.now().Format("2006-01-02"),
		"known_facts":           st.KnownFacts(),
		"pending_question":      string(st.PendingQuestion),
		"awaiting_confirmation": awaiting,
	})
	if err != nil {
		log.Printf("conversation: extraction failed, falling back to keywords: %v", err)
		return nil
	}
	return ex
}

func (s *Service) classify(ctx context.Context) func(string) geo.Profile {
	return func(destination string) geo.Profile {
		if s.resolver == nil {
			return geo.Profile{}
		}
		p, err := s.resolver.Resolve(ctx, destination)
		if err != nil {
			log.Printf("conversation: destination resolve failed for %q: %v", destination, err)
			return geo.Profile{}
		}
		return p
	}
}

func (s *Service) renderPrompt(prev, st State, warnings []string, askWhich bool) string {
	switch {
	case st.TerminalSignal != SignalNone:
		return joinWarnings(warnings, terminalMessage(st.TerminalSignal))
	case st.AwaitingConfirmation:
		return joinWarnings(warnings, renderSummary(st, askWhich))
	default:
		reask := st.PendingQuestion == prev.PendingQuestion && !FactsChanged(prev, st)
		prompt := promptFor(st.PendingQuestion, reask)
		if st.TurnCount == 1 {
			prompt = greeting + prompt
		}
		return joinWarnings(warnings, prompt)
	}
}

func (s *Service) recordTranscript(ctx context.Context, sessionID, utterance, prompt string) {
	if s.transcripts == nil {
		return
	}
	now := s.now()
	err := s.transcripts.AppendTranscript(ctx, sessionID,
		TranscriptLine{Role: "user", Text: utterance, At: now},
		TranscriptLine{Role: "assistant", Text: prompt, At: now},
	)
	if err != nil {
		log.Printf("conversation: transcript append failed for %s: %v", sessionID, err)
	}
}

// emitPricing hands the frozen facts to the pricing collaborator. Failures
// are logged, not surfaced: the checkpoint already records the confirmation,
// and downstream owns its own retries.
func (s *Service) emitPricing(ctx context.Context, sessionID string, st State) {
	if s.pricing == nil {
		return
	}
	if err := s.pricing.QuoteRequested(ctx, st.Snapshot(sessionID)); err != nil {
		log.Printf("conversation: pricing handoff failed for %s: %v", sessionID, err)
		return
	}
	log.Printf("conversation: session %s confirmed (%s)", sessionID,
		describeTrip(st.Destination, st.DepartureDate, st.ReturnDate))
}

func (s *Service) emitEscalation(ctx context.Context, sessionID string) {
	if s.escalation == nil {
		return
	}
	var transcript []TranscriptLine
	if s.transcripts != nil {
		// Two lines per turn (user + assistant).
		lines, err := s.transcripts.RecentTranscript(ctx, sessionID, s.transcriptTurns*2)
		if err != nil {
			log.Printf("conversation: transcript read failed for %s: %v", sessionID, err)
		} else {
			transcript = lines
		}
	}
	if err := s.escalation.Escalate(ctx, sessionID, transcript); err != nil {
		log.Printf("conversation: escalation handoff failed for %s: %v", sessionID, err)
	}
}
