// Package session implements the interactive accept/edit/explain/cancel loop
// around a proposed command. The loop is an explicit state machine consuming
// discrete decisions from a UI interface, so it runs identically against a
// real terminal or a scripted test double.
package session

import (
	"context"
	"errors"
	"strings"
)

// State of the session. Accepted and Cancelled are terminal.
type State int

const (
	StateAwaitingDecision State = iota
	StateEditing
	StateExplaining
	StateAccepted
	StateCancelled
)

// Source records whether the proposal came from the provider or a user edit
type Source int

const (
	SourceGenerated Source = iota
	SourceEdited
)

// Proposal is the candidate command awaiting user approval. It lives only
// for the duration of one session.
type Proposal struct {
	Raw    string
	Source Source
}

// Decision is one user input event
type Decision int

const (
	DecisionAccept Decision = iota
	DecisionEdit
	DecisionExplain
	DecisionCopy
	DecisionCancel
)

// ErrInterrupted is returned by UI implementations when the user hits Ctrl-C
var ErrInterrupted = errors.New("interrupted")

// Explainer produces a natural-language explanation of a command
type Explainer interface {
	ExplainCommand(ctx context.Context, command string) (string, error)
}

// UI collects decisions and renders session output. Decide blocks for
// exactly one decision; allowExplain narrows the offered set after a
// successful explanation.
type UI interface {
	Decide(p Proposal, allowExplain bool) (Decision, error)
	Edit(current string) (edited string, ok bool, err error)
	ShowExplanation(text string)
	ShowError(message string)
	Copy(command string)
}

// Result is the terminal outcome of a session
type Result struct {
	State    State
	Proposal Proposal
}

// Session drives one proposal to acceptance or cancellation
type Session struct {
	ui        UI
	explainer Explainer
	proposal  Proposal
	state     State
}

// New creates a session for the given proposal
func New(p Proposal, ui UI, explainer Explainer) *Session {
	return &Session{ui: ui, explainer: explainer, proposal: p, state: StateAwaitingDecision}
}

// State returns the session's current state
func (s *Session) State() State {
	return s.state
}

// Run loops until the user accepts or cancels. An interrupt in any
// non-terminal state cancels the session; in-flight explanation calls are
// aborted through ctx rather than drained.
func (s *Session) Run(ctx context.Context) (Result, error) {
	allowExplain := true

	for {
		if ctx.Err() != nil {
			return s.cancel(), nil
		}

		s.state = StateAwaitingDecision
		decision, err := s.ui.Decide(s.proposal, allowExplain)
		if err != nil {
			if errors.Is(err, ErrInterrupted) {
				return s.cancel(), nil
			}
			return s.cancel(), err
		}

		switch decision {
		case DecisionAccept:
			// empty commands can never be accepted; the edit path
			// already rejects them, this is the last line of defense
			if strings.TrimSpace(s.proposal.Raw) == "" {
				continue
			}
			s.state = StateAccepted
			return Result{State: StateAccepted, Proposal: s.proposal}, nil

		case DecisionCancel:
			return s.cancel(), nil

		case DecisionCopy:
			s.ui.Copy(s.proposal.Raw)

		case DecisionEdit:
			cancelled, err := s.edit()
			if err != nil {
				return s.cancel(), err
			}
			if cancelled {
				return s.cancel(), nil
			}
			// any edit starts a fresh cycle
			allowExplain = true

		case DecisionExplain:
			// no caching: a repeated request re-fetches
			s.state = StateExplaining
			text, err := s.explainer.ExplainCommand(ctx, s.proposal.Raw)
			switch {
			case err != nil && (errors.Is(err, ErrInterrupted) || ctx.Err() != nil):
				return s.cancel(), nil
			case err != nil:
				// explain failure is recoverable: back to the full
				// decision set with the proposal untouched
				s.ui.ShowError(err.Error())
			default:
				s.ui.ShowExplanation(text)
				allowExplain = false
			}
		}
	}
}

// edit runs the editing sub-loop. An empty result re-prompts rather than
// replacing the proposal; cancelling the edit keeps the prior command.
func (s *Session) edit() (cancelled bool, err error) {
	s.state = StateEditing
	for {
		edited, ok, err := s.ui.Edit(s.proposal.Raw)
		if err != nil {
			if errors.Is(err, ErrInterrupted) {
				return true, nil
			}
			return false, err
		}
		if !ok {
			return false, nil
		}
		edited = strings.TrimSpace(edited)
		if edited == "" {
			s.ui.ShowError("command cannot be empty")
			continue
		}
		s.proposal = Proposal{Raw: edited, Source: SourceEdited}
		return false, nil
	}
}

func (s *Session) cancel() Result {
	s.state = StateCancelled
	return Result{State: StateCancelled, Proposal: s.proposal}
}
