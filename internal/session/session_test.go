package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedUI feeds a fixed sequence of decisions and edits to the session
type scriptedUI struct {
	decisions []Decision
	edits     []editResult
	errs      []error

	decideCalls  int
	editCalls    int
	allowExplain []bool
	explanations []string
	errors       []string
	copied       []string
}

type editResult struct {
	text string
	ok   bool
	err  error
}

func (u *scriptedUI) Decide(p Proposal, allowExplain bool) (Decision, error) {
	u.allowExplain = append(u.allowExplain, allowExplain)
	i := u.decideCalls
	u.decideCalls++
	var err error
	if i < len(u.errs) {
		err = u.errs[i]
	}
	if i >= len(u.decisions) {
		return DecisionCancel, err
	}
	return u.decisions[i], err
}

func (u *scriptedUI) Edit(current string) (string, bool, error) {
	i := u.editCalls
	u.editCalls++
	if i >= len(u.edits) {
		return current, false, nil
	}
	e := u.edits[i]
	return e.text, e.ok, e.err
}

func (u *scriptedUI) ShowExplanation(text string) { u.explanations = append(u.explanations, text) }
func (u *scriptedUI) ShowError(message string)    { u.errors = append(u.errors, message) }
func (u *scriptedUI) Copy(command string)         { u.copied = append(u.copied, command) }

// stubExplainer counts calls and returns canned results
type stubExplainer struct {
	calls int
	text  string
	err   error
}

func (e *stubExplainer) ExplainCommand(ctx context.Context, command string) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return e.text, nil
}

func newSession(raw string, ui UI, explainer Explainer) *Session {
	return New(Proposal{Raw: raw, Source: SourceGenerated}, ui, explainer)
}

func TestAcceptGenerated(t *testing.T) {
	ui := &scriptedUI{decisions: []Decision{DecisionAccept}}
	sess := newSession("ls -la", ui, &stubExplainer{})

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateAccepted, result.State)
	assert.Equal(t, "ls -la", result.Proposal.Raw)
	assert.Equal(t, SourceGenerated, result.Proposal.Source)
}

func TestCancel(t *testing.T) {
	ui := &scriptedUI{decisions: []Decision{DecisionCancel}}
	sess := newSession("ls", ui, &stubExplainer{})

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCancelled, result.State)
	assert.Equal(t, StateCancelled, sess.State())
}

func TestInterruptCancels(t *testing.T) {
	ui := &scriptedUI{
		decisions: []Decision{DecisionAccept},
		errs:      []error{ErrInterrupted},
	}
	explainer := &stubExplainer{}
	sess := newSession("rm -rf /tmp/x", ui, explainer)

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCancelled, result.State)
	assert.Zero(t, explainer.calls)
}

func TestContextCancelledBeforeDecision(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ui := &scriptedUI{decisions: []Decision{DecisionAccept}}
	sess := newSession("ls", ui, &stubExplainer{})

	result, err := sess.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, StateCancelled, result.State)
	assert.Zero(t, ui.decideCalls)
}

func TestExplainThenAccept(t *testing.T) {
	ui := &scriptedUI{decisions: []Decision{DecisionExplain, DecisionAccept}}
	explainer := &stubExplainer{text: "lists files"}
	sess := newSession("ls -la", ui, explainer)

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateAccepted, result.State)
	// the command the user approved is exactly the one explained
	assert.Equal(t, "ls -la", result.Proposal.Raw)
	assert.Equal(t, []string{"lists files"}, ui.explanations)
	assert.Equal(t, 1, explainer.calls)

	// first prompt offers explain, the one after a successful explain does not
	require.Len(t, ui.allowExplain, 2)
	assert.True(t, ui.allowExplain[0])
	assert.False(t, ui.allowExplain[1])
}

func TestRepeatedExplainRefetches(t *testing.T) {
	ui := &scriptedUI{decisions: []Decision{DecisionExplain, DecisionExplain, DecisionCancel}}
	explainer := &stubExplainer{text: "does things"}
	sess := newSession("ls", ui, explainer)

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCancelled, result.State)
	assert.Equal(t, 2, explainer.calls)
	assert.Len(t, ui.explanations, 2)
	// the proposal never changes across explains
	assert.Equal(t, "ls", result.Proposal.Raw)
}

func TestExplainFailureIsRecoverable(t *testing.T) {
	ui := &scriptedUI{decisions: []Decision{DecisionExplain, DecisionAccept}}
	explainer := &stubExplainer{err: errors.New("rate limit exceeded")}
	sess := newSession("ls", ui, explainer)

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateAccepted, result.State)
	assert.Equal(t, []string{"rate limit exceeded"}, ui.errors)

	// a failed explain keeps the full decision set
	require.Len(t, ui.allowExplain, 2)
	assert.True(t, ui.allowExplain[1])
}

func TestExplainInterruptedCancels(t *testing.T) {
	ui := &scriptedUI{decisions: []Decision{DecisionExplain, DecisionAccept}}
	explainer := &stubExplainer{err: ErrInterrupted}
	sess := newSession("ls", ui, explainer)

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCancelled, result.State)
}

func TestEditReplacesProposal(t *testing.T) {
	ui := &scriptedUI{
		decisions: []Decision{DecisionEdit, DecisionAccept},
		edits:     []editResult{{text: "ls -lah", ok: true}},
	}
	sess := newSession("ls -la", ui, &stubExplainer{})

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateAccepted, result.State)
	assert.Equal(t, "ls -lah", result.Proposal.Raw)
	assert.Equal(t, SourceEdited, result.Proposal.Source)
}

func TestEmptyEditRepromptsInPlace(t *testing.T) {
	ui := &scriptedUI{
		decisions: []Decision{DecisionEdit, DecisionAccept},
		edits: []editResult{
			{text: "   ", ok: true},
			{text: "", ok: true},
			{text: "du -sh", ok: true},
		},
	}
	sess := newSession("ls", ui, &stubExplainer{})

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	// both empty submissions re-prompted inside the edit, without a
	// round-trip through the decision prompt
	assert.Equal(t, 3, ui.editCalls)
	assert.Equal(t, 2, ui.decideCalls)
	assert.Equal(t, []string{"command cannot be empty", "command cannot be empty"}, ui.errors)

	assert.Equal(t, StateAccepted, result.State)
	assert.Equal(t, "du -sh", result.Proposal.Raw)
}

func TestAbandonedEditKeepsPriorCommand(t *testing.T) {
	ui := &scriptedUI{
		decisions: []Decision{DecisionEdit, DecisionAccept},
		edits:     []editResult{{text: "", ok: false}},
	}
	sess := newSession("ls -la", ui, &stubExplainer{})

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateAccepted, result.State)
	assert.Equal(t, "ls -la", result.Proposal.Raw)
	assert.Equal(t, SourceGenerated, result.Proposal.Source)
}

func TestEditRestoresExplainOption(t *testing.T) {
	ui := &scriptedUI{
		decisions: []Decision{DecisionExplain, DecisionEdit, DecisionCancel},
		edits:     []editResult{{text: "ls -lah", ok: true}},
	}
	sess := newSession("ls", ui, &stubExplainer{text: "lists"})

	_, err := sess.Run(context.Background())
	require.NoError(t, err)

	// explain was withdrawn after the explanation, then restored by the edit
	require.Len(t, ui.allowExplain, 3)
	assert.Equal(t, []bool{true, false, true}, ui.allowExplain)
}

func TestEditInterruptedCancels(t *testing.T) {
	ui := &scriptedUI{
		decisions: []Decision{DecisionEdit},
		edits:     []editResult{{err: ErrInterrupted}},
	}
	sess := newSession("ls", ui, &stubExplainer{})

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCancelled, result.State)
}

func TestCopyIsNotTerminal(t *testing.T) {
	ui := &scriptedUI{decisions: []Decision{DecisionCopy, DecisionAccept}}
	sess := newSession("uptime", ui, &stubExplainer{})

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateAccepted, result.State)
	assert.Equal(t, []string{"uptime"}, ui.copied)
}

func TestEmptyProposalCannotBeAccepted(t *testing.T) {
	ui := &scriptedUI{decisions: []Decision{DecisionAccept, DecisionCancel}}
	sess := newSession("   ", ui, &stubExplainer{})

	result, err := sess.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCancelled, result.State)
	assert.Equal(t, 2, ui.decideCalls)
}

func TestUIErrorPropagates(t *testing.T) {
	boom := errors.New("terminal gone")
	ui := &scriptedUI{
		decisions: []Decision{DecisionAccept},
		errs:      []error{boom},
	}
	sess := newSession("ls", ui, &stubExplainer{})

	result, err := sess.Run(context.Background())
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateCancelled, result.State)
}
