package linear

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// DefaultDoneState is the workflow state issues are moved to.
const DefaultDoneState = "Done"

// ErrStateNotFound is returned when a team has no state named like the done state.
var ErrStateNotFound = errors.New("workflow state not found")

// API is the subset of Client the Tracker uses.
type API interface {
	Issue(ctx context.Context, identifier string) (Issue, error)
	WorkflowStates(ctx context.Context, teamID string) ([]WorkflowState, error)
	UpdateIssueState(ctx context.Context, issueID, stateID string) error
}

// Outcome describes what MarkDone did to an issue.
type Outcome int

const (
	// Transitioned means the issue was moved to the done state.
	Transitioned Outcome = iota
	// AlreadyDone means the issue was in the done state before the call.
	AlreadyDone
	// NotFound means no issue has the identifier.
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Transitioned:
		return "transitioned"
	case AlreadyDone:
		return "already done"
	case NotFound:
		return "not found"
	default:
		return "unknown"
	}
}

// teamStates caches one team's workflow states.
type teamStates struct {
	once   sync.Once
	states []WorkflowState
	err    error
}

// Tracker marks issues done. It is safe for concurrent use; workflow
// states are fetched at most once per team.
type Tracker struct {
	api       API
	doneState string

	mu    sync.Mutex
	teams map[string]*teamStates
}

// NewTracker returns a Tracker moving issues to doneState, or
// DefaultDoneState when doneState is empty.
func NewTracker(api API, doneState string) *Tracker {
	if doneState == "" {
		doneState = DefaultDoneState
	}
	return &Tracker{api: api, doneState: doneState, teams: make(map[string]*teamStates)}
}

// MarkDone moves the issue with the given identifier to its team's done
// state. Issues already there are left alone.
func (t *Tracker) MarkDone(ctx context.Context, identifier string) (Outcome, error) {
	issue, err := t.api.Issue(ctx, identifier)
	if errors.Is(err, ErrIssueNotFound) {
		return NotFound, nil
	}
	if err != nil {
		return 0, err
	}

	done, err := t.doneStateFor(ctx, issue.TeamID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", identifier, err)
	}
	if issue.StateID == done.ID {
		return AlreadyDone, nil
	}

	if err := t.api.UpdateIssueState(ctx, issue.ID, done.ID); err != nil {
		return 0, err
	}
	return Transitioned, nil
}

func (t *Tracker) doneStateFor(ctx context.Context, teamID string) (WorkflowState, error) {
	t.mu.Lock()
	entry, ok := t.teams[teamID]
	if !ok {
		entry = &teamStates{}
		t.teams[teamID] = entry
	}
	t.mu.Unlock()

	entry.once.Do(func() {
		entry.states, entry.err = t.api.WorkflowStates(ctx, teamID)
	})
	if entry.err != nil {
		return WorkflowState{}, entry.err
	}

	for _, s := range entry.states {
		if strings.EqualFold(s.Name, t.doneState) {
			return s, nil
		}
	}
	return WorkflowState{}, fmt.Errorf("%q in team %s: %w", t.doneState, teamID, ErrStateNotFound)
}
