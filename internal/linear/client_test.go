package linear

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

// fakeLinear answers the three operations the client sends.
type fakeLinear struct {
	mu          sync.Mutex
	issues      map[string]map[string]any
	states      map[string][]WorkflowState
	updates     map[string]string
	stateCalls  int
	lastAuthHdr string
}

func newFakeLinear() *fakeLinear {
	return &fakeLinear{
		issues:  make(map[string]map[string]any),
		states:  make(map[string][]WorkflowState),
		updates: make(map[string]string),
	}
}

func (f *fakeLinear) addIssue(identifier, id, team, stateID, stateName string) {
	f.issues[identifier] = map[string]any{
		"id":         id,
		"identifier": identifier,
		"team":       map[string]any{"id": team},
		"state":      map[string]any{"id": stateID, "name": stateName},
	}
}

func (f *fakeLinear) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req gqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAuthHdr = r.Header.Get("Authorization")

	var resp map[string]any
	switch {
	case strings.HasPrefix(req.Query, "query Issue"):
		issue, ok := f.issues[req.Variables["id"].(string)]
		if !ok {
			resp = map[string]any{
				"data":   nil,
				"errors": []map[string]any{{"message": "Entity not found", "extensions": map[string]any{"code": "ENTITY_NOT_FOUND"}}},
			}
			break
		}
		resp = map[string]any{"data": map[string]any{"issue": issue}}
	case strings.HasPrefix(req.Query, "query TeamStates"):
		f.stateCalls++
		nodes := f.states[req.Variables["id"].(string)]
		resp = map[string]any{"data": map[string]any{"team": map[string]any{"states": map[string]any{"nodes": nodes}}}}
	case strings.HasPrefix(req.Query, "mutation UpdateIssueState"):
		f.updates[req.Variables["id"].(string)] = req.Variables["stateId"].(string)
		resp = map[string]any{"data": map[string]any{"issueUpdate": map[string]any{"success": true}}}
	default:
		http.Error(w, "unknown operation", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, f *fakeLinear) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return New(Options{APIKey: "lin_api_test", URL: srv.URL})
}

func TestClient_Issue(t *testing.T) {
	t.Parallel()

	f := newFakeLinear()
	f.addIssue("ENG-1", "uuid-1", "team-eng", "state-todo", "Todo")
	c := newTestClient(t, f)

	issue, err := c.Issue(context.Background(), "ENG-1")
	require.NoError(t, err)
	assert.Equal(t, Issue{
		ID:         "uuid-1",
		Identifier: "ENG-1",
		TeamID:     "team-eng",
		StateID:    "state-todo",
		StateName:  "Todo",
	}, issue)
	assert.Equal(t, "lin_api_test", f.lastAuthHdr)
}

func TestClient_IssueNotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeLinear())

	_, err := c.Issue(context.Background(), "ENG-404")
	require.ErrorIs(t, err, ErrIssueNotFound)
}

func TestClient_WorkflowStatesAndUpdate(t *testing.T) {
	t.Parallel()

	f := newFakeLinear()
	f.states["team-eng"] = []WorkflowState{{ID: "s1", Name: "Todo", Type: "unstarted"}, {ID: "s2", Name: "Done", Type: "completed"}}
	c := newTestClient(t, f)

	states, err := c.WorkflowStates(context.Background(), "team-eng")
	require.NoError(t, err)
	assert.Len(t, states, 2)
	assert.Equal(t, "completed", states[1].Type)

	require.NoError(t, c.UpdateIssueState(context.Background(), "uuid-1", "s2"))
	assert.Equal(t, "s2", f.updates["uuid-1"])
}

func TestClient_HTTPErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		handler           http.HandlerFunc
		wantErr           string
		wantResponseError bool
	}{
		"server error without body": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantErr:           "listing workflow states for team team",
			wantResponseError: true,
		},
		"graphql errors": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"errors":[{"message":"Authentication required","extensions":{"code":"AUTHENTICATION_ERROR"}}]}`))
			},
			wantErr:           "graphql: Authentication required",
			wantResponseError: true,
		},
		"empty data": {
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"data":null}`))
			},
			wantErr: "response has no data",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := New(Options{URL: srv.URL})
			_, err := c.WorkflowStates(context.Background(), "team")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var re *ResponseError
			assert.Equal(t, tt.wantResponseError, errors.As(err, &re))
			assert.NotErrorIs(t, err, ErrIssueNotFound)
		})
	}
}

func TestIsEntityNotFound(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want bool
	}{
		"extension code": {err: &ResponseError{Errors: []graphQLError{{Message: "x", Code: "ENTITY_NOT_FOUND"}}}, want: true},
		"message only":   {err: fmt.Errorf("wrapped: %w", &ResponseError{Errors: []graphQLError{{Message: "Entity not found: Issue"}}}), want: true},
		"other error":    {err: &ResponseError{Errors: []graphQLError{{Message: "Authentication required"}}}, want: false},
		"plain error":    {err: errors.New("entity not found"), want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isEntityNotFound(tt.err))
		})
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, newFakeLinear())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Issue(ctx, "ENG-1")
	require.Error(t, err)
}
