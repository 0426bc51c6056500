// Package linear moves Linear issues into their team's done workflow state.
// It runs three GraphQL documents through go-graphql-client: fetch an issue,
// list a team's workflow states and update an issue's state.
package linear

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	graphql "github.com/hasura/go-graphql-client"
)

// DefaultURL is the Linear GraphQL endpoint.
const DefaultURL = "https://api.linear.app/graphql"

// DefaultTimeout bounds a single GraphQL round trip.
const DefaultTimeout = 10 * time.Second

// ErrIssueNotFound is returned when no issue has the requested identifier.
var ErrIssueNotFound = errors.New("issue not found")

// Issue is the part of a Linear issue the tracker reads.
type Issue struct {
	ID         string
	Identifier string
	TeamID     string
	StateID    string
	StateName  string
}

// WorkflowState is one column of a team's workflow.
type WorkflowState struct {
	ID   string
	Name string
	Type string
}

// Options configures a Client.
type Options struct {
	// APIKey is a personal API key, sent as the Authorization header.
	APIKey string
	// URL overrides DefaultURL.
	URL string
	// HTTPClient overrides the transport. Defaults to a client with DefaultTimeout.
	HTTPClient *http.Client
	// UserAgent is sent with every request when set.
	UserAgent string
}

// Client is a minimal Linear GraphQL client.
type Client struct {
	gql *graphql.Client
}

// New creates a Client.
func New(opts Options) *Client {
	url := opts.URL
	if url == "" {
		url = DefaultURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	gql := graphql.NewClient(url, httpClient).WithRequestModifier(func(r *http.Request) {
		r.Header.Set("Authorization", opts.APIKey)
		if opts.UserAgent != "" {
			r.Header.Set("User-Agent", opts.UserAgent)
		}
	})
	return &Client{gql: gql}
}

const issueQuery = `query Issue($id: String!) {
  issue(id: $id) {
    id
    identifier
    team { id }
    state { id name }
  }
}`

// Issue fetches an issue by its identifier (e.g. "ENG-42").
func (c *Client) Issue(ctx context.Context, identifier string) (Issue, error) {
	var data struct {
		Issue *struct {
			ID         string `json:"id"`
			Identifier string `json:"identifier"`
			Team       struct {
				ID string `json:"id"`
			} `json:"team"`
			State struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"state"`
		} `json:"issue"`
	}

	if err := c.do(ctx, issueQuery, map[string]any{"id": identifier}, &data); err != nil {
		if isEntityNotFound(err) {
			return Issue{}, fmt.Errorf("%s: %w", identifier, ErrIssueNotFound)
		}
		return Issue{}, fmt.Errorf("fetching issue %s: %w", identifier, err)
	}
	if data.Issue == nil {
		return Issue{}, fmt.Errorf("%s: %w", identifier, ErrIssueNotFound)
	}

	return Issue{
		ID:         data.Issue.ID,
		Identifier: data.Issue.Identifier,
		TeamID:     data.Issue.Team.ID,
		StateID:    data.Issue.State.ID,
		StateName:  data.Issue.State.Name,
	}, nil
}

const statesQuery = `query TeamStates($id: String!) {
  team(id: $id) {
    states { nodes { id name type } }
  }
}`

// WorkflowStates lists the workflow states of a team.
func (c *Client) WorkflowStates(ctx context.Context, teamID string) ([]WorkflowState, error) {
	var data struct {
		Team *struct {
			States struct {
				Nodes []WorkflowState `json:"nodes"`
			} `json:"states"`
		} `json:"team"`
	}

	if err := c.do(ctx, statesQuery, map[string]any{"id": teamID}, &data); err != nil {
		return nil, fmt.Errorf("listing workflow states for team %s: %w", teamID, err)
	}
	if data.Team == nil {
		return nil, fmt.Errorf("team %s not found", teamID)
	}
	return data.Team.States.Nodes, nil
}

const updateMutation = `mutation UpdateIssueState($id: String!, $stateId: String!) {
  issueUpdate(id: $id, input: { stateId: $stateId }) { success }
}`

// UpdateIssueState moves an issue to the given workflow state.
func (c *Client) UpdateIssueState(ctx context.Context, issueID, stateID string) error {
	var data struct {
		IssueUpdate struct {
			Success bool `json:"success"`
		} `json:"issueUpdate"`
	}

	vars := map[string]any{"id": issueID, "stateId": stateID}
	if err := c.do(ctx, updateMutation, vars, &data); err != nil {
		return fmt.Errorf("updating issue %s: %w", issueID, err)
	}
	if !data.IssueUpdate.Success {
		return fmt.Errorf("updating issue %s: mutation reported failure", issueID)
	}
	return nil
}

// graphQLError is one entry of a GraphQL "errors" array.
type graphQLError struct {
	Message string
	Code    string
}

// ResponseError carries the errors a GraphQL response reported. Transport
// failures such as a non-200 status arrive here too, with code
// "request_error".
type ResponseError struct {
	Errors []graphQLError
}

func (e *ResponseError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.Message
	}
	return "graphql: " + strings.Join(msgs, "; ")
}

func isEntityNotFound(err error) bool {
	var re *ResponseError
	if !errors.As(err, &re) {
		return false
	}
	for _, ge := range re.Errors {
		if ge.Code == "ENTITY_NOT_FOUND" || strings.HasPrefix(strings.ToLower(ge.Message), "entity not found") {
			return true
		}
	}
	return false
}

// do runs a GraphQL document and decodes its data into out.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	raw, err := c.gql.ExecRaw(ctx, query, vars)
	if err != nil {
		var gqlErrs graphql.Errors
		if errors.As(err, &gqlErrs) {
			return toResponseError(gqlErrs)
		}
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return errors.New("response has no data")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding data: %w", err)
	}
	return nil
}

func toResponseError(errs graphql.Errors) *ResponseError {
	re := &ResponseError{Errors: make([]graphQLError, 0, len(errs))}
	for _, e := range errs {
		code, _ := e.Extensions["code"].(string)
		re.Errors = append(re.Errors, graphQLError{Message: e.Message, Code: code})
	}
	return re
}
