package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeGitHub serves the repository endpoints relnotes calls for acme/shop.
type fakeGitHub struct {
	mu       sync.Mutex
	tags     []string
	tagSHAs  map[string]string
	commits  []fakeCommit
	releases []fakeRelease
	pulls    map[string][]fakePull
	nextID   int64
	edited   map[int64]string
	created  []fakeRelease
}

type fakeCommit struct {
	SHA     string
	Message string
}

type fakeRelease struct {
	ID    int64
	Tag   string
	Name  string
	Body  string
	Draft bool
}

type fakePull struct {
	Number int
	Body   string
	Merged bool
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		tagSHAs: make(map[string]string),
		pulls:   make(map[string][]fakePull),
		edited:  make(map[int64]string),
		nextID:  100,
	}
}

// addTag registers a tag. Tags are listed in the order added.
func (f *fakeGitHub) addTag(name, sha string) {
	f.tags = append(f.tags, name)
	f.tagSHAs[name] = sha
}

func (f *fakeGitHub) start(t *testing.T) string {
	t.Helper()

	const repo = "/repos/acme/shop"
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+repo+"/tags", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := make([]map[string]any, 0, len(f.tags))
		for _, name := range f.tags {
			out = append(out, map[string]any{"name": name, "commit": map[string]any{"sha": f.tagSHAs[name]}})
		}
		writeJSON(t, w, out)
	})

	mux.HandleFunc("GET "+repo+"/git/ref/tags/{tag}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		sha, ok := f.tagSHAs[r.PathValue("tag")]
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		writeJSON(t, w, map[string]any{
			"ref":    "refs/tags/" + r.PathValue("tag"),
			"object": map[string]any{"type": "commit", "sha": sha},
		})
	})

	mux.HandleFunc("GET "+repo+"/compare/{basehead}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		commits := make([]map[string]any, 0, len(f.commits))
		for _, c := range f.commits {
			commits = append(commits, map[string]any{"sha": c.SHA, "commit": map[string]any{"message": c.Message}})
		}
		writeJSON(t, w, map[string]any{"commits": commits, "total_commits": len(commits)})
	})

	mux.HandleFunc("GET "+repo+"/releases", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := make([]map[string]any, 0, len(f.releases))
		for _, rel := range f.releases {
			out = append(out, releaseJSON(rel))
		}
		writeJSON(t, w, out)
	})

	mux.HandleFunc("GET "+repo+"/releases/tags/{tag}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, rel := range f.releases {
			if rel.Tag == r.PathValue("tag") {
				writeJSON(t, w, releaseJSON(rel))
				return
			}
		}
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	mux.HandleFunc("PATCH "+repo+"/releases/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		require.NoError(t, err)
		var req struct {
			Body string `json:"body"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		f.mu.Lock()
		defer f.mu.Unlock()
		f.edited[id] = req.Body
		writeJSON(t, w, map[string]any{"id": id, "body": req.Body})
	})

	mux.HandleFunc("POST "+repo+"/releases", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TagName string `json:"tag_name"`
			Name    string `json:"name"`
			Body    string `json:"body"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextID++
		rel := fakeRelease{ID: f.nextID, Tag: req.TagName, Name: req.Name, Body: req.Body}
		f.created = append(f.created, rel)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		writeJSON(t, w, releaseJSON(rel))
	})

	mux.HandleFunc("GET "+repo+"/commits/{sha}/pulls", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		out := []map[string]any{}
		for _, pr := range f.pulls[r.PathValue("sha")] {
			item := map[string]any{"number": pr.Number, "body": pr.Body}
			if pr.Merged {
				item["merged_at"] = "2026-01-02T03:04:05Z"
			}
			out = append(out, item)
		}
		writeJSON(t, w, out)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server.URL
}

func releaseJSON(rel fakeRelease) map[string]any {
	return map[string]any{
		"id":       rel.ID,
		"tag_name": rel.Tag,
		"name":     rel.Name,
		"body":     rel.Body,
		"draft":    rel.Draft,
		"html_url": "https://github.com/acme/shop/releases/tag/" + rel.Tag,
	}
}

// fakeLinear answers issue, team states and issue update operations.
type fakeLinear struct {
	mu      sync.Mutex
	issues  map[string]map[string]any
	updates map[string]string
}

func newFakeLinear() *fakeLinear {
	return &fakeLinear{issues: make(map[string]map[string]any), updates: make(map[string]string)}
}

func (f *fakeLinear) addIssue(identifier, stateName string) {
	f.issues[identifier] = map[string]any{
		"id":         "id-" + identifier,
		"identifier": identifier,
		"team":       map[string]any{"id": "team-1"},
		"state":      map[string]any{"id": "state-" + strings.ToLower(stateName), "name": stateName},
	}
}

func (f *fakeLinear) start(t *testing.T) string {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		f.mu.Lock()
		defer f.mu.Unlock()

		id, _ := req.Variables["id"].(string)
		switch {
		case strings.HasPrefix(req.Query, "query Issue"):
			issue, ok := f.issues[id]
			if !ok {
				writeJSON(t, w, map[string]any{
					"data":   nil,
					"errors": []map[string]any{{"message": "Entity not found", "extensions": map[string]any{"code": "ENTITY_NOT_FOUND"}}},
				})
				return
			}
			writeJSON(t, w, map[string]any{"data": map[string]any{"issue": issue}})
		case strings.HasPrefix(req.Query, "query TeamStates"):
			nodes := []map[string]any{
				{"id": "state-in progress", "name": "In Progress", "type": "started"},
				{"id": "state-done", "name": "Done", "type": "completed"},
			}
			writeJSON(t, w, map[string]any{"data": map[string]any{"team": map[string]any{"states": map[string]any{"nodes": nodes}}}})
		case strings.HasPrefix(req.Query, "mutation UpdateIssueState"):
			f.updates[id], _ = req.Variables["stateId"].(string)
			writeJSON(t, w, map[string]any{"data": map[string]any{"issueUpdate": map[string]any{"success": true}}})
		default:
			http.Error(w, "unknown operation", http.StatusBadRequest)
		}
	}))
	t.Cleanup(server.Close)
	return server.URL
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}
