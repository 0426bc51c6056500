package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/sethvargo/go-githubactions"

	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
)

// annotationTitle is the title of the error annotation on a failed step.
const annotationTitle = "relnotes"

// newAction returns a workflow command writer bound to env, so commands go
// to env.Stdout and GITHUB_OUTPUT is read through env.Getenv.
func newAction(env Env) *githubactions.Action {
	return githubactions.New(
		githubactions.WithWriter(env.Stdout),
		githubactions.WithGetenv(env.getenv),
	)
}

// actionOutputs are the step outputs exported to GITHUB_OUTPUT.
func actionOutputs(o outcome) map[string]string {
	return map[string]string{
		"changelog":   o.Body,
		"from":        refName(o.Range.FromTag, o.Range.From),
		"to":          refName(o.Range.ToTag, o.Range.To),
		"version":     o.Notes.Version,
		"commits":     strconv.Itoa(len(o.Commits)),
		"release_url": o.Publish.Release.HTMLURL,
	}
}

// setActionOutputs exports outputs in name order. githubactions panics when
// the GITHUB_OUTPUT file cannot be written; that is returned as an error.
func setActionOutputs(a *githubactions.Action, outputs map[string]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("writing GITHUB_OUTPUT: %v", r)
		}
	}()
	for _, k := range slices.Sorted(maps.Keys(outputs)) {
		a.SetOutput(k, strings.TrimSuffix(outputs[k], "\n"))
	}
	return nil
}

// annotateFailure emits an ::error:: command that marks the step as failed
// in the run summary. Runtime errors carry no category prefix.
func annotateFailure(a *githubactions.Action, err *clierrors.CLIError) {
	if err == nil {
		return
	}
	msg := err.Message
	if err.Category != clierrors.Runtime {
		msg = err.Category.String() + ": " + msg
	}
	a.WithFieldsMap(map[string]string{"title": annotationTitle}).Errorf("%s", msg)
}
