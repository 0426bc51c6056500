package cli

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariel-frischer/relnotes/internal/build"
)

func TestVersion(t *testing.T) {
	tests := map[string]struct {
		args []string
		want []string
	}{
		"plain": {
			args: []string{"version", "--plain"},
			want: []string{
				"relnotes " + build.Version + "\n",
				"commit: " + build.Commit + "\n",
				"go: " + runtime.Version() + "\n",
			},
		},
		"pretty": {
			args: []string{"version"},
			want: []string{build.Version, runtime.GOOS + "/" + runtime.GOARCH, build.SourceURL},
		},
		"alias": {
			args: []string{"v", "--plain"},
			want: []string{"relnotes " + build.Version},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			isolate(t)

			res := runCLI(t, nil, tt.args...)

			assert.Equal(t, ExitSuccess, res.code)
			for _, w := range tt.want {
				assert.Contains(t, res.stdout, w)
			}
		})
	}
}
