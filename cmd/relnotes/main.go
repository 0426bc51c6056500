// Command relnotes builds release notes from conventional commits and
// publishes them to GitHub releases.
package main

import (
	"pkt.systems/psi"

	"github.com/ariel-frischer/relnotes/internal/cli"
)

func main() {
	psi.Run(cli.Execute)
}
