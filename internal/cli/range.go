package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// rangeOutput is the JSON form of a resolved range.
type rangeOutput struct {
	From       string `json:"from"`
	To         string `json:"to"`
	FromTag    string `json:"from_tag,omitempty"`
	ToTag      string `json:"to_tag,omitempty"`
	CompareURL string `json:"compare_url,omitempty"`
}

func newRangeCmd(root *rootOptions) *cobra.Command {
	var asJSON, fetchTags bool

	cmd := &cobra.Command{
		Use:   "range",
		Short: "Print the commit range a changelog would cover",
		Long: `Resolve the release range the same way generate does and print it
without fetching commits or publishing anything.`,
		Example: `  relnotes range --tag-prefix api-v
  relnotes range --source git --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			// range never publishes
			cfg.PublishMode = "print"
			cfg.LinearAPIKey = ""
			if err := cfg.ValidateForRun(); err != nil {
				return err
			}

			p, err := newPipeline(cfg, cmd.OutOrStdout(), nil)
			if err != nil {
				return err
			}
			p.fetchTags = fetchTags
			r, err := p.resolveRange(cmd.Context())
			if err != nil {
				return err
			}

			res := rangeOutput{
				From:       r.From,
				To:         r.To,
				FromTag:    r.FromTag,
				ToTag:      r.ToTag,
				CompareURL: p.compareURL(r),
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			fmt.Fprintf(out, "%s...%s\n", refName(r.FromTag, r.From), refName(r.ToTag, r.To))
			if res.CompareURL != "" {
				fmt.Fprintln(out, cDim(res.CompareURL))
			}
			return nil
		},
	}

	addConfigFlags(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&fetchTags, "fetch-tags", false, "Fetch tags from origin first (--source git)")
	return cmd
}
