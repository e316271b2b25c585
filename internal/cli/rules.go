package cli

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/phobologic/depscope/internal/catalog"
)

// newRulesCommand lists the built-in bug-pattern catalog.
func newRulesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the bug-pattern catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Rule", "Category", "Severity", "Languages", "Rationale"})

			for _, r := range catalog.Default().Rules() {
				langs := "all"
				if len(r.Languages) > 0 {
					names := make([]string, len(r.Languages))
					for i, l := range r.Languages {
						names[i] = string(l)
					}
					langs = strings.Join(names, ", ")
				}
				t.AppendRow(table.Row{r.ID, r.Category, r.Severity, langs, r.Message})
			}

			t.Render()
			return nil
		},
	}
}
