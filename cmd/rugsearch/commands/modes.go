package commands

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/usestring/rugsearch/internal/mode"
)

// NewModesCommand lists the search modes.
func NewModesCommand(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "modes",
		Short: "List search modes and the input each requires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			def, _ := mode.Parse(g.cfg.DefaultMode)

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"MODE", "LABEL", "REQUIRES", "DEFAULT"})
			table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
			table.SetAlignment(tablewriter.ALIGN_LEFT)
			table.SetBorder(false)
			table.SetHeaderLine(false)
			table.SetTablePadding("    ")
			table.SetNoWhiteSpace(true)

			for _, p := range mode.Profiles() {
				marker := ""
				if p.Mode == def {
					marker = "*"
				}
				table.Append([]string{string(p.Mode), p.Label, string(p.Requires), marker})
			}
			table.Render()
			return nil
		},
	}
}
