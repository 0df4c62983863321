package main

import (
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/sarchlab/nftest/regress"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the regression tests.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"Test", "Design", "Description"})
		table.SetAutoWrapText(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, t := range regress.Tests() {
			table.Append([]string{t.Name, t.Design, t.Description})
		}

		table.Render()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
