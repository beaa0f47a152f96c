package cmd

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"mediagrab/internal/models"
)

// formatsCmd represents the formats command
var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the available output formats",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Name", "Extension", "Description"})
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, f := range models.Formats {
			table.Append([]string{f.ID, f.Name, f.Extension, f.Description})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
