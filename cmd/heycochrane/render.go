package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the page",
	Long:  `Render the data file through the template and write the output file.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := newGenerator().RenderAndSave(cfg.Template, cfg.Data, cfg.Output); err != nil {
			fatal("Failed to render", err)
		}
		fmt.Printf("Rendered %s\n", cfg.Output)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
