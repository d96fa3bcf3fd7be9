package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/henryaj/heycochrane"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of heycochrane",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("heycochrane version %s\n", strings.TrimSpace(heycochrane.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
