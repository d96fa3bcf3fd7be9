package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/henryaj/heycochrane/pkg/git"
	"github.com/henryaj/heycochrane/pkg/site"
)

var (
	publishMsg    string
	publishRemote string
	publishBranch string
	publishNoPush bool
)

// publishCmd renders the page and commits it with git.
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Render the page, then commit and push it",
	Long: `Render the page, stage the output file, commit it and push the commit.
Nothing is committed when the rendered output did not change.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := newGenerator().RenderAndSave(cfg.Template, cfg.Data, cfg.Output); err != nil {
			fatal("Failed to render", err)
		}

		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}

		opts := site.PublishOptions{
			Message: cfg.Publish.Message,
			Remote:  cfg.Publish.Remote,
			Branch:  cfg.Publish.Branch,
			NoPush:  cfg.Publish.NoPush,
			Logger:  slog.Default(),
		}
		if cmd.Flags().Changed("message") {
			opts.Message = publishMsg
		}
		if cmd.Flags().Changed("remote") {
			opts.Remote = publishRemote
		}
		if cmd.Flags().Changed("branch") {
			opts.Branch = publishBranch
		}
		if publishNoPush {
			opts.NoPush = true
		}

		committed, err := site.Publish(git.NewClient(cwd, slog.Default()), cfg.Output, opts)
		if err != nil {
			fatal("Failed to publish", err)
		}
		if !committed {
			fmt.Println("Nothing to publish.")
			return
		}
		fmt.Printf("Published %s\n", cfg.Output)
	},
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVarP(&publishMsg, "message", "m", "", "Commit message")
	publishCmd.Flags().StringVar(&publishRemote, "remote", "", "Remote to push to")
	publishCmd.Flags().StringVar(&publishBranch, "branch", "", "Remote branch to push to (default: current branch)")
	publishCmd.Flags().BoolVar(&publishNoPush, "no-push", false, "Commit without pushing")
}
