package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/henryaj/heycochrane/pkg/site"
)

var watchPatterns []string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the page whenever an input changes",
	Long: `Render the page once, then watch the data, template and tag files (plus any
--pattern globs) and render again after every change. Stop with Ctrl+C.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gen := newGenerator()
		if err := gen.RenderAndSave(cfg.Template, cfg.Data, cfg.Output); err != nil {
			slog.Error("initial render failed", "error", err)
		}

		patterns := cfg.Watch.Patterns
		if cmd.Flags().Changed("pattern") {
			patterns = watchPatterns
		}

		w := site.NewWatcher(gen, site.WatchConfig{
			TemplatePath: cfg.Template,
			DataPath:     cfg.Data,
			OutputPath:   cfg.Output,
			Patterns:     patterns,
			Debounce:     cfg.Watch.GetDebounce(),
		})
		if err := w.Start(ctx); err != nil {
			fatal("Failed to start watcher", err)
		}

		fmt.Printf("Watching for changes, writing %s\n", cfg.Output)
		<-ctx.Done()
		<-w.Done()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringArrayVar(&watchPatterns, "pattern", nil, "Extra glob of files that trigger a render (repeatable, supports **)")
}
