package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/henryaj/heycochrane/pkg/config"
	"github.com/henryaj/heycochrane/pkg/site"
)

var (
	verbose      bool
	cfgFile      string
	dataPath     string
	templatePath string
	outputPath   string
	tagsPath     string

	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "heycochrane",
	Short: "Render Cochrane review summaries into a static page",
	Long: `heycochrane reads question/answer summaries of Cochrane reviews from a
YAML file and renders them into a single HTML page through a template.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			fatal("Failed to load config", err)
		}
		applyFlagOverrides(cfg)

		level := slog.LevelInfo
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
			level = slog.LevelInfo
		}
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func applyFlagOverrides(c *config.Config) {
	if dataPath != "" {
		c.Data = dataPath
	}
	if templatePath != "" {
		c.Template = templatePath
	}
	if outputPath != "" {
		c.Output = outputPath
	}
	if tagsPath != "" {
		c.Tags = tagsPath
	}
}

func newGenerator() *site.Generator {
	return site.New(
		site.WithLogger(slog.Default()),
		site.WithTagsPath(cfg.Tags),
	)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	flags.StringVar(&cfgFile, "config", config.DefaultFile, "Config file (TOML)")
	flags.StringVar(&dataPath, "data", "", "Data file with the review summaries (default summaries.yml)")
	flags.StringVar(&templatePath, "template", "", "Page template (default template.html)")
	flags.StringVar(&outputPath, "output", "", "Rendered output file (default index.html)")
	flags.StringVar(&tagsPath, "tags", "", "Tag metadata file (default tags.yml next to the data file)")
}
