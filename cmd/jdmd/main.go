package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/config"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/engine"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/explainers/cycles"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/explainers/doclint"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/explainers/layers"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/extractors/javaextractor"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/renderers/markdown"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/renderers/modeldump"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/renderers/summary"
)

// These variables are set at build time through ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var log = commonlog.GetLogger("jdmd")

// options are the flags shared by every command.
type options struct {
	verbose    int
	quiet      bool
	configPath string
	outputDir  string
	lint       bool
	workers    int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "jdmd",
		Short: "jdmd turns Javadoc comments into Markdown documentation.",
		Long: `jdmd parses the Java sources of a project, reads the doc comment in front
of every type, method and field, and writes one Markdown page per type plus a
package index. It can also serve the parsed documentation to MCP clients.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Logs go to stderr; stdout carries command output and MCP traffic.
			verbosity := opts.verbose
			if opts.quiet {
				verbosity = -1
			}
			commonlog.Configure(verbosity, nil)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.CountVarP(&opts.verbose, "verbose", "v", "increase log verbosity (repeatable)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "disable logging")
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default is <repo>/"+config.FileName+")")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "output directory, overrides output.dir")
	flags.BoolVar(&opts.lint, "lint", false, "report documentation gaps and parser diagnostics")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "files parsed in parallel (default one per CPU)")

	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newParseCmd(opts),
		newServeCmd(opts),
		newWatchCmd(opts),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig reads the config for repo and applies the command-line
// overrides. An explicit --config must exist; the default one may not.
func loadConfig(cmd *cobra.Command, opts *options, repo string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.LoadOrDefault(filepath.Join(repo, config.FileName))
	}
	if err != nil {
		return nil, err
	}

	cfg.Repo = repo
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Dir = opts.outputDir
	}
	if flags.Changed("lint") {
		cfg.Lint = opts.lint
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newEngine builds an engine with every extractor, explainer and renderer
// registered. The returned func releases the extractor cache.
func newEngine(cfg *config.Config) (*engine.Engine, func(), error) {
	eng, err := engine.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating engine: %w", err)
	}

	java := javaextractor.New(cfg.Workers, cfg.Lint)
	eng.RegisterExtractor(java)

	eng.RegisterExplainer(cycles.New())
	eng.RegisterExplainer(layers.New())
	if cfg.Lint {
		eng.RegisterExplainer(doclint.New())
	}

	eng.RegisterRenderer(markdown.New())
	eng.RegisterRenderer(summary.New(cfg.Output.MaxSummaryTokens))
	eng.RegisterRenderer(modeldump.New())

	return eng, java.Close, nil
}

// repoArg returns the absolute repository path from the optional
// positional argument.
func repoArg(args []string) (string, error) {
	repo := "."
	if len(args) > 0 {
		repo = args[0]
	}
	abs, err := filepath.Abs(repo)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", repo, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}
