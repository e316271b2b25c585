// Package cli wires the depscope commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phobologic/depscope/internal/catalog"
	"github.com/phobologic/depscope/internal/classify"
	"github.com/phobologic/depscope/internal/config"
	"github.com/phobologic/depscope/internal/graph"
	"github.com/phobologic/depscope/internal/report"
)

// Version is stamped at build time.
var Version = "dev"

// rootCommand holds the flags for the analyze invocation.
type rootCommand struct {
	configPath  string
	format      string
	workers     int
	maxNodes    int
	maxFileSize int64
	sourceRoots []string
	disabled    []string
	noColor     bool
}

// NewRootCommand creates the depscope command tree.
func NewRootCommand() *cobra.Command {
	cmd := &rootCommand{}

	root := &cobra.Command{
		Use:   "depscope <repo-root> <focus-file>",
		Short: "Trace a file's import dependencies and classify known bug patterns",
		Long: `depscope recursively discovers every file the focus file depends on
via import/include/require statements across languages, evaluates each
discovered file against a catalog of known defect patterns, and prints
a severity-ordered findings report with a graph summary.

The focus file may be absolute or relative to the repository root.
Exit status is 0 on a completed analysis, even when findings exist.`,
		Args:          cobra.ExactArgs(2),
		RunE:          cmd.run,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().StringVar(&cmd.configPath, "config", "", "config file (default: .depscope.yaml in CWD or $HOME)")
	root.Flags().StringVarP(&cmd.format, "format", "f", "text", "output format: text or json")
	root.Flags().IntVar(&cmd.workers, "workers", 0, "worker pool size (0 = GOMAXPROCS)")
	root.Flags().IntVarP(&cmd.maxNodes, "max-nodes", "n", config.DefaultMaxNodes, "node ceiling before the graph is truncated (0 = unbounded)")
	root.Flags().Int64Var(&cmd.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "skip files larger than this many bytes (0 = unbounded)")
	root.Flags().StringSliceVar(&cmd.sourceRoots, "source-root", nil, "extra root-like directory for package-style imports (repeatable)")
	root.Flags().StringSliceVar(&cmd.disabled, "disable", nil, "catalog rule id to skip (repeatable)")
	root.Flags().BoolVar(&cmd.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newRulesCommand())

	return root
}

func (c *rootCommand) run(cobraCmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.applyFlags(cobraCmd, cfg)

	if c.format != "text" && c.format != "json" {
		return fmt.Errorf("unsupported format %q", c.format)
	}

	g, err := graph.Build(args[0], args[1], graph.Options{
		MaxNodes:    cfg.MaxNodes,
		MaxFileSize: cfg.MaxFileSize,
		Workers:     cfg.Workers,
		SourceRoots: cfg.SourceRoots,
		Warnings:    cobraCmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	cat := catalog.Default().Without(cfg.DisabledRules)
	findings := report.Dedupe(classify.Run(g, cat, cfg.Workers))
	sum := g.Summarize()

	out := cobraCmd.OutOrStdout()
	if c.format == "json" {
		return report.RenderJSON(out, findings, sum)
	}
	report.RenderText(out, findings, sum, cfg.NoColor)
	return nil
}

// applyFlags overlays explicitly set flags onto the loaded config, so
// the precedence is flags > env > file > defaults.
func (c *rootCommand) applyFlags(cobraCmd *cobra.Command, cfg *config.Config) {
	flags := cobraCmd.Flags()
	if flags.Changed("workers") {
		cfg.Workers = c.workers
	}
	if flags.Changed("max-nodes") {
		cfg.MaxNodes = c.maxNodes
	}
	if flags.Changed("max-file-size") {
		cfg.MaxFileSize = c.maxFileSize
	}
	if flags.Changed("source-root") {
		cfg.SourceRoots = append(cfg.SourceRoots, c.sourceRoots...)
	}
	if flags.Changed("disable") {
		cfg.DisabledRules = append(cfg.DisabledRules, c.disabled...)
	}
	if flags.Changed("no-color") {
		cfg.NoColor = c.noColor
	}
}
