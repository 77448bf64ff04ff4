package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/engine"
	"github.com/JoshBrudnak/Javadoc-To-Markdown/internal/facts"
)

func newGenerateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "generate [path]",
		Short: "Generate Markdown documentation for a Java project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := repoArg(args)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, opts, repo)
			if err != nil {
				return err
			}
			eng, closeEngine, err := newEngine(cfg)
			if err != nil {
				return err
			}
			defer closeEngine()

			snapshot, err := generate(cmd, eng, repo)
			if err != nil {
				return err
			}
			printSummary(cmd.ErrOrStderr(), snapshot, eng.OutputDir(repo))
			return nil
		},
	}
}

// generate runs one documentation pass and writes its artifacts.
func generate(cmd *cobra.Command, eng *engine.Engine, repo string) (*facts.Snapshot, error) {
	snapshot, err := eng.GenerateSnapshot(cmd.Context(), repo)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	if err := eng.WriteArtifacts(repo); err != nil {
		return nil, fmt.Errorf("writing artifacts: %w", err)
	}
	return snapshot, nil
}

func printSummary(w io.Writer, snapshot *facts.Snapshot, outDir string) {
	fmt.Fprintf(w, "\nDocumentation complete:\n")
	fmt.Fprintf(w, "  Repository:  %s\n", snapshot.Meta.RepoPath)
	if app := snapshot.Application; app != nil {
		fmt.Fprintf(w, "  Files:       %d\n", app.FileNum)
		fmt.Fprintf(w, "  Types:       %d classes, %d interfaces, %d enums\n", app.ClassNum, app.InterfaceNum, app.EnumNum)
		fmt.Fprintf(w, "  Packages:    %d\n", len(app.Packages))
	}
	fmt.Fprintf(w, "  Changed:     %d\n", snapshot.Meta.ChangedFiles)
	fmt.Fprintf(w, "  Insights:    %d\n", snapshot.Meta.InsightCount)
	fmt.Fprintf(w, "  Artifacts:   %d\n", len(snapshot.Artifacts))
	fmt.Fprintf(w, "  Duration:    %s\n", snapshot.Meta.Duration)
	fmt.Fprintf(w, "  Output:      %s\n", outDir)
}
