package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/movewise/movewise/pkg/movewise/analyzer"
	"github.com/movewise/movewise/pkg/movewise/config"
	"github.com/movewise/movewise/pkg/movewise/logging"
	"github.com/movewise/movewise/pkg/movewise/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full pre-migration inventory",
	Long: `Analyze probes the host's capabilities, derives scan limits and runs the
files, applications and configurations phases concurrently. The result is a
summary by default, or the complete inventory tree with --format json|yaml.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringSliceP("root", "r", nil, "user-data roots to inventory (default: home directory)")
	analyzeCmd.Flags().StringSliceP("exclude", "e", nil, "directory prefixes to exclude (repeatable)")
	analyzeCmd.Flags().StringP("format", "f", "summary", "output format: summary, json or yaml")
	analyzeCmd.Flags().Bool("progress", false, "log progress updates while scanning")

	rootCmd.AddCommand(analyzeCmd)
}

// runAnalyze wires config, logging and the analyzer together and prints the
// result.
func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := cfg.Logging.Level
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	logPath := cfg.Logging.Path
	if flagPath, _ := cmd.Flags().GetString("log-file"); flagPath != "" {
		logPath = flagPath
	}
	if err := logging.Init(logging.Config{Level: level, Path: logPath}); err != nil {
		return err
	}
	defer logging.Close()

	roots, _ := cmd.Flags().GetStringSlice("root")
	if len(roots) == 0 {
		roots = cfg.Roots.Files
	}
	exclude, _ := cmd.Flags().GetStringSlice("exclude")

	a := analyzer.New(analyzer.Options{
		FileRoots:     roots,
		AppRoots:      cfg.Roots.Apps,
		ConfigRoots:   cfg.Roots.Configs,
		Exclude:       append(cfg.Exclude, exclude...),
		MaxAppEntries: cfg.Limits.MaxAppEntries,
		MaxDepth:      cfg.Limits.MaxDepth,
	})

	if showProgress, _ := cmd.Flags().GetBool("progress"); showProgress {
		progressLog := logging.Get("progress")
		a.SetProgressCallback(func(p types.Progress) {
			if p.Warning != nil {
				progressLog.Warn(p.Warning.Details,
					"type", string(p.Warning.Type),
					"path", p.Warning.Path,
					"entries", p.Warning.FileCount)
				return
			}
			progressLog.Info("scanning",
				"phase", string(p.Phase),
				"items", p.Current,
				"path", p.CurrentPath)
		})
		defer a.ClearProgressCallback()
	}

	ctx := cmd.Context()
	if err := a.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	result, err := a.Analyze(ctx)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	return printResult(result, format)
}

// printResult renders the run result in the requested format.
func printResult(result *analyzer.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return enc.Encode(result)
	case "summary", "":
		printSummary(result)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// printSummary writes a human-readable digest of the run.
func printSummary(result *analyzer.Result) {
	fmt.Printf("run %s completed in %s\n", result.RunID, result.Elapsed.Round(time.Millisecond))
	fmt.Printf("  files:          %d items\n", countItems(result.Files))
	fmt.Printf("  apps:           %d items\n", countItems(result.Apps))
	fmt.Printf("  configurations: %d items\n", countItems(result.Configurations))
	fmt.Printf("  total size:     %s\n", types.FormatSize(totalSize(result.Files)))
	for phase, err := range result.PhaseErrors {
		fmt.Printf("  phase %s degraded: %v\n", phase, err)
	}
}

func countItems(items []*types.FileItem) int {
	n := 0
	for _, it := range items {
		n += it.Count()
	}
	return n
}

func totalSize(items []*types.FileItem) int64 {
	var total int64
	for _, it := range items {
		if !it.IsDir() {
			total += it.Size
		}
		total += totalSize(it.Children)
	}
	return total
}
