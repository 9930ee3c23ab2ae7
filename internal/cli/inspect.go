package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ocean-manifest/internal/app"
)

type inspectOptions struct {
	OutputDir  string
	Index      string
	GraphLabel string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect resolved lock outputs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	cmd.Flags().StringVar(&opts.Index, "index", "", "Package index file (required for --graph)")
	cmd.Flags().StringVar(&opts.GraphLabel, "graph", "", "Print the dependency graph for this lock label in DOT format")
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("index", cmd.Flags().Lookup("index"))
	_ = viper.BindPFlag("graph_label", cmd.Flags().Lookup("graph"))
	return cmd
}

func runInspect(ctx context.Context, cmd *cobra.Command, opts inspectOptions) error {
	service := newAppService()
	result, err := service.Inspect(ctx, app.InspectRequest{
		OutputDir:  resolveString(cmd, opts.OutputDir, "output", "output"),
		Index:      resolveString(cmd, opts.Index, "index", "index"),
		GraphLabel: resolveString(cmd, opts.GraphLabel, "graph_label", "graph"),
	})
	if err != nil {
		return err
	}
	if result.GraphDOT != "" {
		fmt.Println(result.GraphDOT)
		return nil
	}

	fmt.Printf("locks: %d\n", result.LockCount)
	for _, summary := range result.Locks {
		fmt.Printf("- %s: %d pins\n", summary.Label, summary.Count)
		if len(summary.Packages) > 0 {
			fmt.Printf("  %s\n", strings.Join(summary.Packages, ", "))
		}
	}
	fmt.Printf("resolution.report records: %d\n", len(result.ResolutionRecords))
	for _, record := range result.ResolutionRecords {
		fmt.Printf("- %s %s %s (owner=%s)\n", record.Dependency, record.Action, record.Value, record.Owner)
	}
	if result.SnapshotIntent.SnapshotID != "" {
		fmt.Printf("snapshot: %s (channel=%s)\n", result.SnapshotIntent.SnapshotID, result.SnapshotIntent.Channel)
	}
	return nil
}
