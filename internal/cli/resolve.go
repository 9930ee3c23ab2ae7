package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ocean-manifest/internal/app"
)

type resolveOptions struct {
	Spec       string
	Index      string
	OutputDir  string
	Labels     []string
	SnapshotID string
	SATSolver  bool
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve every matrix cell and write lock outputs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Spec, "spec", "", "Pipeline spec path")
	cmd.Flags().StringVar(&opts.Index, "index", "", "Package index file")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	cmd.Flags().StringSliceVar(&opts.Labels, "label", nil, "Resolve only the named matrix labels")
	cmd.Flags().StringVar(&opts.SnapshotID, "snapshot-id", "", "Snapshot ID (optional override)")
	cmd.Flags().BoolVar(&opts.SATSolver, "sat-solver", false, "Use the SAT solver for transitive resolution")

	_ = viper.BindPFlag("spec", cmd.Flags().Lookup("spec"))
	_ = viper.BindPFlag("index", cmd.Flags().Lookup("index"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("labels", cmd.Flags().Lookup("label"))
	_ = viper.BindPFlag("snapshot_id", cmd.Flags().Lookup("snapshot-id"))
	_ = viper.BindPFlag("sat_solver", cmd.Flags().Lookup("sat-solver"))

	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, opts resolveOptions) error {
	service := newAppService()
	result, err := service.Resolve(ctx, app.ResolveRequest{
		SpecPath:   resolveString(cmd, opts.Spec, "spec", "spec"),
		Index:      resolveString(cmd, opts.Index, "index", "index"),
		OutputDir:  resolveString(cmd, opts.OutputDir, "output", "output"),
		Labels:     resolveStrings(cmd, opts.Labels, "labels", "label"),
		SnapshotID: resolveString(cmd, opts.SnapshotID, "snapshot_id", "snapshot-id"),
		SATSolver:  resolveBool(cmd, opts.SATSolver, "sat_solver", "sat-solver"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("resolved: %s (%d locks, snapshot %s)\n", result.PipelineName, result.LockCount, result.SnapshotID)
	return nil
}
