package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ocean-manifest/internal/app"
)

type pruneOptions struct {
	SnapshotDir     string
	KeepLast        int
	KeepDays        int
	ProtectChannels []string
	ProtectPrefixes []string
	DryRun          bool
}

func newPruneCommand() *cobra.Command {
	opts := pruneOptions{}
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Prune recorded snapshots based on retention policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrune(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.SnapshotDir, "snapshot-dir", "", "Snapshot directory")
	cmd.Flags().IntVar(&opts.KeepLast, "keep-last", 0, "Keep last N snapshots per group")
	cmd.Flags().IntVar(&opts.KeepDays, "keep-days", 0, "Keep snapshots newer than N days")
	cmd.Flags().StringSliceVar(&opts.ProtectChannels, "protect-channel", nil, "Protect channels from pruning")
	cmd.Flags().StringSliceVar(&opts.ProtectPrefixes, "protect-prefix", nil, "Protect snapshot prefixes from pruning")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", true, "Only report prune actions without deleting")

	_ = viper.BindPFlag("snapshot_dir", cmd.Flags().Lookup("snapshot-dir"))
	_ = viper.BindPFlag("keep_last", cmd.Flags().Lookup("keep-last"))
	_ = viper.BindPFlag("keep_days", cmd.Flags().Lookup("keep-days"))
	_ = viper.BindPFlag("protect_channels", cmd.Flags().Lookup("protect-channel"))
	_ = viper.BindPFlag("protect_prefixes", cmd.Flags().Lookup("protect-prefix"))
	_ = viper.BindPFlag("dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runPrune(ctx context.Context, cmd *cobra.Command, opts pruneOptions) error {
	service := newAppService()
	result, err := service.PruneSnapshots(ctx, app.PruneRequest{
		SnapshotDir:     resolveString(cmd, opts.SnapshotDir, "snapshot_dir", "snapshot-dir"),
		KeepLast:        resolveInt(cmd, opts.KeepLast, "keep_last", "keep-last"),
		KeepDays:        resolveInt(cmd, opts.KeepDays, "keep_days", "keep-days"),
		ProtectChannels: resolveStrings(cmd, opts.ProtectChannels, "protect_channels", "protect-channel"),
		ProtectPrefixes: resolveStrings(cmd, opts.ProtectPrefixes, "protect_prefixes", "protect-prefix"),
		DryRun:          resolveBool(cmd, opts.DryRun, "dry_run", "dry-run"),
	})
	if err != nil {
		return err
	}
	if result.DryRun {
		fmt.Printf("dry run: would keep %d, delete %d\n", result.KeepCount, result.DeleteCount)
		return nil
	}
	fmt.Printf("kept %d, deleted %d\n", result.KeepCount, result.DeleteCount)
	for _, snapshotID := range result.Deleted {
		fmt.Printf("- %s\n", snapshotID)
	}
	return nil
}
