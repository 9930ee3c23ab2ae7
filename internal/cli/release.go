package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ocean-manifest/internal/app"
)

type releaseOptions struct {
	Spec        string
	Tag         string
	OutputDir   string
	SnapshotDir string
	Promote     bool
}

func newReleaseCommand() *cobra.Command {
	opts := releaseOptions{}
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Evaluate a tag against the release rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRelease(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Spec, "spec", "", "Pipeline spec path")
	cmd.Flags().StringVar(&opts.Tag, "tag", "", "Tag to evaluate")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory of the resolve run")
	cmd.Flags().StringVar(&opts.SnapshotDir, "snapshot-dir", "", "Snapshot directory for promotion")
	cmd.Flags().BoolVar(&opts.Promote, "promote", false, "Record and promote the snapshot when eligible")
	_ = viper.BindPFlag("spec", cmd.Flags().Lookup("spec"))
	_ = viper.BindPFlag("tag", cmd.Flags().Lookup("tag"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("snapshot_dir", cmd.Flags().Lookup("snapshot-dir"))
	_ = viper.BindPFlag("promote", cmd.Flags().Lookup("promote"))
	return cmd
}

func runRelease(ctx context.Context, cmd *cobra.Command, opts releaseOptions) error {
	service := newAppService()
	result, err := service.Release(ctx, app.ReleaseRequest{
		SpecPath:    resolveString(cmd, opts.Spec, "spec", "spec"),
		Tag:         resolveString(cmd, opts.Tag, "tag", "tag"),
		OutputDir:   resolveString(cmd, opts.OutputDir, "output", "output"),
		SnapshotDir: resolveString(cmd, opts.SnapshotDir, "snapshot_dir", "snapshot-dir"),
		Promote:     resolveBool(cmd, opts.Promote, "promote", "promote"),
	})
	if err != nil {
		return err
	}
	decision := result.Decision
	if decision.Eligible {
		fmt.Printf("eligible: %s -> %s (channel=%s)\n", decision.Tag, decision.Version, decision.Channel)
	} else {
		fmt.Printf("not eligible: %s\n", decision.Tag)
		for _, reason := range decision.Reasons {
			fmt.Printf("- %s\n", reason)
		}
	}
	if result.Promoted {
		fmt.Printf("promoted snapshot %s to %s\n", result.SnapshotID, strings.TrimSpace(decision.Channel))
	}
	return nil
}
