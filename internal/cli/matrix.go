package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ocean-manifest/internal/app"
)

type matrixOptions struct {
	Spec      string
	OutputDir string
}

func newMatrixCommand() *cobra.Command {
	opts := matrixOptions{}
	cmd := &cobra.Command{
		Use:   "matrix",
		Short: "Expand the CI test matrix",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMatrix(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Spec, "spec", "", "Pipeline spec path")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "", "Write matrix.report into this directory")
	_ = viper.BindPFlag("spec", cmd.Flags().Lookup("spec"))
	_ = viper.BindPFlag("matrix_output", cmd.Flags().Lookup("output"))
	return cmd
}

func runMatrix(ctx context.Context, cmd *cobra.Command, opts matrixOptions) error {
	service := newAppService()
	result, err := service.Matrix(ctx, app.MatrixRequest{
		SpecPath:  resolveString(cmd, opts.Spec, "spec", "spec"),
		OutputDir: resolveString(cmd, opts.OutputDir, "matrix_output", "output"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("matrix for %s: %d jobs\n", result.PipelineName, len(result.Jobs))
	for _, job := range result.Jobs {
		fmt.Printf("- %s\n", job.Label)
	}
	return nil
}
