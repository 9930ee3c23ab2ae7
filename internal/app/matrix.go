package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/adapters"
	"ocean-manifest/internal/core"
	"ocean-manifest/internal/types"
)

// Matrix expands the os/python/constraint-set cross product after
// applying exclusions. With an output directory it also writes the
// matrix report consumed by CI.
func (s Service) Matrix(ctx context.Context, req MatrixRequest) (MatrixResult, error) {
	specPath := strings.TrimSpace(req.SpecPath)
	if specPath == "" {
		return MatrixResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("pipeline spec path is required")
	}
	spec, err := s.SpecLoader.LoadPipeline(specPath)
	if err != nil {
		return MatrixResult{}, err
	}
	jobs, err := core.ExpandMatrix(ctx, spec.Matrix)
	if err != nil {
		return MatrixResult{}, err
	}
	if outputDir := strings.TrimSpace(req.OutputDir); outputDir != "" {
		entries := make([]types.MatrixReportEntry, 0, len(jobs))
		for _, job := range jobs {
			entries = append(entries, types.MatrixReportEntry{
				OS:            job.OS,
				Python:        job.Python,
				ConstraintSet: job.ConstraintSet,
				Label:         job.Label,
			})
		}
		output := adapters.NewOutputFileAdapter(outputDir)
		if err := output.WriteMatrixReport(entries); err != nil {
			return MatrixResult{}, err
		}
	}
	return MatrixResult{PipelineName: spec.Metadata.Name, Jobs: jobs}, nil
}
