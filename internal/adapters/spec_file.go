package adapters

import (
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"ocean-manifest/internal/ports"
	"ocean-manifest/internal/types"
)

type SpecFileAdapter struct{}

func NewSpecFileAdapter() SpecFileAdapter {
	return SpecFileAdapter{}
}

func (a SpecFileAdapter) LoadPipeline(path string) (types.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Spec{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("pipeline spec not found").
			WithCause(err)
	}
	var spec types.Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return types.Spec{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse pipeline spec yaml").
			WithCause(err)
	}
	if spec.Kind != types.SpecKindPipeline {
		return types.Spec{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("spec kind is not pipeline")
	}
	return spec, nil
}

var _ ports.PipelineSpecPort = SpecFileAdapter{}
