package ports

import "ocean-manifest/internal/types"

type PipelineSpecPort interface {
	LoadPipeline(path string) (types.Spec, error)
}
