package ports

import (
	"context"

	"ocean-manifest/internal/types"
)

type IndexPort interface {
	AvailableVersions(name string) ([]string, error)
	Releases() (map[string][]types.PackageRelease, error)
}

type IndexBuildRequest struct {
	IndexURL         string
	User             string
	APIKey           string
	Packages         []string
	MaxPackages      int
	Workers          int
	FetchRequires    bool
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
}

type IndexBuilderPort interface {
	Build(ctx context.Context, request IndexBuildRequest) (types.IndexFile, error)
}

type IndexWriterPort interface {
	Write(path string, index types.IndexFile) error
}
