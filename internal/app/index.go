package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"ocean-manifest/internal/ports"
)

// BuildIndex walks a remote package index and writes the local YAML
// index file that resolution runs against.
func (s Service) BuildIndex(ctx context.Context, req IndexRequest) (IndexResult, error) {
	output := strings.TrimSpace(req.Output)
	if output == "" {
		return IndexResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("index output path is required")
	}
	if strings.TrimSpace(req.IndexURL) == "" {
		return IndexResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("index url is required")
	}
	index, err := s.IndexBuilder.Build(ctx, ports.IndexBuildRequest{
		IndexURL:         req.IndexURL,
		User:             req.User,
		APIKey:           req.APIKey,
		Packages:         req.Packages,
		MaxPackages:      req.MaxPackages,
		Workers:          req.Workers,
		FetchRequires:    req.FetchRequires,
		HTTPTimeoutSec:   req.HTTPTimeoutSec,
		HTTPRetries:      req.HTTPRetries,
		HTTPRetryDelayMs: req.HTTPRetryDelayMs,
	})
	if err != nil {
		return IndexResult{}, err
	}
	if err := s.IndexWriter.Write(output, index); err != nil {
		return IndexResult{}, err
	}
	return IndexResult{OutputPath: output, PackageCount: len(index.Packages)}, nil
}
