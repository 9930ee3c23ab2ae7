package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ocean-manifest/internal/app"
)

type indexOptions struct {
	Output           string
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

func newIndexCommand() *cobra.Command {
	opts := indexOptions{}
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build a local package index from a remote simple index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runIndex(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Output, "output", "index.yaml", "Index output path")
	cmd.Flags().StringVar(&opts.IndexURL, "index-url", "", "Remote package index base URL")
	cmd.Flags().StringVar(&opts.User, "index-user", "", "Index username for basic auth (defaults to api)")
	cmd.Flags().StringVar(&opts.APIKey, "index-api-key", "", "Index API key or password for basic auth")
	cmd.Flags().StringSliceVar(&opts.Packages, "package", nil, "Only fetch the named packages")
	cmd.Flags().IntVar(&opts.MaxPackages, "max", 0, "Maximum number of packages to fetch (0 = all)")
	cmd.Flags().IntVar(&opts.Workers, "workers", 8, "Concurrent fetch workers")
	cmd.Flags().BoolVar(&opts.FetchRequires, "fetch-requires", false, "Fetch per-release requires metadata (needed for --sat-solver and graphs)")
	cmd.Flags().IntVar(&opts.HTTPTimeoutSec, "http-timeout", 60, "HTTP timeout in seconds (0 = default)")
	cmd.Flags().IntVar(&opts.HTTPRetries, "http-retries", 3, "HTTP retries (0 = default)")
	cmd.Flags().IntVar(&opts.HTTPRetryDelayMs, "http-retry-delay-ms", 200, "HTTP retry base delay in ms (0 = default)")

	_ = viper.BindPFlag("index_output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("index_url", cmd.Flags().Lookup("index-url"))
	_ = viper.BindPFlag("index_user", cmd.Flags().Lookup("index-user"))
	_ = viper.BindPFlag("index_api_key", cmd.Flags().Lookup("index-api-key"))
	_ = viper.BindPFlag("index_packages", cmd.Flags().Lookup("package"))
	_ = viper.BindPFlag("index_max", cmd.Flags().Lookup("max"))
	_ = viper.BindPFlag("index_workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("index_fetch_requires", cmd.Flags().Lookup("fetch-requires"))
	_ = viper.BindPFlag("http_timeout_sec", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("http_retries", cmd.Flags().Lookup("http-retries"))
	_ = viper.BindPFlag("http_retry_delay_ms", cmd.Flags().Lookup("http-retry-delay-ms"))

	return cmd
}

func runIndex(ctx context.Context, cmd *cobra.Command, opts indexOptions) error {
	service := newAppService()
	result, err := service.BuildIndex(ctx, app.IndexRequest{
		Output:           resolveString(cmd, opts.Output, "index_output", "output"),
		IndexURL:         resolveString(cmd, opts.IndexURL, "index_url", "index-url"),
		User:             resolveString(cmd, opts.User, "index_user", "index-user"),
		APIKey:           resolveString(cmd, opts.APIKey, "index_api_key", "index-api-key"),
		Packages:         resolveStrings(cmd, opts.Packages, "index_packages", "package"),
		MaxPackages:      resolveInt(cmd, opts.MaxPackages, "index_max", "max"),
		Workers:          resolveInt(cmd, opts.Workers, "index_workers", "workers"),
		FetchRequires:    resolveBool(cmd, opts.FetchRequires, "index_fetch_requires", "fetch-requires"),
		HTTPTimeoutSec:   resolveInt(cmd, opts.HTTPTimeoutSec, "http_timeout_sec", "http-timeout"),
		HTTPRetries:      resolveInt(cmd, opts.HTTPRetries, "http_retries", "http-retries"),
		HTTPRetryDelayMs: resolveInt(cmd, opts.HTTPRetryDelayMs, "http_retry_delay_ms", "http-retry-delay-ms"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote package index: %s (%d packages)\n", result.OutputPath, result.PackageCount)
	return nil
}
