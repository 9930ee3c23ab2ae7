package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	pep440 "github.com/aquasecurity/go-pep440-version"
	"github.com/hashicorp/go-retryablehttp"
	"gopkg.in/yaml.v3"

	"ocean-manifest/internal/ports"
	"ocean-manifest/internal/shared"
	"ocean-manifest/internal/types"
)

type IndexBuilderAdapter struct{}

type IndexWriterAdapter struct{}

const defaultFetchWorkers = 8
const defaultHTTPTimeout = 60 * time.Second
const defaultHTTPRetries = 3
const defaultHTTPRetryDelay = 200 * time.Millisecond
const maxHTTPRetryDelay = 2 * time.Second

func NewIndexBuilderAdapter() IndexBuilderAdapter {
	return IndexBuilderAdapter{}
}

func NewIndexWriterAdapter() IndexWriterAdapter {
	return IndexWriterAdapter{}
}

// Build walks a PEP 503 simple index and returns the package/version
// table. With FetchRequires set it additionally queries the JSON API
// for each release's requires_dist so locks can be solved transitively.
func (a IndexBuilderAdapter) Build(ctx context.Context, request ports.IndexBuildRequest) (types.IndexFile, error) {
	indexURL := strings.TrimSpace(request.IndexURL)
	if indexURL == "" {
		return types.IndexFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("index url is required")
	}
	client := newRetryClient(request)

	simpleBase := normalizeSimpleIndex(indexURL)
	names := shared.UniqueStrings(normalizePackageNames(request.Packages))
	if len(names) == 0 {
		list, err := fetchPackageNames(ctx, client, simpleBase, request.User, request.APIKey)
		if err != nil {
			return types.IndexFile{}, err
		}
		names = list
	}
	if request.MaxPackages > 0 && len(names) > request.MaxPackages {
		names = names[:request.MaxPackages]
	}

	index := types.IndexFile{Packages: map[string][]string{}}
	if request.FetchRequires {
		index.Releases = map[string][]types.PackageRelease{}
	}
	if len(names) == 0 {
		return index, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	workerCount := request.Workers
	if workerCount <= 0 {
		workerCount = defaultFetchWorkers
	}
	if len(names) < workerCount {
		workerCount = len(names)
	}

	type fetchResult struct {
		name     string
		versions []string
		releases []types.PackageRelease
		err      error
	}
	tasks := make(chan string)
	results := make(chan fetchResult, len(names))
	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range tasks {
				if ctx.Err() != nil {
					results <- fetchResult{name: name, err: ctx.Err()}
					continue
				}
				versions, err := fetchPackageVersions(ctx, client, simpleBase, name, request.User, request.APIKey)
				if err != nil {
					results <- fetchResult{name: name, err: err}
					continue
				}
				var releases []types.PackageRelease
				if request.FetchRequires {
					releases, err = fetchPackageReleases(ctx, client, indexURL, name, versions, request.User, request.APIKey)
				}
				results <- fetchResult{name: name, versions: versions, releases: releases, err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		tasks <- name
	}
	close(tasks)

	var firstErr error
	for result := range results {
		if result.err != nil && firstErr == nil {
			firstErr = result.err
			cancel()
		}
		if result.err == nil && len(result.versions) > 0 {
			index.Packages[result.name] = result.versions
			if request.FetchRequires {
				index.Releases[result.name] = result.releases
			}
		}
	}
	if firstErr != nil {
		return types.IndexFile{}, firstErr
	}
	return index, nil
}

func (a IndexWriterAdapter) Write(path string, index types.IndexFile) error {
	if strings.TrimSpace(path) == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("output path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to create index directory").
				WithCause(err)
		}
	}
	data, err := yaml.Marshal(index)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to marshal index").
			WithCause(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write index file").
			WithCause(err)
	}
	return nil
}

func newRetryClient(request ports.IndexBuildRequest) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil
	timeout := time.Duration(request.HTTPTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client.HTTPClient.Timeout = timeout
	retries := request.HTTPRetries
	if retries <= 0 {
		retries = defaultHTTPRetries
	}
	client.RetryMax = retries
	baseDelay := time.Duration(request.HTTPRetryDelayMs) * time.Millisecond
	if baseDelay <= 0 {
		baseDelay = defaultHTTPRetryDelay
	}
	client.RetryWaitMin = baseDelay
	client.RetryWaitMax = maxHTTPRetryDelay
	return client
}

func doRequest(ctx context.Context, client *retryablehttp.Client, url string, user string, apiKey string) (*http.Response, error) {
	req, err := retryablehttp.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to build index request").
			WithCause(err)
	}
	req = req.WithContext(ctx)
	if apiKey != "" {
		if user == "" {
			user = "api"
		}
		req.SetBasicAuth(user, apiKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("index request failed").
			WithCause(err)
	}
	return resp, nil
}

func fetchPackageNames(ctx context.Context, client *retryablehttp.Client, simpleBase string, user string, apiKey string) ([]string, error) {
	resp, err := doRequest(ctx, client, simpleBase, user, apiKey)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to fetch package index").
			WithCause(shared.HTTPStatusError(resp.StatusCode, simpleBase))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read package index").
			WithCause(err)
	}
	names := parseSimpleNames(string(body))
	if len(names) == 0 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("package index returned no packages")
	}
	return names, nil
}

func fetchPackageVersions(ctx context.Context, client *retryablehttp.Client, simpleBase string, name string, user string, apiKey string) ([]string, error) {
	url := strings.TrimRight(simpleBase, "/") + "/" + name + "/"
	resp, err := doRequest(ctx, client, url, user, apiKey)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to fetch package page").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read package page").
			WithCause(err)
	}
	return sortVersions(parseVersionsFromSimple(string(body))), nil
}

// releaseJSON is the slice of the JSON API response this tool consumes.
type releaseJSON struct {
	Info struct {
		RequiresDist []string `json:"requires_dist"`
	} `json:"info"`
}

func fetchPackageReleases(ctx context.Context, client *retryablehttp.Client, indexURL string, name string, versions []string, user string, apiKey string) ([]types.PackageRelease, error) {
	base := strings.TrimRight(jsonAPIBase(indexURL), "/")
	releases := make([]types.PackageRelease, 0, len(versions))
	for _, version := range versions {
		url := fmt.Sprintf("%s/pypi/%s/%s/json", base, name, version)
		resp, err := doRequest(ctx, client, url, user, apiKey)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			releases = append(releases, types.PackageRelease{Version: version})
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to fetch release metadata").
				WithCause(shared.HTTPStatusError(resp.StatusCode, url))
		}
		var doc releaseJSON
		err = json.NewDecoder(resp.Body).Decode(&doc)
		resp.Body.Close()
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to decode release metadata").
				WithCause(err)
		}
		releases = append(releases, types.PackageRelease{
			Version:  version,
			Requires: doc.Info.RequiresDist,
		})
	}
	return releases, nil
}

func normalizeSimpleIndex(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if strings.HasSuffix(trimmed, "/simple") {
		return trimmed + "/"
	}
	return trimmed + "/simple/"
}

// jsonAPIBase strips a trailing /simple so the JSON API lives next to
// the simple index.
func jsonAPIBase(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	return strings.TrimSuffix(trimmed, "/simple")
}

func parseSimpleNames(content string) []string {
	re := regexp.MustCompile(`(?is)<a[^>]*>([^<]+)</a>`)
	matches := re.FindAllStringSubmatch(content, -1)
	var names []string
	for _, match := range matches {
		name := strings.TrimSpace(match[1])
		if name == "" {
			continue
		}
		names = append(names, shared.NormalizePackageName(name))
	}
	sort.Strings(names)
	return shared.UniqueStrings(names)
}

func parseVersionsFromSimple(content string) []string {
	re := regexp.MustCompile(`href=["']([^"']+)["']`)
	matches := re.FindAllStringSubmatch(content, -1)
	versions := map[string]struct{}{}
	for _, match := range matches {
		raw := strings.Split(match[1], "#")[0]
		filename := raw
		if idx := strings.LastIndex(raw, "/"); idx >= 0 {
			filename = raw[idx+1:]
		}
		version := parseVersionFromFilename(filename)
		if version == "" {
			continue
		}
		versions[version] = struct{}{}
	}
	out := make([]string, 0, len(versions))
	for version := range versions {
		out = append(out, version)
	}
	return out
}

// parseVersionFromFilename extracts the version segment from an sdist
// or wheel filename ("dimod-0.10.13.tar.gz", "dimod-0.12.3-cp311-...whl").
func parseVersionFromFilename(filename string) string {
	name := filename
	for _, suffix := range []string{".tar.gz", ".zip", ".whl", ".tar.bz2"} {
		if strings.HasSuffix(name, suffix) {
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	parts := strings.Split(name, "-")
	if len(parts) < 2 {
		return ""
	}
	candidate := parts[1]
	if _, err := pep440.Parse(candidate); err != nil {
		return ""
	}
	return candidate
}

func normalizePackageNames(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		name := shared.NormalizePackageName(value)
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}

func sortVersions(versions []string) []string {
	ordered := append([]string(nil), versions...)
	sort.Slice(ordered, func(i, j int) bool {
		vi, erri := pep440.Parse(ordered[i])
		vj, errj := pep440.Parse(ordered[j])
		if erri != nil || errj != nil {
			return ordered[i] < ordered[j]
		}
		return vi.Compare(vj) < 0
	})
	return ordered
}

var _ ports.IndexBuilderPort = IndexBuilderAdapter{}
var _ ports.IndexWriterPort = IndexWriterAdapter{}
