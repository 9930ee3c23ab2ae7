//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"ocean-manifest/internal/adapters"
	"ocean-manifest/internal/app"
	"ocean-manifest/tests/testutil"
)

type pypiRequest struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	User   string `json:"user"`
	Pass   string `json:"pass"`
}

func TestE2EIndexResolvePromoteWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers e2e in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startPyPIMock(ctx, t)
	t.Cleanup(cleanup)

	root := testutil.RepoRoot(t)
	workDir := t.TempDir()
	indexPath := filepath.Join(workDir, "index.yaml")
	outputDir := filepath.Join(workDir, "out")
	snapshotDir := filepath.Join(workDir, "snapshots")

	service := app.NewService()
	indexResult, err := service.BuildIndex(ctx, app.IndexRequest{
		Output:   indexPath,
		IndexURL: endpoint,
		APIKey:   "secret",
		Packages: []string{
			"dimod", "dwave-neal", "dwave-preprocessing", "dwave-system",
			"minorminer", "numpy", "scipy",
		},
		FetchRequires:    true,
		Workers:          2,
		HTTPTimeoutSec:   10,
		HTTPRetries:      1,
		HTTPRetryDelayMs: 100,
	})
	require.NoError(t, err)
	require.Equal(t, 7, indexResult.PackageCount)

	index := adapters.NewIndexFileAdapter(indexPath)
	dimodVersions, err := index.AvailableVersions("dimod")
	require.NoError(t, err)
	require.Equal(t, []string{"0.10.13", "0.12.3"}, dimodVersions)
	releases, err := index.Releases()
	require.NoError(t, err)
	require.Equal(t, []string{"numpy>=1.21.6"}, releases["dimod"][1].Requires)

	resolveResult, err := service.Resolve(ctx, app.ResolveRequest{
		SpecPath:  filepath.Join(root, "fixtures/pipeline-sample.yaml"),
		Index:     indexPath,
		OutputDir: outputDir,
	})
	require.NoError(t, err)
	require.Equal(t, 13, resolveResult.LockCount)

	locks, err := adapters.NewOutputReaderAdapter().ReadEnvironmentLocks(outputDir)
	require.NoError(t, err)
	pins := pinsByLabel(locks)
	require.Equal(t, "1.24.4", pins["ubuntu-latest-py3.11-default"]["numpy"])
	require.Equal(t, "1.11.4", pins["ubuntu-latest-py3.11-default"]["scipy"])

	releaseResult, err := service.Release(ctx, app.ReleaseRequest{
		SpecPath:    filepath.Join(root, "fixtures/pipeline-sample.yaml"),
		Tag:         "ocean-6.1.0",
		OutputDir:   outputDir,
		SnapshotDir: snapshotDir,
		Promote:     true,
	})
	require.NoError(t, err)
	require.True(t, releaseResult.Promoted)
	require.Equal(t, resolveResult.SnapshotID, releaseResult.SnapshotID)

	snapshots, err := adapters.NewSnapshotFileAdapter(snapshotDir).ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Equal(t, "pypi", snapshots[0].Channel)

	requests, err := fetchPyPIRequests(endpoint)
	require.NoError(t, err)
	counts := map[string]int{}
	for _, req := range requests {
		require.Equal(t, "GET", req.Method)
		require.Equal(t, "api", req.User)
		require.Equal(t, "secret", req.Pass)
		counts[req.Path]++
	}
	// One simple page per package, one JSON document per release.
	require.Equal(t, 1, counts["/simple/dimod/"])
	require.Equal(t, 1, counts["/pypi/dimod/0.12.3/json"])
	require.Equal(t, 1, counts["/pypi/numpy/2.0.1/json"])
	require.Len(t, counts, 21)
}

func TestE2ESATResolveWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers e2e in short mode")
	}

	ctx := t.Context()
	endpoint, cleanup := startPyPIMock(ctx, t)
	t.Cleanup(cleanup)

	root := testutil.RepoRoot(t)
	workDir := t.TempDir()
	indexPath := filepath.Join(workDir, "index.yaml")
	outputDir := filepath.Join(workDir, "out")

	service := app.NewService()
	_, err := service.BuildIndex(ctx, app.IndexRequest{
		Output:   indexPath,
		IndexURL: endpoint,
		APIKey:   "secret",
		Packages: []string{
			"dimod", "dwave-neal", "dwave-preprocessing", "dwave-system",
			"minorminer", "numpy", "scipy",
		},
		FetchRequires:    true,
		HTTPTimeoutSec:   10,
		HTTPRetries:      1,
		HTTPRetryDelayMs: 100,
	})
	require.NoError(t, err)

	result, err := service.Resolve(ctx, app.ResolveRequest{
		SpecPath:  filepath.Join(root, "fixtures/pipeline-sample.yaml"),
		Index:     indexPath,
		OutputDir: outputDir,
		Labels:    []string{"ubuntu-latest-py3.11-default"},
		SATSolver: true,
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.LockCount)

	locks, err := adapters.NewOutputReaderAdapter().ReadEnvironmentLocks(outputDir)
	require.NoError(t, err)
	require.Len(t, locks, 1)
	pins := pinsByLabel(locks)["ubuntu-latest-py3.11-default"]
	require.Equal(t, "0.12.3", pins["dimod"])
	require.Equal(t, "1.11.4", pins["scipy"])
	require.Equal(t, "1.24.4", pins["numpy"])
}

func startPyPIMock(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8080/tcp"},
		Cmd:          []string{"python", "-c", pypiMockScript},
		WaitingFor:   wait.ForListeningPort("8080/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080/tcp")
	require.NoError(t, err)

	endpoint := fmt.Sprintf("http://%s:%s", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return endpoint, cleanup
}

func fetchPyPIRequests(endpoint string) ([]pypiRequest, error) {
	resp, err := http.Get(endpoint + "/requests")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	var requests []pypiRequest
	if err := json.NewDecoder(resp.Body).Decode(&requests); err != nil {
		return nil, err
	}
	return requests, nil
}

const pypiMockScript = `
import base64
import json
from http.server import BaseHTTPRequestHandler, ThreadingHTTPServer

PACKAGES = {
    "dimod": {"0.10.13": ["numpy>=1.19.0"], "0.12.3": ["numpy>=1.21.6"]},
    "dwave-neal": {"0.5.9": [], "0.6.0": []},
    "dwave-preprocessing": {"0.5.4": ["dimod>=0.10.0"]},
    "dwave-system": {
        "1.15.0": ["dimod>=0.10.0", "minorminer>=0.2.0"],
        "1.18.0": ["dimod>=0.10.0", "minorminer>=0.2.0", "numpy>=1.21.6"],
    },
    "minorminer": {"0.2.0": [], "0.2.12": []},
    "numpy": {"1.21.6": [], "1.24.4": [], "2.0.1": []},
    "scipy": {"1.7.3": [], "1.11.4": []},
}

requests = []

def parse_basic_auth(header_value):
    if not header_value:
        return "", ""
    if not header_value.startswith("Basic "):
        return "", ""
    try:
        raw = header_value.split(" ", 1)[1]
        decoded = base64.b64decode(raw).decode("utf-8")
        user, _, password = decoded.partition(":")
        return user, password
    except Exception:
        return "", ""

class Handler(BaseHTTPRequestHandler):
    def do_GET(self):
        if self.path == "/requests":
            self.send_response(200)
            self.send_header("Content-Type", "application/json")
            self.end_headers()
            self.wfile.write(json.dumps(requests).encode("utf-8"))
            return
        user, password = parse_basic_auth(self.headers.get("Authorization", ""))
        requests.append(
            {"method": "GET", "path": self.path, "user": user, "pass": password}
        )
        parts = [p for p in self.path.split("/") if p]
        if len(parts) == 2 and parts[0] == "simple" and parts[1] in PACKAGES:
            name = parts[1]
            links = []
            for version in sorted(PACKAGES[name]):
                filename = "%s-%s.tar.gz" % (name.replace("-", "_"), version)
                links.append('<a href="/files/%s">%s</a>' % (filename, filename))
            self.send_response(200)
            self.send_header("Content-Type", "text/html")
            self.end_headers()
            self.wfile.write("".join(links).encode("utf-8"))
            return
        if len(parts) == 4 and parts[0] == "pypi" and parts[3] == "json":
            name, version = parts[1], parts[2]
            requires = PACKAGES.get(name, {}).get(version)
            if requires is not None:
                self.send_response(200)
                self.send_header("Content-Type", "application/json")
                self.end_headers()
                body = {"info": {"requires_dist": requires}}
                self.wfile.write(json.dumps(body).encode("utf-8"))
                return
        self.send_response(404)
        self.end_headers()

    def log_message(self, format, *args):
        return

def main():
    server = ThreadingHTTPServer(("0.0.0.0", 8080), Handler)
    server.serve_forever()

if __name__ == "__main__":
    main()
`
