package integration

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ocean-manifest/internal/adapters"
	"ocean-manifest/internal/app"
	"ocean-manifest/tests/testutil"
)

type requestInfo struct {
	Method string
	Path   string
	User   string
	Pass   string
}

func TestIndexFetchIntegration(t *testing.T) {
	t.Run("walks the simple index with credentials", func(t *testing.T) {
		ctx := t.Context()
		var requests []requestInfo
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, _ := r.BasicAuth()
			requests = append(requests, requestInfo{
				Method: r.Method,
				Path:   r.URL.Path,
				User:   user,
				Pass:   pass,
			})
			switch r.URL.Path {
			case "/simple/dimod/":
				w.Write([]byte(`<a href="/files/dimod-0.12.3.tar.gz">dimod-0.12.3.tar.gz</a>`))
			case "/pypi/dimod/0.12.3/json":
				w.Write([]byte(`{"info":{"requires_dist":["numpy>=1.21.6"]}}`))
			default:
				http.NotFound(w, r)
			}
		}))
		defer server.Close()

		output := filepath.Join(t.TempDir(), "index.yaml")
		service := app.NewService()
		result, err := service.BuildIndex(ctx, app.IndexRequest{
			Output:        output,
			IndexURL:      server.URL,
			APIKey:        "secret",
			Packages:      []string{"dimod"},
			FetchRequires: true,
			HTTPRetries:   1,
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.PackageCount)

		expected := []requestInfo{
			{Method: "GET", Path: "/simple/dimod/", User: "api", Pass: "secret"},
			{Method: "GET", Path: "/pypi/dimod/0.12.3/json", User: "api", Pass: "secret"},
		}
		if diff := cmp.Diff(expected, requests); diff != "" {
			t.Fatalf("unexpected requests (-want +got):\n%s", diff)
		}

		releases, err := adapters.NewIndexFileAdapter(output).Releases()
		require.NoError(t, err)
		require.Len(t, releases["dimod"], 1)
		require.Equal(t, []string{"numpy>=1.21.6"}, releases["dimod"][0].Requires)
	})

	t.Run("tolerates missing release metadata", func(t *testing.T) {
		ctx := t.Context()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/simple/dimod/" {
				w.Write([]byte(`<a href="/files/dimod-0.12.3.tar.gz">dimod-0.12.3.tar.gz</a>`))
				return
			}
			http.NotFound(w, r)
		}))
		defer server.Close()

		output := filepath.Join(t.TempDir(), "index.yaml")
		_, err := app.NewService().BuildIndex(ctx, app.IndexRequest{
			Output:        output,
			IndexURL:      server.URL,
			Packages:      []string{"dimod"},
			FetchRequires: true,
			HTTPRetries:   1,
		})
		require.NoError(t, err)

		releases, err := adapters.NewIndexFileAdapter(output).Releases()
		require.NoError(t, err)
		require.Len(t, releases["dimod"], 1)
		require.Empty(t, releases["dimod"][0].Requires)
	})
}

// TestIndexFetchThenResolve builds an index from a local simple index
// and immediately resolves the sample pipeline against it.
func TestIndexFetchThenResolve(t *testing.T) {
	ctx := t.Context()
	pages := map[string]string{
		"/simple/dimod/":               `<a href="/f/dimod-0.10.13.tar.gz">s</a><a href="/f/dimod-0.12.3.tar.gz">s</a>`,
		"/simple/dwave-neal/":          `<a href="/f/dwave_neal-0.6.0-py3-none-any.whl">w</a>`,
		"/simple/dwave-preprocessing/": `<a href="/f/dwave_preprocessing-0.5.4.tar.gz">s</a>`,
		"/simple/dwave-system/":        `<a href="/f/dwave_system-1.18.0.tar.gz">s</a>`,
		"/simple/minorminer/":          `<a href="/f/minorminer-0.2.12.tar.gz">s</a>`,
		"/simple/numpy/":               `<a href="/f/numpy-1.21.6.zip">s</a><a href="/f/numpy-1.24.4.tar.gz">s</a>`,
		"/simple/scipy/":               `<a href="/f/scipy-1.11.4.tar.gz">s</a>`,
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if page, ok := pages[r.URL.Path]; ok {
			w.Write([]byte(page))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.yaml")
	service := app.NewService()

	_, err := service.BuildIndex(ctx, app.IndexRequest{
		Output:   indexPath,
		IndexURL: server.URL,
		Packages: []string{
			"dimod", "dwave-neal", "dwave-preprocessing", "dwave-system",
			"minorminer", "numpy", "scipy",
		},
		HTTPRetries: 1,
	})
	require.NoError(t, err)

	root := testutil.RepoRoot(t)
	outDir := filepath.Join(dir, "out")
	result, err := service.Resolve(ctx, app.ResolveRequest{
		SpecPath:  filepath.Join(root, "fixtures/pipeline-sample.yaml"),
		Index:     indexPath,
		OutputDir: outDir,
	})
	require.NoError(t, err)
	require.Equal(t, 13, result.LockCount)
}
