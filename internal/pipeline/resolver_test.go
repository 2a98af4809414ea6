package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/binstall/internal/core"
	"github.com/quantmind-br/binstall/internal/fetch"
	"github.com/quantmind-br/binstall/internal/github"
)

type stubSource struct {
	repo       *core.Repository
	release    *core.Release
	searchErr  error
	releaseErr error
	gotURL     string
}

func (s *stubSource) SearchFirst(context.Context, string) (*core.Repository, error) {
	return s.repo, s.searchErr
}

func (s *stubSource) LatestRelease(_ context.Context, url string) (*core.Release, error) {
	s.gotURL = url
	return s.release, s.releaseErr
}

func TestResolve(t *testing.T) {
	src := &stubSource{
		repo:    &core.Repository{FullName: "owner/tool", ReleasesURL: "https://api/repos/owner/tool/releases"},
		release: &core.Release{TagName: "v1.0.0"},
	}

	r := NewResolver(src, nil)
	var announced *Resolved
	r.OnResolved = func(res *Resolved) { announced = res }

	resolved, err := r.Resolve(context.Background(), "tool")
	require.NoError(t, err)
	assert.Same(t, resolved, announced)
	assert.Equal(t, "owner/tool", resolved.Repository.FullName)
	assert.Equal(t, "v1.0.0", resolved.Release.TagName)
	assert.Equal(t, "https://api/repos/owner/tool/releases", src.gotURL)
}

func TestResolveErrors(t *testing.T) {
	t.Run("no search result", func(t *testing.T) {
		src := &stubSource{searchErr: core.ErrNoSearchResult}

		_, err := NewResolver(src, nil).Resolve(context.Background(), "nothing")
		require.ErrorIs(t, err, core.ErrNoSearchResult)
		assert.Equal(t, core.StageSearch, core.StageOf(err))
	})

	t.Run("no release", func(t *testing.T) {
		src := &stubSource{
			repo:       &core.Repository{FullName: "owner/tool"},
			releaseErr: core.ErrNoRelease,
		}

		_, err := NewResolver(src, nil).Resolve(context.Background(), "tool")
		require.ErrorIs(t, err, core.ErrNoRelease)
		assert.Equal(t, core.StageRelease, core.StageOf(err))
	})
}

func TestInstallThroughGitHubAPI(t *testing.T) {
	archive := tarGz(t, map[string]string{"tool-1.2.0-x86_64-unknown-linux-gnu/tool": "elf"})

	var srvURL string
	var agents []string
	mux := http.NewServeMux()
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		json.NewEncoder(w).Encode(map[string]any{
			"total_count": 1,
			"items": []map[string]any{{
				"full_name":    "owner/tool",
				"releases_url": srvURL + "/repos/owner/tool/releases{/id}",
			}},
		})
	})
	mux.HandleFunc("/repos/owner/tool/releases", func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		json.NewEncoder(w).Encode([]map[string]any{{
			"tag_name": "v1.2.0",
			"assets": []map[string]any{
				{"name": "tool-1.2.0-aarch64-apple-darwin.zip", "browser_download_url": srvURL + "/dl/darwin", "content_type": "application/zip"},
				{"name": "tool-1.2.0-x86_64-unknown-linux-gnu.tar.gz", "browser_download_url": srvURL + "/dl/linux", "content_type": "application/gzip"},
			},
		}})
	})
	mux.HandleFunc("/dl/linux", func(w http.ResponseWriter, r *http.Request) {
		agents = append(agents, r.Header.Get("User-Agent"))
		w.Write(archive)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	srvURL = srv.URL

	logger := zerolog.Nop()
	client, err := github.NewClient(github.Options{APIURL: srv.URL, UserAgent: "binstall/test"}, &logger)
	require.NoError(t, err)
	downloader := fetch.NewDownloader(fetch.Options{UserAgent: "binstall/test"}, &logger)

	fs := afero.NewMemMapFs()
	resolved, result, err := NewResolver(client, &logger).Install(
		context.Background(),
		newTestPipeline(fs),
		downloader,
		core.InstallOptions{Query: "tool", DestDir: binDir},
	)
	require.NoError(t, err)

	assert.Equal(t, "v1.2.0", resolved.Release.TagName)
	assert.Equal(t, "tool-1.2.0-x86_64-unknown-linux-gnu.tar.gz", result.Asset.Name)

	data, err := afero.ReadFile(fs, result.Path)
	require.NoError(t, err)
	assert.Equal(t, "elf", string(data))

	require.Len(t, agents, 3)
	for _, ua := range agents {
		assert.Equal(t, "binstall/test", ua)
	}
}

func TestInstallStopsAtResolveFailure(t *testing.T) {
	searchErr := errors.New("rate limited")
	src := &stubSource{searchErr: searchErr}

	fetcher := &mapFetcher{}
	_, _, err := NewResolver(src, nil).Install(context.Background(), newTestPipeline(afero.NewMemMapFs()), fetcher, core.InstallOptions{Query: "tool"})
	require.ErrorIs(t, err, searchErr)
	assert.Equal(t, core.StageSearch, core.StageOf(err))
	assert.Empty(t, fetcher.requested)
}
