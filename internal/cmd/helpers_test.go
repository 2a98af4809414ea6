package cmd

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/binstall/internal/config"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func testConfig(apiURL, binDir string) *config.Config {
	return &config.Config{
		Paths: config.PathsConfig{BinDir: binDir},
		GitHub: config.GitHubConfig{
			APIURL:    apiURL,
			UserAgent: "binstall/test",
		},
		Platform: config.PlatformConfig{
			OS:   []string{"linux"},
			Arch: []string{"x86_64"},
			Libc: []string{"gnu", "musl"},
		},
		Install: config.InstallConfig{
			MaxDownloadBytes: 1 << 20,
			MaxExtractBytes:  1 << 20,
			ConfirmOverwrite: true,
			TimeoutSeconds:   30,
		},
		Logging: config.LoggingConfig{Level: "info", Color: "never"},
	}
}

func tarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for name, body := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0644, Size: int64(len(body)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

// fakeGitHub serves one repository with one release. Search and release
// responses carry an ETag so the metadata cache can revalidate them.
type fakeGitHub struct {
	*httptest.Server
	assets      []map[string]any
	archive     []byte
	notModified atomic.Int32
	downloads   atomic.Int32
}

func newFakeGitHub(t *testing.T, assetNames ...string) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{
		archive: tarGz(t, map[string]string{"tool-1.0.0/tool": "#!/bin/sh\necho tool\n"}),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		f.serveJSON(w, r, `"search-v1"`, map[string]any{
			"total_count": 1,
			"items": []map[string]any{{
				"full_name":    "owner/tool",
				"html_url":     "https://github.com/owner/tool",
				"releases_url": f.URL + "/repos/owner/tool/releases{/id}",
			}},
		})
	})
	mux.HandleFunc("/repos/owner/tool/releases", func(w http.ResponseWriter, r *http.Request) {
		f.serveJSON(w, r, `"releases-v1"`, []map[string]any{{
			"tag_name": "v1.0.0",
			"assets":   f.assets,
		}})
	})
	mux.HandleFunc("/download/", func(w http.ResponseWriter, _ *http.Request) {
		f.downloads.Add(1)
		w.Write(f.archive)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)

	for i, name := range assetNames {
		contentType := "application/gzip"
		if i%2 == 1 {
			contentType = "application/zip"
		}
		f.assets = append(f.assets, map[string]any{
			"name":                 name,
			"browser_download_url": f.URL + "/download/" + name,
			"content_type":         contentType,
			"size":                 len(f.archive),
		})
	}

	return f
}

func (f *fakeGitHub) serveJSON(w http.ResponseWriter, r *http.Request, etag string, body any) {
	if r.Header.Get("If-None-Match") == etag {
		f.notModified.Add(1)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}
