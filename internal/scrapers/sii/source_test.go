package sii

import (
	"context"
	"indicadores-backend/internal/telemetry"
	"indicadores-backend/lib/restyutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestServer(t testing.TB) *httptest.Server {
	t.Helper()
	pages := map[string]string{
		"/valores_y_fechas/uf/uf2024.htm":   "testdata/uf2024.htm",
		"/valores_y_fechas/utm/utm2024.htm": "testdata/utm2024.htm",
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		contents, err := os.ReadFile(path)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "text/html; charset=utf-8")
		w.Write(contents)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSourceCollect(t *testing.T) {
	server := newTestServer(t)
	tel := telemetry.NewRecorder(t)

	client, err := NewClient(restyutil.Options{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
	}, nil, tel)
	require.NoError(t, err)

	source := NewSource(client, 2, tel)
	require.Equal(t, "SII", source.Name())

	records, err := source.Collect(context.Background(), today)
	// 2023 is not served, it fails on its own
	require.Error(t, err)
	require.Len(t, records, 18+15)
	require.NotEmpty(t, tel.Reports("broken", "source.collect"))

	for i, r := range records {
		if i < 18 {
			require.Equal(t, CodeUF, r.Code)
			continue
		}
		require.NotEqual(t, CodeUF, r.Code)
	}
}

func TestSourceCollectSingleYear(t *testing.T) {
	server := newTestServer(t)
	tel := telemetry.NewRecorder(t)

	client, err := NewClient(restyutil.Options{BaseURL: server.URL}, nil, tel)
	require.NoError(t, err)

	records, err := NewSource(client, 1, tel).Collect(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, records, 33)
}

func TestSourceCollectCancelled(t *testing.T) {
	server := newTestServer(t)
	tel := telemetry.NewRecorder(t)

	client, err := NewClient(restyutil.Options{BaseURL: server.URL}, nil, tel)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records, err := NewSource(client, 2, tel).Collect(ctx, today)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, records)
}

func TestSourceCollectWithDumpOutput(t *testing.T) {
	server := newTestServer(t)
	tel := telemetry.NewRecorder(t)

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := restyutil.NewFilesystemOutput(dir)
	require.NoError(t, err)

	client, err := NewClient(restyutil.Options{BaseURL: server.URL}, output, tel)
	require.NoError(t, err)

	records, err := NewSource(client, 1, tel).Collect(context.Background(), today)
	require.NoError(t, err)
	require.Len(t, records, 33)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	dumped, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(dumped), "---- REQUEST ----"))
	require.Contains(t, string(dumped), "GET ")
}
