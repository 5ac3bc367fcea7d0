package http_pod_snapshots_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/horockey/kubeping/internal/gateway/pod_snapshots/http_pod_snapshots"
	"github.com/horockey/kubeping/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const podList = `{"kind": "PodList", "items": [
	{"metadata": {"name": "peer-1", "creationTimestamp": "2024-01-01T00:00:00Z"}, "status": {"phase": "Running", "podIP": "10.0.0.2"}}
]}`

func endpoint(srv *httptest.Server, path string) model.Endpoint {
	host := strings.TrimPrefix(srv.URL, "http://")
	return model.Endpoint{
		URL:  srv.URL + path,
		Host: host,
		Headers: map[string]string{
			"Authorization": "Bearer secret-token",
		},
		Auth: model.AuthToken,
	}
}

func Test_Fetch_Success(t *testing.T) {
	reqs := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs <- r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(podList))
	}))
	defer srv.Close()

	gw := http_pod_snapshots.New(
		endpoint(srv, "/api/v1/namespaces/ns/pods?labelSelector=app%3Dweb"),
		time.Second,
		time.Second,
		zerolog.Nop(),
	)

	snap, err := gw.Fetch(context.Background())
	require.NoError(t, err)

	req := <-reqs
	assert.Equal(t, "Bearer secret-token", req.Header.Get("Authorization"))
	assert.Equal(t, "/api/v1/namespaces/ns/pods", req.URL.Path)
	assert.Equal(t, "app=web", req.URL.Query().Get("labelSelector"))
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "peer-1", snap.Entries[0].Instance.Name)
	assert.NotEmpty(t, gw.Metrics())
}

func Test_Fetch_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"kind": "Status", "message": "pods is forbidden"}`))
	}))
	defer srv.Close()

	gw := http_pod_snapshots.New(endpoint(srv, "/pods"), time.Second, time.Second, zerolog.Nop())

	snap, err := gw.Fetch(context.Background())
	require.Error(t, err)
	assert.Empty(t, snap.Entries)

	fetchErr := model.FetchError{}
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, strings.TrimPrefix(srv.URL, "http://"), fetchErr.Host)
	assert.Contains(t, err.Error(), "403")
	assert.NotContains(t, err.Error(), "secret-token")
}

func Test_Fetch_MalformedDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"kind": "PodList"}`))
	}))
	defer srv.Close()

	gw := http_pod_snapshots.New(endpoint(srv, "/pods"), time.Second, time.Second, zerolog.Nop())

	_, err := gw.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.As(err, &model.FetchError{}))
}

func Test_Fetch_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	gw := http_pod_snapshots.New(
		model.Endpoint{URL: "http://" + addr + "/pods", Host: addr},
		time.Second,
		time.Second,
		zerolog.Nop(),
	)

	_, err = gw.Fetch(context.Background())
	require.Error(t, err)

	fetchErr := model.FetchError{}
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, addr, fetchErr.Host)
}

func Test_Fetch_ReadTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	gw := http_pod_snapshots.New(endpoint(srv, "/pods"), 100*time.Millisecond, 100*time.Millisecond, zerolog.Nop())

	start := time.Now()
	_, err := gw.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.As(err, &model.FetchError{}))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func Test_Fetch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(podList))
	}))
	defer srv.Close()

	gw := http_pod_snapshots.New(endpoint(srv, "/pods"), time.Second, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Fetch(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}
