// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"compress/gzip"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
)

var payload = strings.Repeat("mode", 1024)

func newTestServer(t *testing.T, allowedHosts []string) (Server, string, chan error) {
	require := require.New(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(err)
	s := New("/ext", logging.NoLog{}, listener, NewDefaultHTTPConfig(), []string{"*"}, allowedHosts, time.Second)
	require.NoError(s.AddRoute(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, payload)
	}), "bc/modevm", "/rpc"))

	done := make(chan error, 1)
	go func() { done <- s.Dispatch() }()
	return s, "http://" + listener.Addr().String(), done
}

func TestServerRoutes(t *testing.T) {
	require := require.New(t)

	s, uri, done := newTestServer(t, []string{"localhost"})

	resp, err := http.Get(uri + "/ext/bc/modevm/rpc")
	require.NoError(err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusOK, resp.StatusCode)
	require.Equal(payload, string(body))

	resp, err = http.Get(uri + "/ext/bc/other")
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(http.StatusNotFound, resp.StatusCode)

	err = s.AddRoute(http.NotFoundHandler(), "bc/modevm", "/rpc")
	require.ErrorIs(err, ErrDuplicateRoute)

	require.NoError(s.Shutdown())
	require.NoError(<-done)
}

func TestServerCompresses(t *testing.T) {
	require := require.New(t)

	s, uri, done := newTestServer(t, []string{"*"})

	req, err := http.NewRequest(http.MethodGet, uri+"/ext/bc/modevm/rpc", nil)
	require.NoError(err)
	req.Header.Set("Accept-Encoding", "gzip")
	resp, err := http.DefaultTransport.RoundTrip(req)
	require.NoError(err)
	require.Equal("gzip", resp.Header.Get("Content-Encoding"))

	r, err := gzip.NewReader(resp.Body)
	require.NoError(err)
	body, err := io.ReadAll(r)
	require.NoError(err)
	require.NoError(resp.Body.Close())
	require.Equal(payload, string(body))

	require.NoError(s.Shutdown())
	require.NoError(<-done)
}

func TestServerFiltersHosts(t *testing.T) {
	s, uri, done := newTestServer(t, []string{"LocalHost"})

	tests := []struct {
		host string
		want int
	}{
		{host: "localhost", want: http.StatusOK},
		{host: "localhost:9650", want: http.StatusOK},
		{host: "127.0.0.1:9650", want: http.StatusOK},
		{host: "example.com", want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			require := require.New(t)

			req, err := http.NewRequest(http.MethodGet, uri+"/ext/bc/modevm/rpc", nil)
			require.NoError(err)
			req.Host = tt.host
			resp, err := http.DefaultClient.Do(req)
			require.NoError(err)
			require.NoError(resp.Body.Close())
			require.Equal(tt.want, resp.StatusCode)
		})
	}

	require.NoError(t, s.Shutdown())
	require.NoError(t, <-done)
}
