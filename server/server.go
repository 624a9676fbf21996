// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"path"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

var _ Server = (*server)(nil)

// Server exposes the node's HTTP handlers under a common base path.
type Server interface {
	// AddRoute serves [handler] at baseURL/[base][endpoint].
	AddRoute(handler http.Handler, base, endpoint string) error
	// Dispatch serves until [Shutdown] is called, after which it returns
	// nil.
	Dispatch() error
	Shutdown() error
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
}

func NewDefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

type server struct {
	log      logging.Logger
	baseURL  string
	router   *router
	srv      *http.Server
	listener net.Listener

	shutdownTimeout time.Duration
}

// New wraps the router with host filtering, CORS and gzip, in that order
// from the inside out.
func New(
	baseURL string,
	log logging.Logger,
	listener net.Listener,
	httpConfig HTTPConfig,
	allowedOrigins []string,
	allowedHosts []string,
	shutdownTimeout time.Duration,
) Server {
	r := newRouter()
	var handler http.Handler = filterInvalidHosts(r, allowedHosts)
	handler = cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	}).Handler(handler)
	handler = gziphandler.GzipHandler(handler)

	log.Info("API created",
		zap.String("address", listener.Addr().String()),
		zap.Strings("allowedOrigins", allowedOrigins),
		zap.Strings("allowedHosts", allowedHosts),
	)
	return &server{
		log:     log,
		baseURL: baseURL,
		router:  r,
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       httpConfig.ReadTimeout,
			ReadHeaderTimeout: httpConfig.ReadHeaderTimeout,
			WriteTimeout:      httpConfig.WriteTimeout,
			IdleTimeout:       httpConfig.IdleTimeout,
		},
		listener:        listener,
		shutdownTimeout: shutdownTimeout,
	}
}

func (s *server) AddRoute(handler http.Handler, base, endpoint string) error {
	prefix := path.Join(s.baseURL, base)
	s.log.Info("adding route",
		zap.String("url", prefix),
		zap.String("endpoint", endpoint),
	)
	return s.router.AddRouter(prefix, endpoint, handler)
}

func (s *server) Dispatch() error {
	if err := s.srv.Serve(s.listener); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	// Connections that outlive the timeout are dropped.
	_ = s.srv.Close()
	return err
}
