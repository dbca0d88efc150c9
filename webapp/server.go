// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"cloudeng.io/agvis/webapp/webassets"
	cerrors "cloudeng.io/errors"
	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/net/http/httptracing"
	"cloudeng.io/sync/errgroup"
	"github.com/google/uuid"
)

// ErrNotListening is returned by AcceptConnection when a socket path
// is configured but the server is not running.
var ErrNotListening = errors.New("not listening on a unix domain socket")

// Server manages the lifecycle of an http server for the agvis static
// assets and of an optional unix domain socket listener.
//
// The http.Server and the goroutine serving it are created by Run and
// released by Stop, together. Run and Stop are not safe for concurrent
// use with each other.
type Server struct {
	host          string
	port          int
	socketPath    string
	grace         time.Duration
	browserOpener func(string) error
	handler       http.Handler

	mu     sync.Mutex
	logger *slog.Logger
	url    string
	ln     net.Listener
	srv    *http.Server
	group  *errgroup.T
	unixLn net.Listener
}

// NewServer returns a new, stopped, Server. No resources are acquired
// until Run is called.
func NewServer(opts ...ServerOption) (*Server, error) {
	o := serverOptions{
		host:          DefaultHost,
		port:          DefaultPort,
		grace:         DefaultShutdownGrace,
		browserOpener: OpenBrowser,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.port < 0 || o.port > 65535 {
		return nil, fmt.Errorf("invalid port: %v", o.port)
	}
	if o.assets == nil {
		o.assets = webassets.Static()
	}
	if o.index == nil {
		idx, err := webassets.DefaultIndex()
		if err != nil {
			return nil, err
		}
		o.index = idx
	}
	for _, up := range o.upstreams {
		if up.Target == nil {
			return nil, fmt.Errorf("upstream %q: missing target url", up.Prefix)
		}
		if len(strings.Trim(up.Prefix, "/")) == 0 {
			return nil, fmt.Errorf("upstream %v: prefix must not be empty or /", up.Target)
		}
	}
	var handler http.Handler = Routes(o.assets, o.index, indexData, o.upstreams...)
	if len(o.tracing) > 0 {
		handler = httptracing.NewTracingHandler(handler, o.tracing...)
	}
	return &Server{
		host:          o.host,
		port:          o.port,
		socketPath:    o.socketPath,
		grace:         o.grace,
		browserOpener: o.browserOpener,
		handler:       handler,
		logger:        ctxlog.Logger(context.Background()),
	}, nil
}

func indexData(r *http.Request) webassets.IndexData {
	return webassets.IndexData{Title: Title, URL: "http://" + r.Host}
}

// Handler returns the http.Handler used to serve requests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// SocketPath returns the configured unix domain socket path, if any.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// URL returns the URL the server is reachable at, http://<host>:<port>,
// where port is the port actually bound. It returns an empty string
// if the server is not running.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

// Addr returns the address the server is listening on, or nil if it
// is not running.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Running returns true if the server is running.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.srv != nil
}

func (s *Server) urlFor(addr net.Addr) string {
	host := s.host
	if len(host) == 0 {
		host = DefaultHost
	}
	port := s.port
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = tcp.Port
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// Run starts the server on a background goroutine and returns
// immediately. If openBrowser is true, an attempt is made to open
// the server's URL in a browser; failing to do so is logged but
// is not treated as an error. If a socket path is configured the
// server will also listen on it, see AcceptConnection.
//
// Run returns false, and a nil error, if the server's address or
// socket path cannot be bound, in which case a warning is logged and
// the server remains stopped with no resources held. Other errors are
// returned as is. Calling Run on a running server has no effect.
func (s *Server) Run(ctx context.Context, openBrowser bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger := ctxlog.Logger(ctx)
	if s.srv != nil {
		logger.Info("AGVis is already running", "url", s.url)
		return true, nil
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))
	ln, err := listenTCP(ctx, addr)
	if err != nil {
		return s.bindFailed(logger, addr, err)
	}
	var unixLn net.Listener
	if len(s.socketPath) > 0 {
		unixLn, err = listenUnix(ctx, s.socketPath)
		if err != nil {
			ln.Close()
			return s.bindFailed(logger, s.socketPath, err)
		}
	}

	srv := NewHTTPServerOnly(ctx, ln.Addr().String(), s.handler)
	s.logger = logger
	s.ln, s.unixLn = ln, unixLn
	s.srv, s.group = srv, serveInBackground(ln, srv)
	s.url = s.urlFor(ln.Addr())
	logger.Info("AGVis serves", "url", s.url)

	if openBrowser {
		if err := s.browserOpener(s.url); err != nil {
			logger.Warn("failed to open browser", "url", s.url, "error", err)
		}
	}
	if unixLn != nil {
		logger.Info("AGVis is listening on socket file", "socket", s.socketPath)
	}
	return true, nil
}

func (s *Server) bindFailed(logger *slog.Logger, addr string, err error) (bool, error) {
	if !isBindError(err) {
		return false, err
	}
	logger.Warn(fmt.Sprintf("Start AGVis on %v failed, please try another port.", addr),
		"error", fmt.Errorf("%w: %w", ErrBindUnavailable, err))
	return false, nil
}

// Stop stops the server and waits for its background goroutine to
// exit. The http server is shut down first, allowing in-flight requests
// the configured grace period to complete, and then the unix domain
// socket listener is closed. Calling Stop on a stopped server has no
// effect. The server is always left stopped, any errors encountered
// along the way are returned.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv == nil {
		return nil
	}
	var errs cerrors.M
	errs.Append(shutdown(ctx, s.srv, s.grace))
	if s.unixLn != nil {
		if err := s.unixLn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs.Append(err)
		}
	}
	errs.Append(s.group.Wait())
	s.logger.Info("AGVis stopped, you can close the browser window.", "url", s.url)
	s.srv, s.group = nil, nil
	s.ln, s.unixLn = nil, nil
	s.url = ""
	return errs.Err()
}

// AcceptConnection waits for, and returns, the next connection on the
// server's unix domain socket. It returns nil and a nil error
// immediately if no socket path is configured, and ErrNotListening
// if the server is not running. There is no timeout, a pending call
// returns an error satisfying errors.Is(err, net.ErrClosed) once the
// server is stopped.
func (s *Server) AcceptConnection() (net.Conn, error) {
	if len(s.socketPath) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	ln, logger := s.unixLn, s.logger
	s.mu.Unlock()
	if ln == nil {
		return nil, ErrNotListening
	}
	conn, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	logger.Info("AGVis received a connection",
		"id", uuid.NewString(),
		"socket", s.socketPath,
		"remote", conn.RemoteAddr())
	return conn, nil
}

// Serve runs the server until the supplied context is canceled and
// then stops it. An error wrapping ErrBindUnavailable is returned if
// the server could not be started.
func (s *Server) Serve(ctx context.Context, openBrowser bool) error {
	ok, err := s.Run(ctx, openBrowser)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %v", ErrBindUnavailable, net.JoinHostPort(s.host, strconv.Itoa(s.port)))
	}
	<-ctx.Done()
	ctxlog.Logger(ctx).Info("server being shut down", "url", s.URL(), "grace", s.grace)
	return s.Stop(ctx)
}
