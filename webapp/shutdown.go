// Copyright 2021 cloudeng llc. All rights reserved.
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
	"time"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/sync/errgroup"
)

// NewHTTPServerOnly returns a new *http.Server with its BaseContext set
// to a non-cancelable copy of the supplied context so that requests
// inherit its values, in particular its logger, but not its lifetime.
// ErrorLog is set to log errors via the ctxlog package.
func NewHTTPServerOnly(ctx context.Context, addr string, handler http.Handler) *http.Server {
	base := context.WithoutCancel(ctx)
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Minute,
		ErrorLog:          ctxlog.NewLogLogger(ctx, slog.LevelError),
		BaseContext: func(_ net.Listener) context.Context {
			return base
		},
	}
}

// serveInBackground runs srv.Serve on a goroutine owned by the returned
// errgroup, Wait on which will return once srv has stopped serving.
func serveInBackground(ln net.Listener, srv *http.Server) *errgroup.T {
	g := &errgroup.T{}
	g.Go(func() error {
		err := srv.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server %v, unexpected error %w", srv.Addr, err)
		}
		return nil
	})
	return g
}

// shutdown attempts to shut down srv within the specified grace period,
// closing it forcibly if that fails. In either case the server's
// listeners are closed when shutdown returns.
func shutdown(ctx context.Context, srv *http.Server, grace time.Duration) error {
	// Use a new context tree for the shutdown, since the original
	// may already have been canceled to trigger it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
	defer cancel()
	err := srv.Shutdown(ctx)
	if err == nil {
		return nil
	}
	cerr := srv.Close()
	if cerr != nil && !errors.Is(cerr, net.ErrClosed) {
		return fmt.Errorf("server running on %v, shutdown failed %s: %w, close failed: %v", srv.Addr, grace, err, cerr)
	}
	return fmt.Errorf("server running on %v, shutdown failed %s: %w", srv.Addr, grace, err)
}
