// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"

	"cloudeng.io/agvis/webapp"
	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/cmdyaml"
	"cloudeng.io/logging/ctxlog"
)

type serveFlags struct {
	webapp.ServerFlags
	cmdutil.LoggingFlags
	Config string `subcmd:"config,,'yaml file containing the server configuration, its values take precedence over those specified on the command line'"`
}

// serverConfig returns the server configuration specified by the
// command line flags, overridden by the config file if one is specified.
func (sf *serveFlags) serverConfig(ctx context.Context) (webapp.ServerConfig, error) {
	cfg := sf.ServerConfig()
	if len(sf.Config) == 0 {
		return cfg, nil
	}
	if err := cmdyaml.ParseConfigFileStrict(ctx, sf.Config, &cfg); err != nil {
		return webapp.ServerConfig{}, err
	}
	return cfg, nil
}

func serve(ctx context.Context, values any, _ []string) error {
	ctx, done := signal.NotifyContext(ctx, os.Interrupt)
	defer done()
	fv := values.(*serveFlags)

	ctx, closeLog, err := withLogger(ctx, fv.LoggingFlags)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := fv.serverConfig(ctx)
	if err != nil {
		return err
	}
	opts, err := cfg.ServerOptions(ctx)
	if err != nil {
		return err
	}
	srv, err := webapp.NewServer(opts...)
	if err != nil {
		return err
	}
	ok, err := srv.Run(ctx, cfg.OpenBrowser)
	if err != nil {
		return err
	}
	if !ok {
		return webapp.ErrBindUnavailable
	}
	if len(srv.SocketPath()) > 0 {
		go acceptConnections(ctx, srv)
	}
	<-ctx.Done()
	ctxlog.Info(ctx, "server being shut down", "url", srv.URL())
	return srv.Stop(ctx)
}

// acceptConnections accepts, and immediately closes, connections on the
// server's unix domain socket until the server is stopped.
func acceptConnections(ctx context.Context, srv *webapp.Server) {
	for {
		conn, err := srv.AcceptConnection()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) && !errors.Is(err, webapp.ErrNotListening) {
				ctxlog.Warn(ctx, "failed to accept connection", "socket", srv.SocketPath(), "error", err)
			}
			return
		}
		if conn == nil {
			return
		}
		conn.Close()
	}
}
