// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command agvis serves the AGVis web front-end, either in-process or by
// launching an external http server process.
package main

import (
	"context"
	"log/slog"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/logging/ctxlog"
)

var cmdSet *subcmd.CommandSet

// Log at info level by default so that the url being served is displayed.
var loggingDefaults = map[string]any{"log-level": 2}

func init() {
	serveCmd := subcmd.NewCommand("serve",
		subcmd.MustRegisterFlagStruct(&serveFlags{}, loggingDefaults, nil),
		serve, subcmd.ExactlyNumArguments(0))
	serveCmd.Document(`serve the AGVis web application in-process until interrupted.`)

	runCmd := subcmd.NewCommand("run",
		subcmd.MustRegisterFlagStruct(&runFlags{}, loggingDefaults, nil),
		run, subcmd.ExactlyNumArguments(1))
	runCmd.Document(`run the AGVis web application under an external http server such as gunicorn.`, "<module>")

	cmdSet = subcmd.NewCommandSet(serveCmd, runCmd)
	cmdSet.Document(`Serve the AGVis web application. Two modes are supported.

	serve runs an http server within this process that serves the static
	assets embedded in the binary. Files found in the directory specified
	by --assets-dir take precedence over the embedded ones. Requests under
	--upstream-prefix may be proxied to an upstream service. If --socket is
	specified, connections from other local processes are accepted on that
	unix domain socket.

	run launches an external http server, gunicorn by default, to serve the
	specified application module and runs it until interrupted.`)
}

func main() {
	cmdSet.MustDispatch(context.Background())
}

// withLogger returns a context carrying the logger configured by lf, the
// returned function must be called to close any log file.
func withLogger(ctx context.Context, lf cmdutil.LoggingFlags) (context.Context, func(), error) {
	logger, err := lf.LoggingConfig().NewLogger()
	if err != nil {
		return ctx, nil, err
	}
	ctx = ctxlog.WithLogger(ctx, logger.Logger)
	return ctx, func() {
		if err := logger.Close(); err != nil {
			slog.Default().Warn("failed to close log file", "error", err)
		}
	}, nil
}
