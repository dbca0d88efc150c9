// Copyright 2020 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package webapp provides the in-process web server used by agvis.
// A Server serves the static assets provided by the webassets package
// from a background goroutine and may also listen on a unix domain
// socket for out-of-band connections from other local processes.
//
// Servers are created stopped and may be started and stopped repeatedly:
//
//	srv, err := webapp.NewServer(webapp.WithPort(8810))
//	...
//	ok, err := srv.Run(ctx, false)
//	...
//	defer srv.Stop(ctx)
//
// Run and Stop must be called from a single controlling goroutine,
// AcceptConnection may be called concurrently with either.
//
// The launcher sub-package provides the alternative of running the
// application under a separate, production grade, server process.
package webapp
