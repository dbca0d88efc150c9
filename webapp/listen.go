// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webapp

import (
	"context"
	"errors"
	"net"
)

// ErrBindUnavailable is returned when a server's address or socket
// path is in use or otherwise cannot be bound.
var ErrBindUnavailable = errors.New("address unavailable")

// listenTCP listens on addr with SO_REUSEADDR set so that a server
// may be restarted on the same address immediately after being stopped.
func listenTCP(ctx context.Context, addr string) (net.Listener, error) {
	lc := net.ListenConfig{Control: reuseAddr}
	return lc.Listen(ctx, "tcp", addr)
}

// listenUnix listens on the unix domain socket at path. The socket
// file is removed when the listener is closed.
func listenUnix(ctx context.Context, path string) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "unix", path)
}

// isBindError returns true for errors encountered while binding
// or listening on an address.
func isBindError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "listen"
}
