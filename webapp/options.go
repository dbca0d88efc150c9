// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webapp

import (
	"io/fs"
	"net/http"
	"net/url"
	"time"

	"cloudeng.io/agvis/webapp/webassets"
	"cloudeng.io/net/http/httptracing"
)

const (
	// DefaultHost is the default host to serve on.
	DefaultHost = "localhost"
	// DefaultPort is the default port to serve on.
	DefaultPort = 8810
	// DefaultShutdownGrace is the default time allowed for in-flight
	// requests to complete when a server is stopped.
	DefaultShutdownGrace = 5 * time.Second
	// Title is used as the title of the index page.
	Title = "AGVis"
)

// ServerOption represents an option to NewServer.
type ServerOption func(o *serverOptions)

type serverOptions struct {
	host          string
	port          int
	socketPath    string
	grace         time.Duration
	assets        fs.FS
	index         *webassets.Index
	browserOpener func(string) error
	upstreams     []Upstream
	tracing       []httptracing.TraceHandlerOption
}

// WithHost sets the host to serve on, the default is DefaultHost.
func WithHost(host string) ServerOption {
	return func(o *serverOptions) {
		o.host = host
	}
}

// WithPort sets the port to serve on, the default is DefaultPort.
// A port of 0 requests that an unused port be allocated by the system,
// use Server.URL or Server.Addr to determine the port actually used.
func WithPort(port int) ServerOption {
	return func(o *serverOptions) {
		o.port = port
	}
}

// WithSocketPath requests that the server also listen on the unix
// domain socket at path, see Server.AcceptConnection.
func WithSocketPath(path string) ServerOption {
	return func(o *serverOptions) {
		o.socketPath = path
	}
}

// WithShutdownGrace sets the time allowed for in-flight requests to
// complete when the server is stopped.
func WithShutdownGrace(grace time.Duration) ServerOption {
	return func(o *serverOptions) {
		o.grace = grace
	}
}

// WithAssets sets the filesystem that static assets are served from,
// the default is webassets.Static().
func WithAssets(assets fs.FS) ServerOption {
	return func(o *serverOptions) {
		o.assets = assets
	}
}

// WithIndex sets the template used to render the index page, the
// default is webassets.DefaultIndex().
func WithIndex(index *webassets.Index) ServerOption {
	return func(o *serverOptions) {
		o.index = index
	}
}

// WithBrowserOpener sets the function used to open the server's URL
// in a browser, the default is OpenBrowser.
func WithBrowserOpener(fn func(url string) error) ServerOption {
	return func(o *serverOptions) {
		o.browserOpener = fn
	}
}

// WithUpstream arranges for requests under prefix to be proxied to
// target using the transport of the supplied client. The client is
// typically created by NewHTTPClient.
func WithUpstream(prefix string, target *url.URL, client *http.Client) ServerOption {
	return func(o *serverOptions) {
		o.upstreams = append(o.upstreams, Upstream{
			Prefix: prefix,
			Target: target,
			Client: client,
		})
	}
}

// WithRequestTracing arranges for every request served to be logged
// by an httptracing.TracingHandler configured with the supplied options.
func WithRequestTracing(opts ...httptracing.TraceHandlerOption) ServerOption {
	return func(o *serverOptions) {
		o.tracing = append(o.tracing, opts...)
	}
}
