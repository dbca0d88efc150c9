// Copyright 2020 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webapp

import (
	"context"
	"fmt"
	"net/url"

	"cloudeng.io/agvis/webapp/webassets"
	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/net/http/httptracing"
)

// UpstreamFlags defines the flags for proxying requests to an
// upstream service.
type UpstreamFlags struct {
	Upstream       string `subcmd:"upstream,,'url of an upstream service that requests under --upstream-prefix are proxied to'"`
	UpstreamPrefix string `subcmd:"upstream-prefix,/api,url path prefix that is proxied to the upstream service"`
	UpstreamCA     string `subcmd:"upstream-ca,,pem file containing a CA to be trusted when connecting to the upstream service"`
}

// ServerFlags defines commonly used flags for running an agvis server.
type ServerFlags struct {
	Host        string `subcmd:"host,localhost,host to serve on"`
	Port        int    `subcmd:"port,8810,port to serve on"`
	Socket      string `subcmd:"socket,,'unix domain socket to listen on for connections from other local processes'"`
	OpenBrowser bool   `subcmd:"open-browser,false,open the server's url in the default browser"`
	Trace       bool   `subcmd:"trace,false,'log every request served and every request proxied to the upstream service'"`
	webassets.AssetsFlags
	UpstreamFlags
}

// UpstreamConfig is the configuration of an upstream service.
type UpstreamConfig struct {
	URL       string `yaml:"url" cmd:"url of the upstream service"`
	Prefix    string `yaml:"prefix" cmd:"url path prefix that is proxied to the upstream service"`
	CAPEMFile string `yaml:"ca_pem" cmd:"pem file containing a CA to be trusted when connecting to the upstream service"`
}

// ServerConfig is the configuration of an agvis server, it may be
// created from ServerFlags or read from a YAML file.
type ServerConfig struct {
	Host        string         `yaml:"host" cmd:"host to serve on"`
	Port        int            `yaml:"port" cmd:"port to serve on"`
	Socket      string         `yaml:"socket" cmd:"unix domain socket to listen on"`
	OpenBrowser bool           `yaml:"open_browser" cmd:"open the server's url in the default browser"`
	Trace       bool           `yaml:"trace" cmd:"log every request served and every request proxied to the upstream service"`
	AssetsDir   string         `yaml:"assets_dir" cmd:"directory whose files take precedence over the embedded static assets"`
	Upstream    UpstreamConfig `yaml:"upstream" cmd:"upstream service to proxy requests to"`
}

// ServerConfig returns the configuration represented by the flags.
func (sf ServerFlags) ServerConfig() ServerConfig {
	return ServerConfig{
		Host:        sf.Host,
		Port:        sf.Port,
		Socket:      sf.Socket,
		OpenBrowser: sf.OpenBrowser,
		Trace:       sf.Trace,
		AssetsDir:   sf.AssetsDir,
		Upstream: UpstreamConfig{
			URL:       sf.Upstream,
			Prefix:    sf.UpstreamPrefix,
			CAPEMFile: sf.UpstreamCA,
		},
	}
}

// ServerOptions returns the options for NewServer represented by
// the configuration. Note that OpenBrowser is an argument to
// Server.Run rather than an option.
func (c ServerConfig) ServerOptions(ctx context.Context) ([]ServerOption, error) {
	opts := []ServerOption{
		WithHost(c.Host),
		WithPort(c.Port),
		WithSocketPath(c.Socket),
		WithAssets(webassets.Static(webassets.EnableReloading(c.AssetsDir))),
	}
	logger := ctxlog.Logger(ctx)
	if c.Trace {
		opts = append(opts, WithRequestTracing(
			httptracing.WithHandlerLogger(logger.With("server", "agvis"))))
	}
	if len(c.Upstream.URL) == 0 {
		return opts, nil
	}
	target, err := url.Parse(c.Upstream.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url %q: %w", c.Upstream.URL, err)
	}
	if len(target.Scheme) == 0 || len(target.Host) == 0 {
		return nil, fmt.Errorf("invalid upstream url %q: missing scheme or host", c.Upstream.URL)
	}
	var clientOpts []HTTPClientOption
	if len(c.Upstream.CAPEMFile) > 0 {
		clientOpts = append(clientOpts, WithCustomCAPEMFile(c.Upstream.CAPEMFile))
	}
	if c.Trace {
		clientOpts = append(clientOpts, WithTracingTransport(
			httptracing.WithTracingLogger(logger.With("upstream", target.String()))))
	}
	client, err := NewHTTPClient(ctx, clientOpts...)
	if err != nil {
		return nil, err
	}
	prefix := c.Upstream.Prefix
	if len(prefix) == 0 {
		prefix = "/api"
	}
	return append(opts, WithUpstream(prefix, target, client)), nil
}
