// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webapp

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"slices"
	"time"

	"cloudeng.io/file"
	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/net/http/httptracing"
)

// HTTPClientOption is used to configure an HTTP client.
type HTTPClientOption func(o *httpClientOptions)

// WithCustomCAPEMFile configures the HTTP client to use the specified
// custom CA PEM data as a root CA. The file is read using file.FSReadFile
// and hence may be read from an fs.ReadFileFS stored in the context.
func WithCustomCAPEMFile(caPEMFile string) HTTPClientOption {
	return func(o *httpClientOptions) {
		o.caPEMFile = caPEMFile
	}
}

// WithCustomCAPool configures the HTTP client to use the specified
// custom CA pool. It takes precedence over WithCustomCAPEMFile.
func WithCustomCAPool(caPool *x509.CertPool) HTTPClientOption {
	return func(o *httpClientOptions) {
		o.caPool = caPool
	}
}

// WithResponseHeaderTimeout sets the time to wait for an upstream
// service's response headers.
func WithResponseHeaderTimeout(timeout time.Duration) HTTPClientOption {
	return func(o *httpClientOptions) {
		o.responseHeaderTimeout = timeout
	}
}

// WithTracingTransport configures the HTTP client to use a tracing
// round tripper with the specified options.
func WithTracingTransport(to ...httptracing.TraceRoundtripOption) HTTPClientOption {
	return func(o *httpClientOptions) {
		o.tracingOpts = slices.Clone(to)
	}
}

type httpClientOptions struct {
	caPEMFile             string
	caPool                *x509.CertPool
	responseHeaderTimeout time.Duration
	tracingOpts           []httptracing.TraceRoundtripOption
}

// NewHTTPClient creates a new HTTP client configured according to the
// specified options. It is intended to be created once and passed to
// the handlers that need to make outbound requests, see WithUpstream.
func NewHTTPClient(ctx context.Context, opts ...HTTPClientOption) (*http.Client, error) {
	options := &httpClientOptions{}
	for _, opt := range opts {
		opt(options)
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		MinVersion: tls.VersionTLS12,
	}
	transport.ResponseHeaderTimeout = options.responseHeaderTimeout
	if options.caPool != nil {
		ctxlog.Logger(ctx).Warn("webapp.NewHTTPClient: using custom root CA pool")
		transport.TLSClientConfig.RootCAs = options.caPool
	} else if caPEMFile := options.caPEMFile; caPEMFile != "" {
		ctxlog.Logger(ctx).Warn("webapp.NewHTTPClient: using custom root CA pool containing", "ca", caPEMFile)
		rootCAs, err := certPool(ctx, caPEMFile)
		if err != nil {
			return nil, fmt.Errorf("failed to obtain cert pool containing %v: %w", caPEMFile, err)
		}
		transport.TLSClientConfig.RootCAs = rootCAs
	}
	httpClient := &http.Client{Transport: transport}
	if len(options.tracingOpts) > 0 {
		httpClient.Transport = httptracing.NewTracingRoundTripper(transport, options.tracingOpts...)
	}
	return httpClient, nil
}

func certPool(ctx context.Context, pemFile string) (*x509.CertPool, error) {
	rootCAs := x509.NewCertPool()
	certs, err := file.FSReadFile(ctx, pemFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file %q: %w", pemFile, err)
	}
	if ok := rootCAs.AppendCertsFromPEM(certs); !ok {
		return nil, fmt.Errorf("no certs appended from %q", pemFile)
	}
	return rootCAs, nil
}
