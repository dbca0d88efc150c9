// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webapp

import (
	"io/fs"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"cloudeng.io/agvis/webapp/webassets"
	"cloudeng.io/logging/ctxlog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Upstream represents a service that requests under Prefix are proxied
// to. Client, if non-nil, supplies the transport used for the proxied
// requests.
type Upstream struct {
	Prefix string
	Target *url.URL
	Client *http.Client
}

// Routes returns a router that renders index for / and serves all
// other GET and POST requests from assets. Requests whose paths would
// escape assets are rejected by http.FS. Each upstream is mounted
// under its prefix.
func Routes(assets fs.FS, index *webassets.Index, data func(*http.Request) webassets.IndexData, upstreams ...Upstream) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	for _, up := range upstreams {
		routeToProxy(router, up)
	}
	router.Get("/", serveIndexHTML(index, data))
	static := http.FileServer(http.FS(assets))
	router.Get("/*", static.ServeHTTP)
	router.Post("/*", static.ServeHTTP)
	return router
}

func serveIndexHTML(index *webassets.Index, data func(*http.Request) webassets.IndexData) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := webassets.ServeIndex(w, index, data(r))
		if err == nil {
			return
		}
		ctxlog.Logger(r.Context()).Warn("index.html", "code", code, "error", err)
		if code != http.StatusOK {
			http.Error(w, http.StatusText(code), code)
		}
	}
}

func routeToProxy(router chi.Router, up Upstream) {
	proxy := httputil.NewSingleHostReverseProxy(up.Target)
	if up.Client != nil && up.Client.Transport != nil {
		proxy.Transport = up.Client.Transport
	}
	prefix := "/" + strings.Trim(up.Prefix, "/")
	router.Handle(prefix+"/*", http.StripPrefix(prefix, proxy))
}
