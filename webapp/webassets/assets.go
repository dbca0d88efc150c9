// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package webassets provides the static assets served by the agvis
// web front-end. The assets are embedded in the binary so that they
// are always located relative to the installed program rather than
// the current working directory. For development, the embedded copies
// may be overridden by files found in a local directory.
package webassets

import (
	"embed"
	"io/fs"
)

//go:embed static templates
var content embed.FS

// AssetsFlags represents the command line flags used to control
// where assets are served from.
type AssetsFlags struct {
	AssetsDir string `subcmd:"assets-dir,,'if set, files in this directory take precedence over the embedded static assets, this is intended for development use.'"`
}

// AssetsOption represents an option to NewAssets.
type AssetsOption func(o *assetsOptions)

type assetsOptions struct {
	dir string
}

// EnableReloading arranges for files found under dir to be served
// in preference to those in the embedded filesystem when they differ.
// An empty dir disables reloading.
func EnableReloading(dir string) AssetsOption {
	return func(o *assetsOptions) {
		o.dir = dir
	}
}

// NewAssets returns an fs.FS rooted at prefix within fsys, optionally
// overlaid by a local directory as per EnableReloading.
func NewAssets(prefix string, fsys fs.FS, opts ...AssetsOption) fs.FS {
	var o assetsOptions
	for _, fn := range opts {
		fn(&o)
	}
	rel := RelativeFS(prefix, fsys)
	if len(o.dir) == 0 {
		return rel
	}
	return Reloadable(rel, o.dir)
}

// Static returns the embedded static assets root, optionally overlaid
// by a local directory.
func Static(opts ...AssetsOption) fs.FS {
	return NewAssets("static", content, opts...)
}

// Templates returns the embedded page templates.
func Templates() fs.FS {
	return RelativeFS("templates", content)
}
