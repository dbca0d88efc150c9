// Copyright 2020 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webassets

import (
	"io/fs"
	"path"
)

type relative struct {
	prefix string
	fs     fs.FS
}

// Open implements fs.FS. Names are validated before the prefix is
// applied so that they cannot escape it.
func (r *relative) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	return r.fs.Open(path.Join(r.prefix, name))
}

// RelativeFS wraps the supplied FS so that prefix is prepended
// to all of the paths fetched from it. So /index.html can be mapped
// to static/index.html.
func RelativeFS(prefix string, fs fs.FS) fs.FS {
	return &relative{prefix: prefix, fs: fs}
}
