// Copyright 2020 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webassets

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type reloadable struct {
	sync.Mutex
	embedded fs.FS
	dynroot  string
	stat     map[string]fs.FileInfo
}

func (r *reloadable) fullpath(p string) string {
	return filepath.Join(r.dynroot, filepath.FromSlash(p))
}

func differs(a, b fs.FileInfo) bool {
	return a.ModTime() != b.ModTime() || a.Size() != b.Size()
}

func (r *reloadable) statEmbedded(name string) (fs.FileInfo, error) {
	r.Lock()
	defer r.Unlock()
	if fi, ok := r.stat[name]; ok {
		return fi, nil
	}
	fi, err := fs.Stat(r.embedded, name)
	if err != nil {
		return nil, err
	}
	r.stat[name] = fi
	return fi, nil
}

// reload returns true if the on-disk copy of name should be used.
func (r *reloadable) reload(name string) (bool, error) {
	if r.embedded == nil {
		return true, nil
	}
	fp := r.fullpath(name)
	ondisk, err := os.Stat(fp)
	if err == nil {
		inram, err := r.statEmbedded(name)
		if err != nil {
			if os.IsNotExist(err) {
				return true, nil
			}
			return false, fmt.Errorf("failed to stat embedded file: %v: %v", name, err)
		}
		return differs(ondisk, inram), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat on disk file: %v: %v", fp, err)
}

// Open implements fs.FS.
func (r *reloadable) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{
			Op:   "open",
			Path: name,
			Err:  fs.ErrInvalid,
		}
	}
	useDisk, err := r.reload(name)
	if err != nil {
		return nil, &fs.PathError{
			Op:   "open",
			Path: name,
			Err:  err,
		}
	}
	if !useDisk {
		return r.embedded.Open(name)
	}
	return os.Open(r.fullpath(name))
}

// Reloadable returns an fs.FS that serves files from the dynamic
// directory in preference to the embedded one whenever the on-disk
// copy differs in size or modification time, or has no embedded
// counterpart. If embedded is nil all files are served from disk.
func Reloadable(embedded fs.FS, dynamic string) fs.FS {
	return &reloadable{
		embedded: embedded,
		dynroot:  dynamic,
		stat:     make(map[string]fs.FileInfo),
	}
}
