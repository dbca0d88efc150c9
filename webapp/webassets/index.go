// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webassets

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// IndexName is the name of the index page template.
const IndexName = "index.html"

// IndexData is made available to the index page template.
type IndexData struct {
	Title string
	URL   string
}

// Index renders the application's landing page.
type Index struct {
	tpl *template.Template
}

// NewIndex parses the named template from fsys.
func NewIndex(fsys fs.FS, name string) (*Index, error) {
	tpl, err := template.ParseFS(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template %q: %w", name, err)
	}
	return &Index{tpl: tpl}, nil
}

// DefaultIndex returns the Index for the embedded index.html template.
func DefaultIndex() (*Index, error) {
	return NewIndex(Templates(), IndexName)
}

// ServeIndex renders the index to the supplied writer, returning an
// appropriate http status code. Nothing is written if rendering fails.
func ServeIndex(w http.ResponseWriter, idx *Index, data IndexData) (int, error) {
	var buf bytes.Buffer
	if err := idx.tpl.Execute(&buf, data); err != nil {
		return http.StatusInternalServerError, err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		return http.StatusOK, err
	}
	return http.StatusOK, nil
}
