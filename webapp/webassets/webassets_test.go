// Copyright 2020 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webassets_test

import (
	"embed"
	"errors"
	"io"
	"io/fs"
	"net/http/httptest"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"cloudeng.io/agvis/webapp/webassets"
)

//go:embed testdata
var content embed.FS

func readFromFS(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()
	buf, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

func readAll(t *testing.T, fsys fs.FS, names ...string) string {
	output := []string{}
	for _, name := range names {
		o, err := readFromFS(fsys, name)
		if err != nil {
			_, _, line, _ := runtime.Caller(1)
			t.Fatalf("line: %v: failed reading: %v: %v", line, name, err)
		}
		output = append(output, strings.TrimSpace(o))
	}
	return strings.Join(output, "\n")
}

func prefixed(prefix string, names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = path.Join(prefix, n)
	}
	return out
}

func TestRelative(t *testing.T) {
	files := []string{"hello.txt", "world.txt", "d0/hello.txt", "d0/world.txt"}
	relativeContents := webassets.RelativeFS("testdata", content)
	contents := readAll(t, relativeContents, files...)
	if got, want := contents, `hello
world
d0/hello
d0/world`; got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	for _, name := range []string{"../testdata/hello.txt", "/hello.txt", "d0/../../x"} {
		_, err := relativeContents.Open(name)
		if err == nil || !errors.Is(err, fs.ErrInvalid) {
			t.Errorf("%v: missing or wrong error: %v", name, err)
		}
	}
}

func createMirror(t *testing.T, tmpDir string) {
	if err := os.MkdirAll(filepath.Join(tmpDir, "testdata", "d0"), 0700); err != nil {
		t.Fatal(err)
	}
	a := filepath.Join(tmpDir, "testdata", "hello.txt")
	if err := os.WriteFile(a, []byte("not hello...."), 0600); err != nil {
		t.Fatal(err)
	}
	b := filepath.Join(tmpDir, "testdata", "d0", "world.txt")
	if err := os.WriteFile(b, []byte("not d0/world...."), 0600); err != nil {
		t.Fatal(err)
	}
}

func TestReloadable(t *testing.T) {
	files := prefixed("testdata", "hello.txt", "world.txt", "d0/hello.txt", "d0/world.txt")
	contents := readAll(t, content, files...)
	if got, want := contents, `hello
world
d0/hello
d0/world`; got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	tmpDir := t.TempDir()
	dynamic := webassets.Reloadable(content, tmpDir)
	contents = readAll(t, dynamic, files...)
	if got, want := contents, `hello
world
d0/hello
d0/world`; got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	createMirror(t, tmpDir)
	contents = readAll(t, dynamic, files...)
	if got, want := contents, `not hello....
world
d0/hello
not d0/world....`; got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	dynamic = webassets.Reloadable(nil, tmpDir)
	contents = readAll(t, dynamic, prefixed("testdata", "hello.txt", "d0/world.txt")...)
	if got, want := contents, `not hello....
not d0/world....`; got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	_, err := dynamic.Open("world.txt")
	if err == nil || !os.IsNotExist(err) {
		t.Errorf("missing or wrong error: %v", err)
	}

	_, err = dynamic.Open("../world.txt")
	if err == nil || !errors.Is(err, fs.ErrInvalid) {
		t.Errorf("missing or wrong error: %v", err)
	}
}

func TestStatic(t *testing.T) {
	static := webassets.Static()
	for _, name := range []string{"js/agvis.js", "css/agvis.css"} {
		if _, err := fs.Stat(static, name); err != nil {
			t.Errorf("%v: %v", name, err)
		}
	}
	if _, err := fs.Stat(static, "index.html"); err == nil {
		t.Errorf("index.html should be a template, not a static asset")
	}

	tmpDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmpDir, "js"), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, "js", "agvis.js"), []byte("// dev build"), 0600); err != nil {
		t.Fatal(err)
	}
	overridden := webassets.Static(webassets.EnableReloading(tmpDir))
	if got, want := readAll(t, overridden, "js/agvis.js"), "// dev build"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got := readAll(t, overridden, "css/agvis.css"); !strings.Contains(got, "#map") {
		t.Errorf("embedded css not served: %v", got)
	}
}

func TestIndex(t *testing.T) {
	idx, err := webassets.NewIndex(webassets.RelativeFS("testdata", content), "index.html")
	if err != nil {
		t.Fatal(err)
	}
	rec := httptest.NewRecorder()
	code, err := webassets.ServeIndex(rec, idx, webassets.IndexData{Title: "AGVis", URL: "http://localhost:8810"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := code, 200; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := strings.TrimSpace(rec.Body.String()), "<h1>AGVis</h1><p>http://localhost:8810</p>"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}
	if got, want := rec.Header().Get("Content-Type"), "text/html; charset=utf-8"; got != want {
		t.Errorf("got %v, want %v", got, want)
	}

	if _, err := webassets.DefaultIndex(); err != nil {
		t.Errorf("default index: %v", err)
	}

	if _, err := webassets.NewIndex(content, "missing.html"); err == nil {
		t.Errorf("expected an error for a missing template")
	}
}
