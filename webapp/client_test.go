// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webapp_test

import (
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"cloudeng.io/agvis/webapp"
	"cloudeng.io/file"
)

func TestNewHTTPClient(t *testing.T) {
	ctx := t.Context()
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "hello tls")
	}))
	defer ts.Close()

	client, err := webapp.NewHTTPClient(ctx)
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.Get(ts.URL)
	if err == nil || !strings.Contains(err.Error(), "certificate") {
		t.Errorf("missing or wrong error: %v", err)
	}

	caFile := filepath.Join(t.TempDir(), "ca.pem")
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: ts.Certificate().Raw})
	if err := os.WriteFile(caFile, caPEM, 0600); err != nil {
		t.Fatal(err)
	}
	client, err = webapp.NewHTTPClient(ctx, webapp.WithCustomCAPEMFile(caFile))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(body), "hello tls"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	pool := ts.Client().Transport.(*http.Transport).TLSClientConfig.RootCAs
	client, err = webapp.NewHTTPClient(ctx, webapp.WithCustomCAPool(pool), webapp.WithCustomCAPEMFile("/does/not/exist"))
	if err != nil {
		t.Fatal(err)
	}
	resp, err = client.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	_, err = webapp.NewHTTPClient(ctx, webapp.WithCustomCAPEMFile(filepath.Join(t.TempDir(), "missing.pem")))
	if err == nil || !strings.Contains(err.Error(), "failed to read CA file") {
		t.Errorf("missing or wrong error: %v", err)
	}

	fsCtx := file.ContextWithFS(ctx, fstest.MapFS{"certs/ca.pem": &fstest.MapFile{Data: caPEM}})
	client, err = webapp.NewHTTPClient(fsCtx, webapp.WithCustomCAPEMFile("certs/ca.pem"))
	if err != nil {
		t.Fatal(err)
	}
	resp, err = client.Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
}
