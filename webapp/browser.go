// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package webapp

import (
	"io"

	"github.com/pkg/browser"
)

func init() {
	// Keep the output of the platform's open command off the
	// server's own stdout/stderr.
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
}

// OpenBrowser asks the host environment to open url in its default
// browser.
func OpenBrowser(url string) error {
	return browser.OpenURL(url)
}
