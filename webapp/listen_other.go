// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

//go:build !unix

package webapp

import "syscall"

// SO_REUSEADDR on windows allows a second listener to steal an
// address that is in active use and hence is not set.
func reuseAddr(_, _ string, _ syscall.RawConn) error {
	return nil
}
