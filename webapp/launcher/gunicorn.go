// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package launcher

import (
	"fmt"
	"net/url"
	"regexp"
)

var (
	gunicornListeningRE = regexp.MustCompile(`Listening at: (\S+)`)
)

// URLExtractor parses a line of output from the server process looking
// for the URL that it is listening on. If the line does not contain
// a URL then a nil URL and a nil error are returned. If the line should
// contain a URL but it cannot be extracted then a nil URL and a non-nil
// error are returned.
type URLExtractor func(line []byte) (*url.URL, error)

// NewGunicornURLExtractor returns a URLExtractor for lines that match
// the supplied regexp, whose first sub-match must be the URL. If re is
// nil a default that matches gunicorn's "Listening at:" line is used,
// for example:
//
//	[2025-01-20 10:00:00 +0000] [1234] [INFO] Listening at: http://127.0.0.1:8810 (1234)
func NewGunicornURLExtractor(re *regexp.Regexp) URLExtractor {
	if re == nil {
		re = gunicornListeningRE
	}
	return func(line []byte) (*url.URL, error) {
		if !re.Match(line) {
			return nil, nil
		}
		m := re.FindSubmatch(line)
		if len(m) < 2 || len(m[1]) == 0 {
			return nil, fmt.Errorf("malformed line: %s", line)
		}
		u, err := url.Parse(string(m[1]))
		if err != nil {
			return nil, err
		}
		if len(u.Scheme) == 0 || len(u.Host) == 0 {
			return nil, fmt.Errorf("malformed url in line: %s", line)
		}
		return u, nil
	}
}
