// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package url

import (
	"errors"
	"fmt"
)

// ErrMissingHost means that a URL did not include a hostname.
var ErrMissingHost = errors.New("missing host")

// ErrWrongScheme means that a URL included a scheme other than the
// Heirloom scheme.
var ErrWrongScheme = errors.New("wrong scheme")

func missingHost(url string) error {
	return fmt.Errorf("%w in URL %q", ErrMissingHost, url)
}

func wrongScheme(url string) error {
	return fmt.Errorf("%w in URL %q", ErrWrongScheme, url)
}
