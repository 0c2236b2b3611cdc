// Copyright 2026 The Heirloom Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package url

import (
	"crypto/sha256"
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// URL is a Heirloom identity URL. Vaults, owners, beneficiaries, and
// asset contracts are all addressed by URL.
type URL struct {
	Authority string
	Path      string

	memoize urlMemoize
}

type urlMemoize struct {
	str  string
	hash [32]byte
}

// Parse parses the string as a Heirloom URL. The scheme may be omitted,
// in which case `heir://` will be added, but if present it must be
// `heir`. The hostname must be non-empty.
func Parse(s string) (*URL, error) {
	u, err := url.Parse(s)
	if err == nil && u.Scheme == "" {
		u, err = url.Parse("heir://" + s)
	}
	if err != nil {
		return nil, err
	}

	if u.Scheme != "heir" {
		return nil, wrongScheme(s)
	}

	if u.Host == "" || u.Host[0] == ':' {
		return nil, missingHost(s)
	}

	v := new(URL)
	v.Authority = u.Host
	v.Path = u.Path
	return v, nil
}

// MustParse calls Parse and panics if it returns an error.
func MustParse(s string) *URL {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u *URL) copy() *URL {
	v := *u
	v.memoize = urlMemoize{}
	return &v
}

// WithPath creates a copy of the URL with Path set to the given value.
func (u *URL) WithPath(s string) *URL {
	v := u.copy()
	v.Path = s
	return v
}

// JoinPath returns a copy of the URL with additional path elements.
func (u *URL) JoinPath(s ...string) *URL {
	if len(s) == 0 {
		return u
	}
	v := u.copy()
	if v.Path == "" {
		v.Path = "/"
	}
	v.Path = path.Join(append([]string{v.Path}, s...)...)
	return v
}

// String reassembles the URL into a valid URL string.
func (u *URL) String() string {
	if u.memoize.str != "" {
		return u.memoize.str
	}
	v := new(url.URL)
	v.Scheme = "heir"
	v.Host = u.Authority
	v.Path = normalizePath(u.Path)
	u.memoize.str = v.String()
	return u.memoize.str
}

// ShortString returns String without the scheme prefix.
func (u *URL) ShortString() string {
	return u.String()[len("heir://"):]
}

// Hostname returns the hostname from the authority.
func (u *URL) Hostname() string {
	s, _, _ := strings.Cut(u.Authority, ":")
	return s
}

// RootIdentity returns a copy of the URL with an empty path.
func (u *URL) RootIdentity() *URL {
	if u.Path == "" {
		return u
	}
	v := u.copy()
	v.Path = ""
	return v
}

// IsRootIdentity returns true if the URL has an empty path.
func (u *URL) IsRootIdentity() bool {
	return normalizePath(u.Path) == ""
}

func normalizePath(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	if s != "" && s[0] != '/' {
		s = "/" + s
	}
	return s
}

func id(s string) [32]byte {
	s = strings.ToLower(s)
	return sha256.Sum256([]byte(s))
}

// AccountID returns the hash of the lowercased URL as a byte slice. It
// is the storage key for records belonging to the URL.
func (u *URL) AccountID() []byte {
	h := u.AccountID32()
	return h[:]
}

// AccountID32 returns the hash of the lowercased URL.
func (u *URL) AccountID32() [32]byte {
	if u.memoize.hash != ([32]byte{}) {
		return u.memoize.hash
	}
	u.memoize.hash = id(u.Authority + normalizePath(u.Path))
	return u.memoize.hash
}

// Compare returns an integer comparing two URLs, ignoring case.
func (u *URL) Compare(v *URL) int {
	uStr := strings.ToLower(u.String())
	vStr := strings.ToLower(v.String())
	return strings.Compare(uStr, vStr)
}

// Equal reports whether two URLs are the same, ignoring case. A nil URL
// is only equal to another nil URL.
func (u *URL) Equal(v *URL) bool {
	if u == v {
		return true
	}
	if u == nil || v == nil {
		return false
	}
	return u.AccountID32() == v.AccountID32()
}

// MarshalJSON marshals the URL to JSON as a string.
func (u *URL) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON unmarshals the URL from JSON as a string.
func (u *URL) UnmarshalJSON(data []byte) error {
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}

	v, err := Parse(s)
	if err != nil {
		return err
	}

	*u = *v
	return nil
}
