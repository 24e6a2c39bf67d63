/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package directory

import (
	"github.com/go-ldap/ldap/v3"

	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/lasterr"
)

// Conn is the part of an LDAP client a Link drives. *ldap.Conn
// satisfies it.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Add(req *ldap.AddRequest) error
	Modify(req *ldap.ModifyRequest) error
	Del(req *ldap.DelRequest) error
	Compare(dn, attribute, value string) (bool, error)
	Unbind() error
	Close() error
}

var _ Conn = (*ldap.Conn)(nil)

// Scope is the depth of a search.
type Scope int

const (
	ScopeBase     Scope = ldap.ScopeBaseObject
	ScopeOneLevel Scope = ldap.ScopeSingleLevel
	ScopeSubtree  Scope = ldap.ScopeWholeSubtree
)

// ModOp is the kind of a modification.
type ModOp int

const (
	ModAdd ModOp = iota
	ModDelete
	ModReplace
)

// Change is one attribute modification.
type Change struct {
	Op     ModOp
	Attr   string
	Values []string
}

// Entry is one search result.
type Entry struct {
	DN         string
	Attributes map[string][]string
}

// Link is a connection to a directory server. Each link keeps the result
// of its last operation, read by Errno and Error.
type Link struct {
	cell lasterr.Cell

	conn   Conn
	env    *call.Env
	closed bool
}

// Option configures Connect.
type Option func(*options)

type options struct {
	env  *call.Env
	dial func(url string) (Conn, error)
}

// WithEnv runs the link's wrapped calls in env. Without it each
// link gets a fork of call.Default, so a slow connect never stalls
// other calls.
func WithEnv(env *call.Env) Option {
	return func(o *options) { o.env = env }
}

// WithDialer replaces ldap.DialURL.
func WithDialer(dial func(url string) (Conn, error)) Option {
	return func(o *options) { o.dial = dial }
}

func apply(opts []Option) options {
	o := options{dial: func(url string) (Conn, error) { return ldap.DialURL(url) }}
	for _, opt := range opts {
		opt(&o)
	}
	if o.env == nil {
		o.env = call.Default.Fork()
	}
	return o
}

// Errno returns the LDAP result code of the last operation on l, 0 after
// a success.
func (l *Link) Errno() int { return l.cell.Number() }

// Error returns the description of the last result, "Success" after a
// success.
func (l *Link) Error() string {
	if msg := l.cell.Message(); msg != "" {
		return msg
	}
	return Message(ldap.LDAPResultSuccess)
}
