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
	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
)

var (
	opConnect = call.MustOp(safecall.Directory, "connect")
	opBind    = call.MustOp(safecall.Directory, "bind")
	opSearch  = call.MustOp(safecall.Directory, "search")
	opAdd     = call.MustOp(safecall.Directory, "add")
	opModify  = call.MustOp(safecall.Directory, "modify")
	opDelete  = call.MustOp(safecall.Directory, "delete")
	opCompare = call.MustOp(safecall.Directory, "compare")
	opUnbind  = call.MustOp(safecall.Directory, "unbind")
)

// Connect dials url ("ldap://host:389", "ldaps://...", "ldapi://...").
func Connect(url string, opts ...Option) (*Link, error) {
	o := apply(opts)
	return call.Ambient(o.env, opConnect, call.Nil[Link](), func() *Link { return connect(o, url) })
}

// Bind authenticates as dn. A wrong password fails with
// code.InvalidCredentials.
func (l *Link) Bind(dn, password string) error {
	return call.HandleBool(l.env, &l.cell, opBind, func() bool { return l.bind(dn, password) })
}

// Search returns the entries under base matching filter. attrs limits the
// returned attributes; scope defaults to ScopeSubtree and sizeLimit to
// no limit. No match is an empty result, not an error.
func (l *Link) Search(base, filter string, attrs []string, scope call.Opt[Scope], sizeLimit call.Opt[int]) ([]Entry, error) {
	if _, err := call.Arity(opSearch, scope.Supplied(), sizeLimit.Supplied()); err != nil {
		return nil, err
	}
	return call.Handle(l.env, &l.cell, opSearch, call.NilSlice[Entry](), func() []Entry {
		return l.search(base, filter, attrs, scope.Or(ScopeSubtree), sizeLimit.Or(0))
	})
}

// Add creates the entry dn with the given attributes.
func (l *Link) Add(dn string, entry map[string][]string) error {
	return call.HandleBool(l.env, &l.cell, opAdd, func() bool { return l.add(dn, entry) })
}

// Modify applies changes to dn in order.
func (l *Link) Modify(dn string, changes []Change) error {
	return call.HandleBool(l.env, &l.cell, opModify, func() bool { return l.modify(dn, changes) })
}

// Delete removes the leaf entry dn.
func (l *Link) Delete(dn string) error {
	return call.HandleBool(l.env, &l.cell, opDelete, func() bool { return l.del(dn) })
}

// Compare reports whether attr of dn holds value: 1 if it does, 0 if it
// does not.
func (l *Link) Compare(dn, attr, value string) (int, error) {
	return call.Handle(l.env, &l.cell, opCompare, call.Negative[int](), func() int { return l.compare(dn, attr, value) })
}

// Unbind ends the session and closes the link.
func (l *Link) Unbind() error {
	return call.HandleBool(l.env, &l.cell, opUnbind, func() bool { return l.unbind() })
}
