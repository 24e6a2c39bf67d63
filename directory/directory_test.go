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
	"errors"
	"net"
	"strings"
	"sync"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/code"
)

// fakeConn is an in-memory directory: a DN maps to its attributes.
type fakeConn struct {
	mu       sync.Mutex
	entries  map[string]map[string][]string
	password map[string]string
	unbound  bool
	lastReq  *ldap.SearchRequest
}

func newFake() *fakeConn {
	return &fakeConn{
		entries: map[string]map[string][]string{
			"dc=example,dc=com":           {"objectClass": {"domain"}},
			"uid=ada,dc=example,dc=com":   {"uid": {"ada"}, "mail": {"ada@example.com"}},
			"uid=grace,dc=example,dc=com": {"uid": {"grace"}, "mail": {"grace@example.com"}},
			"ou=people,dc=example,dc=com": {"ou": {"people"}},
		},
		password: map[string]string{"cn=admin,dc=example,dc=com": "secret"},
	}
}

func ldapErr(rc uint16, msg string) error {
	return &ldap.Error{ResultCode: rc, Err: errors.New(msg)}
}

func (f *fakeConn) Bind(username, password string) error {
	if f.password[username] != password || password == "" {
		return ldapErr(ldap.LDAPResultInvalidCredentials, "bad password")
	}
	return nil
}

func (f *fakeConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReq = req
	if _, ok := f.entries[req.BaseDN]; !ok {
		return nil, &ldap.Error{ResultCode: ldap.LDAPResultNoSuchObject, Err: errors.New("no base"), MatchedDN: "dc=example,dc=com"}
	}
	if req.Filter == "(" {
		return nil, ldapErr(ldap.ErrorFilterCompile, "unexpected end of filter")
	}
	want := strings.TrimSuffix(strings.TrimPrefix(req.Filter, "(uid="), ")")
	res := &ldap.SearchResult{}
	for dn, attrs := range f.entries {
		if dn == req.BaseDN || !strings.HasSuffix(dn, ","+req.BaseDN) {
			continue
		}
		if req.Filter != "(objectClass=*)" && (len(attrs["uid"]) == 0 || attrs["uid"][0] != want) {
			continue
		}
		res.Entries = append(res.Entries, ldap.NewEntry(dn, attrs))
	}
	if req.SizeLimit > 0 && len(res.Entries) > req.SizeLimit {
		res.Entries = res.Entries[:req.SizeLimit]
		return res, ldapErr(ldap.LDAPResultSizeLimitExceeded, "size limit exceeded")
	}
	return res, nil
}

func (f *fakeConn) Add(req *ldap.AddRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[req.DN]; ok {
		return ldapErr(ldap.LDAPResultEntryAlreadyExists, "exists")
	}
	attrs := map[string][]string{}
	for _, a := range req.Attributes {
		attrs[a.Type] = a.Vals
	}
	f.entries[req.DN] = attrs
	return nil
}

func (f *fakeConn) Modify(req *ldap.ModifyRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[req.DN]
	if !ok {
		return ldapErr(ldap.LDAPResultNoSuchObject, "no such entry")
	}
	for _, c := range req.Changes {
		switch c.Operation {
		case ldap.AddAttribute:
			e[c.Modification.Type] = append(e[c.Modification.Type], c.Modification.Vals...)
		case ldap.DeleteAttribute:
			delete(e, c.Modification.Type)
		case ldap.ReplaceAttribute:
			e[c.Modification.Type] = c.Modification.Vals
		}
	}
	return nil
}

func (f *fakeConn) Del(req *ldap.DelRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.entries[req.DN]; !ok {
		return ldapErr(ldap.LDAPResultNoSuchObject, "no such entry")
	}
	for dn := range f.entries {
		if strings.HasSuffix(dn, ","+req.DN) {
			return ldapErr(ldap.LDAPResultNotAllowedOnNonLeaf, "has children")
		}
	}
	delete(f.entries, req.DN)
	return nil
}

func (f *fakeConn) Compare(dn, attribute, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[dn]
	if !ok {
		return false, ldapErr(ldap.LDAPResultNoSuchObject, "no such entry")
	}
	for _, v := range e[attribute] {
		if v == value {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeConn) Unbind() error {
	f.unbound = true
	return nil
}

func (f *fakeConn) Close() error { return nil }

func connectFake(t *testing.T) (*Link, *fakeConn) {
	t.Helper()
	f := newFake()
	l, err := Connect("ldap://fake", WithEnv(call.NewEnv()), WithDialer(func(string) (Conn, error) { return f, nil }))
	require.NoError(t, err)
	return l, f
}

func requireDirError(t *testing.T, err error, c code.Code, op string, rc int) *safecall.Error {
	t.Helper()
	require.Error(t, err)
	var de *safecall.DirectoryError
	require.True(t, errors.As(err, &de), "want *safecall.DirectoryError, got %T", err)
	assert.Equal(t, c, de.Err.Code)
	assert.Equal(t, op, de.Err.Op)
	assert.Equal(t, "directory."+op, de.Err.Reason.String())
	assert.Equal(t, rc, de.Err.Errno)
	return de.Err
}

func TestClassify(t *testing.T) {
	tests := []struct {
		rc   int
		want code.Code
	}{
		{ldap.LDAPResultInvalidCredentials, code.InvalidCredentials},
		{ldap.LDAPResultNoSuchObject, code.NotFound},
		{ldap.LDAPResultEntryAlreadyExists, code.AlreadyExists},
		{ldap.LDAPResultInsufficientAccessRights, code.PermissionDenied},
		{ldap.LDAPResultTimeLimitExceeded, code.Timeout},
		{ldap.LDAPResultBusy, code.Unavailable},
		{ldap.LDAPResultUnavailable, code.Unavailable},
		{ldap.ErrorNetwork, code.Unavailable},
		{9999, code.Internal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.rc), "result code %d", tt.rc)
	}
	assert.Equal(t, "Invalid Credentials", Message(ldap.LDAPResultInvalidCredentials))
	assert.Equal(t, "Unknown error", Message(-1))
}

func TestBind(t *testing.T) {
	l, _ := connectFake(t)
	assert.Zero(t, l.Errno())
	assert.Equal(t, "Success", l.Error())

	err := l.Bind("cn=admin,dc=example,dc=com", "wrong")
	e := requireDirError(t, err, code.InvalidCredentials, "bind", ldap.LDAPResultInvalidCredentials)
	assert.Equal(t, "Invalid Credentials", e.Message)
	assert.Equal(t, "bad password", e.Details["diagnostic"])
	assert.Equal(t, ldap.LDAPResultInvalidCredentials, e.Details["native_code"])
	assert.Equal(t, ldap.LDAPResultInvalidCredentials, l.Errno())
	assert.Equal(t, "Invalid Credentials", l.Error())

	require.NoError(t, l.Bind("cn=admin,dc=example,dc=com", "secret"))
	assert.Zero(t, l.Errno())
}

func TestSearch(t *testing.T) {
	l, f := connectFake(t)

	entries, err := l.Search("dc=example,dc=com", "(uid=ada)", []string{"mail"}, call.Opt[Scope]{}, call.Opt[int]{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "uid=ada,dc=example,dc=com", entries[0].DN)
	assert.Equal(t, []string{"ada@example.com"}, entries[0].Attributes["mail"])
	assert.Equal(t, int(ScopeSubtree), f.lastReq.Scope)

	entries, err = l.Search("dc=example,dc=com", "(uid=nobody)", nil, call.Some(ScopeOneLevel), call.Some(5))
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
	assert.Equal(t, 5, f.lastReq.SizeLimit)

	_, err = l.Search("dc=missing", "(objectClass=*)", nil, call.Opt[Scope]{}, call.Opt[int]{})
	e := requireDirError(t, err, code.NotFound, "search", ldap.LDAPResultNoSuchObject)
	assert.Equal(t, "dc=example,dc=com", e.Details["matched_dn"])

	_, err = l.Search("dc=example,dc=com", "(", nil, call.Opt[Scope]{}, call.Opt[int]{})
	requireDirError(t, err, code.Invalid, "search", ldap.ErrorFilterCompile)

	_, err = l.Search("dc=example,dc=com", "(uid=ada)", nil, call.Opt[Scope]{}, call.Some(1))
	e = requireDirError(t, err, code.Invalid, "search", 0)
	assert.Equal(t, 2, e.Details["argument"])
}

func TestSearch_SizeLimitKeepsPartialEntries(t *testing.T) {
	l, _ := connectFake(t)

	entries, err := l.Search("dc=example,dc=com", "(objectClass=*)", nil, call.Some(ScopeSubtree), call.Some(1))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, ldap.LDAPResultSizeLimitExceeded, l.Errno())
	assert.Equal(t, "Size Limit Exceeded", l.Error())

	entries, err = l.Search("dc=example,dc=com", "(objectClass=*)", nil, call.Some(ScopeSubtree), call.Some(10))
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Zero(t, l.Errno())
}

func TestAddModifyDelete(t *testing.T) {
	l, f := connectFake(t)
	dn := "uid=linus,ou=people,dc=example,dc=com"

	require.NoError(t, l.Add(dn, map[string][]string{"uid": {"linus"}, "cn": {"Linus"}}))
	err := l.Add(dn, map[string][]string{"uid": {"linus"}})
	requireDirError(t, err, code.AlreadyExists, "add", ldap.LDAPResultEntryAlreadyExists)

	require.NoError(t, l.Modify(dn, []Change{
		{Op: ModReplace, Attr: "cn", Values: []string{"Linus T"}},
		{Op: ModAdd, Attr: "mail", Values: []string{"linus@example.com"}},
	}))
	assert.Equal(t, []string{"Linus T"}, f.entries[dn]["cn"])
	assert.Equal(t, []string{"linus@example.com"}, f.entries[dn]["mail"])

	err = l.Modify(dn, []Change{{Op: ModOp(42), Attr: "cn"}})
	requireDirError(t, err, code.Invalid, "modify", ldap.LDAPResultParamError)
	err = l.Modify("uid=nobody,dc=example,dc=com", []Change{{Op: ModDelete, Attr: "cn"}})
	requireDirError(t, err, code.NotFound, "modify", ldap.LDAPResultNoSuchObject)

	err = l.Delete("ou=people,dc=example,dc=com")
	requireDirError(t, err, code.PreconditionFailed, "delete", ldap.LDAPResultNotAllowedOnNonLeaf)
	require.NoError(t, l.Delete(dn))
	assert.NotContains(t, f.entries, dn)
}

func TestCompare(t *testing.T) {
	l, _ := connectFake(t)

	n, err := l.Compare("uid=ada,dc=example,dc=com", "mail", "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = l.Compare("uid=ada,dc=example,dc=com", "mail", "other@example.com")
	require.NoError(t, err, "a false comparison is a result")
	assert.Equal(t, 0, n)

	_, err = l.Compare("uid=nobody,dc=example,dc=com", "mail", "x")
	requireDirError(t, err, code.NotFound, "compare", ldap.LDAPResultNoSuchObject)
}

func TestUnbind(t *testing.T) {
	l, f := connectFake(t)
	require.NoError(t, l.Unbind())
	assert.True(t, f.unbound)

	e := requireDirError(t, l.Unbind(), code.BadHandle, "unbind", 0)
	assert.Equal(t, "LDAP link is closed", e.Message)
	_, err := l.Compare("dc=example,dc=com", "objectClass", "domain")
	requireDirError(t, err, code.BadHandle, "compare", 0)
}

func TestConnect_Failures(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	l, err := Connect("ldap://"+addr, WithEnv(call.NewEnv()))
	assert.Nil(t, l)
	e := requireDirError(t, err, code.Unavailable, "connect", ldap.ErrorNetwork)
	assert.Equal(t, "Network Error", e.Message)

	_, err = Connect("ldap://x", WithEnv(call.NewEnv()), WithDialer(func(string) (Conn, error) {
		return nil, errors.New("plain failure")
	}))
	requireDirError(t, err, code.Unavailable, "connect", ldap.ErrorNetwork)
}
