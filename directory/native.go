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
	"sort"

	"github.com/go-ldap/ldap/v3"

	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/lasterr"
)

// record builds the record for an LDAP failure. Errors that carry no
// result code are treated as network errors.
func record(err error) lasterr.Context {
	rc := ldap.ErrorNetwork
	ctx := lasterr.Context{Cause: err}
	var le *ldap.Error
	if errors.As(err, &le) {
		rc = int(le.ResultCode)
		if le.MatchedDN != "" {
			ctx.Details = map[string]any{"matched_dn": le.MatchedDN}
		}
		if le.Err != nil {
			if ctx.Details == nil {
				ctx.Details = map[string]any{}
			}
			ctx.Details["diagnostic"] = le.Err.Error()
		}
	}
	ctx.Number = rc
	ctx.Code = Classify(rc)
	ctx.Message = Message(rc)
	return ctx
}

func connect(o options, url string) *Link {
	conn, err := o.dial(url)
	if err != nil {
		o.env.Register().Report(record(err))
		return nil
	}
	return &Link{conn: conn, env: o.env}
}

func (l *Link) usable() bool {
	if l.closed {
		l.cell.Report(lasterr.Context{Message: "LDAP link is closed", Code: code.BadHandle})
		return false
	}
	return true
}

func (l *Link) check(err error) bool {
	if err != nil {
		l.cell.Report(record(err))
		return false
	}
	return true
}

func (l *Link) bind(dn, password string) bool {
	return l.usable() && l.check(l.conn.Bind(dn, password))
}

func (l *Link) search(base, filter string, attrs []string, scope Scope, sizeLimit int) []Entry {
	if !l.usable() {
		return nil
	}
	req := ldap.NewSearchRequest(base, int(scope), ldap.NeverDerefAliases, sizeLimit, 0, false, filter, attrs, nil)
	res, err := l.conn.Search(req)
	if res != nil && ldap.IsErrorWithCode(err, ldap.LDAPResultSizeLimitExceeded) {
		// Partial results are returned; the link keeps the result code.
		l.cell.Report(record(err))
	} else if !l.check(err) {
		return nil
	}
	out := make([]Entry, 0, len(res.Entries))
	for _, e := range res.Entries {
		ent := Entry{DN: e.DN, Attributes: make(map[string][]string, len(e.Attributes))}
		for _, a := range e.Attributes {
			ent.Attributes[a.Name] = a.Values
		}
		out = append(out, ent)
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (l *Link) add(dn string, entry map[string][]string) bool {
	if !l.usable() {
		return false
	}
	req := ldap.NewAddRequest(dn, nil)
	for _, k := range sortedKeys(entry) {
		req.Attribute(k, entry[k])
	}
	return l.check(l.conn.Add(req))
}

func (l *Link) modify(dn string, changes []Change) bool {
	if !l.usable() {
		return false
	}
	req := ldap.NewModifyRequest(dn, nil)
	for _, c := range changes {
		switch c.Op {
		case ModAdd:
			req.Add(c.Attr, c.Values)
		case ModDelete:
			req.Delete(c.Attr, c.Values)
		case ModReplace:
			req.Replace(c.Attr, c.Values)
		default:
			l.cell.Report(lasterr.Context{
				Message: "Unknown modification type",
				Number:  ldap.LDAPResultParamError,
				Code:    Classify(ldap.LDAPResultParamError),
			})
			return false
		}
	}
	return l.check(l.conn.Modify(req))
}

func (l *Link) del(dn string) bool {
	return l.usable() && l.check(l.conn.Del(ldap.NewDelRequest(dn, nil)))
}

func (l *Link) compare(dn, attr, value string) int {
	if !l.usable() {
		return -1
	}
	ok, err := l.conn.Compare(dn, attr, value)
	if !l.check(err) {
		return -1
	}
	if ok {
		return 1
	}
	return 0
}

func (l *Link) unbind() bool {
	if !l.usable() {
		return false
	}
	l.closed = true
	err := l.conn.Unbind()
	if cerr := l.conn.Close(); err == nil {
		err = cerr
	}
	return l.check(err)
}
