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

package call

import (
	"fmt"

	"dirpx.dev/safecall"
	"dirpx.dev/safecall/reason"
)

// Op identifies a wrapped native operation.
type Op struct {
	Domain safecall.Domain
	Name   string
}

// MustOp returns the Op for domain d and operation name, panicking when the
// pair does not form a valid reason. Bindings declare their ops as package
// variables, so a bad name fails at init.
func MustOp(d safecall.Domain, name string) Op {
	op := Op{Domain: d, Name: name}
	if !d.Valid() {
		panic(fmt.Sprintf("safecall: unknown domain %q for op %q", d, name))
	}
	if _, err := op.reason(); err != nil {
		panic(fmt.Sprintf("safecall: invalid op %s.%s: %v", d, name, err))
	}
	return op
}

// Reason returns "<domain>.<name>" in canonical form, or reason.Empty when
// the op is not valid.
func (o Op) Reason() reason.Reason {
	r, err := o.reason()
	if err != nil {
		return reason.Empty
	}
	return r
}

// String returns the op's reason.
func (o Op) String() string {
	if r := o.Reason(); r != reason.Empty {
		return r.String()
	}
	return string(o.Domain) + "." + o.Name
}

func (o Op) reason() (reason.Reason, error) {
	return reason.Join(string(o.Domain), o.Name)
}
