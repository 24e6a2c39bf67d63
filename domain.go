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

package safecall

import "slices"

// Domain tags the native subsystem an operation belongs to. It is the first
// segment of every reason produced by a wrapped call.
type Domain string

// Known domains. Each one has exactly one taxonomy leaf.
const (
	Filesystem Domain = "filesystem"
	Stream     Domain = "stream"
	Network    Domain = "network"
	Image      Domain = "image"
	Directory  Domain = "directory"
	Database   Domain = "database"
	SQL        Domain = "sql"
	AsyncIO    Domain = "async_io"
	Document   Domain = "document"
)

var domains = []Domain{
	Filesystem, Stream, Network, Image, Directory, Database, SQL, AsyncIO, Document,
}

// Domains returns every known domain.
func Domains() []Domain {
	out := make([]Domain, len(domains))
	copy(out, domains)
	return out
}

// Valid reports whether d is a known domain.
func (d Domain) Valid() bool {
	return slices.Contains(domains, d)
}

func (d Domain) String() string { return string(d) }
