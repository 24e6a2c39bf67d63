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

package apis

import (
	"fmt"
	"sort"
)

// Detail is one key/value pair of error details in transport form.
type Detail struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Details flattens a details map into a slice sorted by key, rendering
// values with fmt. A nil or empty map yields nil.
func Details(m map[string]any) []Detail {
	if len(m) == 0 {
		return nil
	}
	out := make([]Detail, 0, len(m))
	for k, v := range m {
		out = append(out, Detail{Key: k, Value: fmt.Sprint(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
