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

package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/protobuf/encoding/protojson"

	"dirpx.dev/safecall/adapter"
	"dirpx.dev/safecall/apis"
	"dirpx.dev/safecall/code"
)

// Meta carries request-level context the HTTP layer adds to an error
// response. All fields are optional.
type Meta struct {
	Correlation string
	TraceID     string
	// RetryAfter sets the Retry-After header, rounded up to whole seconds.
	RetryAfter time.Duration
}

// Body is the JSON document written for an error.
type Body struct {
	apis.ErrorView

	Correlation       string          `json:"correlation,omitempty"`
	TraceID           string          `json:"trace_id,omitempty"`
	RetryAfterSeconds int             `json:"retry_after_seconds,omitempty"`
	Info              json.RawMessage `json:"info,omitempty"`
}

// Writer turns errors into HTTP responses. The status comes from Mapper.
type Writer struct {
	Mapper apis.Mapper
}

// Status returns the HTTP status Write would use for err.
func (w Writer) Status(err error) int {
	f, ok := adapter.Extract(err)
	if !ok {
		return http.StatusOK
	}
	if f.Code == code.Empty {
		f.Code = code.Internal
	}
	return w.Mapper.HTTPStatus(f.Code, f.Reason)
}

// Write writes err as a JSON Body. A nil err writes nothing.
//
// The body holds the error view plus "info", the google.rpc.ErrorInfo of
// the error in protojson form, so HTTP and gRPC clients see the same
// payload. Nothing is redacted.
func (w Writer) Write(rw http.ResponseWriter, err error, meta Meta) {
	if err == nil {
		return
	}
	body := Body{
		ErrorView:   adapter.ToView(err),
		Correlation: meta.Correlation,
		TraceID:     meta.TraceID,
	}
	if info := adapter.ToErrorInfo(err); info != nil {
		if b, merr := protojson.Marshal(info); merr == nil {
			body.Info = b
		}
	}

	rw.Header().Set("Content-Type", "application/json")
	if meta.RetryAfter > 0 {
		secs := int((meta.RetryAfter + time.Second - 1) / time.Second)
		body.RetryAfterSeconds = secs
		rw.Header().Set("Retry-After", strconv.Itoa(secs))
	}
	rw.WriteHeader(w.Status(err))
	_ = json.NewEncoder(rw).Encode(body)
}
