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

package adapter

import (
	"errors"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"

	"dirpx.dev/safecall/apis"
	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/reason"
)

// InfoDomainPrefix prefixes the ErrorInfo domain: "safecall.filesystem".
const InfoDomainPrefix = "safecall"

// Fields is the transport-neutral content of an error, collected from
// whichever apis interfaces the error chain implements.
type Fields struct {
	Code    code.Code
	Reason  reason.Reason
	Domain  string
	Op      string
	Errno   int
	Message string
	Details map[string]any
}

// Extract collects Fields from err. Errors that implement none of the apis
// interfaces get code.Internal and their Error() text as the message.
// Extract(nil) returns zero Fields and false.
func Extract(err error) (Fields, bool) {
	if err == nil {
		return Fields{}, false
	}
	f := Fields{Code: code.Internal, Message: err.Error()}

	var ce apis.CodedError
	if errors.As(err, &ce) {
		if c := ce.ErrorCode(); code.Validate(c) == nil {
			f.Code = c
		}
	}
	var re apis.ReasonedError
	if errors.As(err, &re) {
		f.Reason = re.ErrorReason()
	}
	var ne apis.NativeError
	if errors.As(err, &ne) {
		f.Domain = ne.ErrorDomain()
		f.Op = ne.ErrorOp()
		f.Errno = ne.ErrorNumber()
	}
	var de apis.DetailedError
	if errors.As(err, &de) {
		f.Details = de.ErrorDetails()
	}
	if m, ok := message(err); ok {
		f.Message = m
	}
	return f, true
}

// ToDescriptor converts err and its resolved status into a descriptor for
// logs and message buses.
func ToDescriptor(err error, st apis.Status) apis.ErrorDescriptor {
	f, ok := Extract(err)
	if !ok {
		return apis.ErrorDescriptor{}
	}
	return apis.ErrorDescriptor{
		Code:       f.Code.String(),
		Reason:     f.Reason.String(),
		Domain:     f.Domain,
		Errno:      f.Errno,
		HTTPStatus: st.HTTP,
		GRPCCode:   int(st.GRPC),
		Message:    f.Message,
	}
}

// ToView converts err into its client-facing view. Nothing is redacted:
// the view holds exactly what the error carries.
func ToView(err error) apis.ErrorView {
	if vp, ok := err.(apis.ViewProvider); ok {
		return vp.ErrorView()
	}
	f, ok := Extract(err)
	if !ok {
		return apis.ErrorView{}
	}
	return apis.ErrorView{
		Code:    f.Code.String(),
		Reason:  f.Reason.String(),
		Domain:  f.Domain,
		Message: f.Message,
		Details: apis.Details(f.Details),
	}
}

// ToErrorInfo converts err into a google.rpc.ErrorInfo:
//
//	reason:   the code, e.g. "not_found"
//	domain:   "safecall.<domain>", or "safecall" for untagged errors
//	metadata: reason, op, errno and the error's details
//
// ToErrorInfo(nil) returns nil.
func ToErrorInfo(err error) *errdetails.ErrorInfo {
	f, ok := Extract(err)
	if !ok {
		return nil
	}
	domain := InfoDomainPrefix
	if f.Domain != "" {
		domain += "." + f.Domain
	}
	md := make(map[string]string, len(f.Details)+3)
	for _, d := range apis.Details(f.Details) {
		md[d.Key] = d.Value
	}
	if f.Reason != reason.Empty {
		md["reason"] = f.Reason.String()
	}
	if f.Op != "" {
		md["op"] = f.Op
	}
	if f.Errno != 0 {
		md["errno"] = strconv.Itoa(f.Errno)
	}
	return &errdetails.ErrorInfo{
		Reason:   f.Code.String(),
		Domain:   domain,
		Metadata: md,
	}
}

// message returns the bare message of a *safecall.Error-like value, without
// the "<code>:<reason>: " prefix Error() adds.
func message(err error) (string, bool) {
	var mp interface{ ErrorMessage() string }
	if errors.As(err, &mp) {
		return mp.ErrorMessage(), true
	}
	return "", false
}
