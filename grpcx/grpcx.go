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

package grpcx

import (
	"context"
	"time"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	gstatus "google.golang.org/grpc/status"
	"google.golang.org/protobuf/protoadapt"
	"google.golang.org/protobuf/types/known/durationpb"

	"dirpx.dev/safecall/adapter"
	"dirpx.dev/safecall/apis"
	"dirpx.dev/safecall/code"
)

// Extras are optional details attached next to the ErrorInfo.
type Extras struct {
	// RequestID correlates the failure with a request (idempotency key,
	// request header).
	RequestID string

	// ServingData is free-form data about the server that produced the
	// error, copied into RequestInfo.
	ServingData string

	// Retry tells the client how long to back off.
	Retry *errdetails.RetryInfo

	// Links point at documentation for the failure.
	Links []*errdetails.Help_Link
}

// MetaFn derives Extras for a failed call. It may return zero Extras.
type MetaFn func(ctx context.Context, err error) Extras

// Status converts err into a gRPC status using m.
//
// Errors that already carry a gRPC status are returned unchanged. Errors
// without a code are reported as the mapper's status for code.Internal.
// The status always carries a google.rpc.ErrorInfo built by
// adapter.ToErrorInfo, plus RequestInfo, RetryInfo and Help when ex sets
// them.
func Status(m apis.Mapper, err error, ex Extras) *gstatus.Status {
	if err == nil {
		return nil
	}
	if st, ok := gstatus.FromError(err); ok {
		return st
	}
	f, _ := adapter.Extract(err)
	if f.Code == code.Empty {
		f.Code = code.Internal
	}
	base := gstatus.New(m.GRPCStatus(f.Code, f.Reason), f.Message)

	details := []protoadapt.MessageV1{adapter.ToErrorInfo(err)}
	if ex.RequestID != "" || ex.ServingData != "" {
		details = append(details, &errdetails.RequestInfo{
			RequestId:   ex.RequestID,
			ServingData: ex.ServingData,
		})
	}
	if ex.Retry != nil {
		details = append(details, ex.Retry)
	}
	if len(ex.Links) > 0 {
		details = append(details, &errdetails.Help{Links: ex.Links})
	}
	if with, derr := base.WithDetails(details...); derr == nil {
		return with
	}
	return base
}

// RetryAfter builds a RetryInfo for Extras.Retry.
func RetryAfter(d time.Duration) *errdetails.RetryInfo {
	return &errdetails.RetryInfo{RetryDelay: durationpb.New(d)}
}

// UnaryServerInterceptor converts handler errors into gRPC statuses with
// ErrorInfo details. metaFn may be nil.
func UnaryServerInterceptor(m apis.Mapper, metaFn MetaFn) grpc.UnaryServerInterceptor {
	metaFn = orNoMeta(metaFn)
	return func(ctx context.Context, req any, _ *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		return nil, Status(m, err, metaFn(ctx, err)).Err()
	}
}

// StreamServerInterceptor is UnaryServerInterceptor for streaming RPCs.
func StreamServerInterceptor(m apis.Mapper, metaFn MetaFn) grpc.StreamServerInterceptor {
	metaFn = orNoMeta(metaFn)
	return func(srv any, ss grpc.ServerStream, _ *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, ss)
		if err == nil {
			return nil
		}
		return Status(m, err, metaFn(ss.Context(), err)).Err()
	}
}

// ExtractInfo pulls the google.rpc.ErrorInfo out of a gRPC error.
func ExtractInfo(err error) (*errdetails.ErrorInfo, bool) {
	if err == nil {
		return nil, false
	}
	st, ok := gstatus.FromError(err)
	if !ok {
		return nil, false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok {
			return info, true
		}
	}
	return nil, false
}

func orNoMeta(fn MetaFn) MetaFn {
	if fn == nil {
		return func(context.Context, error) Extras { return Extras{} }
	}
	return fn
}
