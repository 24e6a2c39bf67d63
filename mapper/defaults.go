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

package mapper

import (
	"net/http"

	"google.golang.org/grpc/codes"

	"dirpx.dev/safecall/apis"
	"dirpx.dev/safecall/code"
)

// defaults holds the built-in statuses for every declared code. Callers
// adjust them per code with WithHTTPDefault / WithGRPCDefault.
var defaults = map[code.Code]apis.Status{
	// Generic.
	code.Internal:    {HTTP: http.StatusInternalServerError, GRPC: codes.Internal},
	code.Invalid:     {HTTP: http.StatusBadRequest, GRPC: codes.InvalidArgument},
	code.Missing:     {HTTP: http.StatusBadRequest, GRPC: codes.InvalidArgument},
	code.Unsupported: {HTTP: http.StatusNotImplemented, GRPC: codes.Unimplemented},

	// Runtime. 408 for canceled; switch to 499 with an override if the edge
	// speaks nginx.
	code.Unavailable:      {HTTP: http.StatusServiceUnavailable, GRPC: codes.Unavailable},
	code.Timeout:          {HTTP: http.StatusGatewayTimeout, GRPC: codes.DeadlineExceeded},
	code.Canceled:         {HTTP: http.StatusRequestTimeout, GRPC: codes.Canceled},
	code.DependencyFailed: {HTTP: http.StatusBadGateway, GRPC: codes.FailedPrecondition},
	code.Overloaded:       {HTTP: http.StatusServiceUnavailable, GRPC: codes.ResourceExhausted},
	code.WouldBlock:       {HTTP: http.StatusServiceUnavailable, GRPC: codes.Unavailable},

	// Resources.
	code.NotFound:           {HTTP: http.StatusNotFound, GRPC: codes.NotFound},
	code.AlreadyExists:      {HTTP: http.StatusConflict, GRPC: codes.AlreadyExists},
	code.Conflict:           {HTTP: http.StatusConflict, GRPC: codes.Aborted},
	code.PreconditionFailed: {HTTP: http.StatusPreconditionFailed, GRPC: codes.FailedPrecondition},
	code.BadHandle:          {HTTP: http.StatusBadRequest, GRPC: codes.FailedPrecondition},
	code.IOFailure:          {HTTP: http.StatusInternalServerError, GRPC: codes.Internal},

	// AuthN / AuthZ.
	code.Unauthenticated:    {HTTP: http.StatusUnauthorized, GRPC: codes.Unauthenticated},
	code.InvalidCredentials: {HTTP: http.StatusUnauthorized, GRPC: codes.Unauthenticated},
	code.PermissionDenied:   {HTTP: http.StatusForbidden, GRPC: codes.PermissionDenied},

	// Quotas.
	code.QuotaExceeded: {HTTP: http.StatusInsufficientStorage, GRPC: codes.ResourceExhausted},
}

// fallback is used for codes with no default at all.
var fallback = apis.Status{HTTP: http.StatusInternalServerError, GRPC: codes.Internal}
