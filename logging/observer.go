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

package logging

import (
	"context"
	"log/slog"

	"dirpx.dev/safecall/call"
)

// Observer logs wrapped calls: failures at WARN, successes at DEBUG.
type Observer struct {
	// Logger receives the records. Nil means the package logger.
	Logger *slog.Logger
}

var _ call.Observer = Observer{}

// Observe implements call.Observer.
func (o Observer) Observe(ev call.Event) {
	l := o.Logger
	if l == nil {
		l = Logger()
	}
	attrs := []slog.Attr{
		slog.String("domain", string(ev.Op.Domain)),
		slog.String("op", ev.Op.Name),
		slog.String("strategy", string(ev.Strategy)),
		slog.Duration("duration", ev.Duration),
	}
	if !ev.Failed() {
		l.LogAttrs(context.Background(), slog.LevelDebug, "native call succeeded", attrs...)
		return
	}
	attrs = append(attrs,
		slog.String("code", string(ev.Err.Code)),
		slog.String("reason", ev.Err.Reason.String()),
		slog.String("error", ev.Err.Message),
	)
	if ev.Err.Errno != 0 {
		attrs = append(attrs, slog.Int("errno", ev.Err.Errno))
	}
	l.LogAttrs(context.Background(), slog.LevelWarn, "native call failed", attrs...)
}
