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
	"strings"
	"sync"
	"testing"

	"google.golang.org/grpc/codes"

	"dirpx.dev/safecall/apis"
	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/reason"
)

func TestDefaults_CoverEveryDeclaredCode(t *testing.T) {
	for _, c := range code.All() {
		if _, ok := defaults[c]; !ok {
			t.Fatalf("no default status for code %q", c)
		}
	}
}

func TestDefaults_SpotCheck(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	check := func(c code.Code, wantHTTP int, wantGRPC codes.Code) {
		t.Helper()
		st := m.Status(c, reason.Empty)
		if st.HTTP != wantHTTP || st.GRPC != wantGRPC {
			t.Fatalf("Status(%q) got HTTP=%d GRPC=%v; want HTTP=%d GRPC=%v",
				c, st.HTTP, st.GRPC, wantHTTP, wantGRPC)
		}
	}
	check(code.Invalid, 400, codes.InvalidArgument)
	check(code.NotFound, 404, codes.NotFound)
	check(code.Unavailable, 503, codes.Unavailable)
	check(code.Timeout, 504, codes.DeadlineExceeded)
	check(code.BadHandle, 400, codes.FailedPrecondition)
	check(code.QuotaExceeded, 507, codes.ResourceExhausted)
}

func TestPriority_OverrideOverPrefixOverDefault_HTTP(t *testing.T) {
	m, err := New(
		WithHTTPDefault(code.Unavailable, 503),
		WithHTTPPrefix(code.Unavailable, "database", 599),
		WithHTTPOverride(code.Unavailable, 418),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st := m.Status(code.Unavailable, mustReason("database.connect")); st.HTTP != 418 {
		t.Fatalf("override must win; got %d, want 418", st.HTTP)
	}
}

func TestPriority_OverrideOverPrefixOverDefault_GRPC(t *testing.T) {
	m, err := New(
		WithGRPCDefault(code.Unavailable, codes.Unavailable),
		WithGRPCPrefix(code.Unavailable, "database", codes.Internal),
		WithGRPCOverride(code.Unavailable, codes.Aborted),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st := m.Status(code.Unavailable, mustReason("database.connect")); st.GRPC != codes.Aborted {
		t.Fatalf("override must win; got %v, want %v", st.GRPC, codes.Aborted)
	}
}

func TestPrefix_BeatsDefault(t *testing.T) {
	m, err := New(WithPrefix(code.Timeout, "network.exec", apis.Status{HTTP: 599, GRPC: codes.Unavailable}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st := m.Status(code.Timeout, mustReason("network.exec")); st.HTTP != 599 || st.GRPC != codes.Unavailable {
		t.Fatalf("prefix must win over default; got %+v", st)
	}
	if st := m.Status(code.Timeout, mustReason("stream.read")); st.HTTP != 504 {
		t.Fatalf("other domains keep the default; got %+v", st)
	}
}

func TestPrefix_LPM_And_SegmentBoundary(t *testing.T) {
	m, err := New(
		WithHTTPPrefix(code.Unavailable, "database", 502),
		WithHTTPPrefix(code.Unavailable, "database.connect", 599),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st := m.Status(code.Unavailable, mustReason("database.connect")); st.HTTP != 599 {
		t.Fatalf("LPM failed: got %d, want 599", st.HTTP)
	}
	if st := m.Status(code.Unavailable, mustReason("database.query")); st.HTTP != 502 {
		t.Fatalf("shorter prefix must still match: got %d", st.HTTP)
	}

	m2, _ := New(WithHTTPPrefix(code.Unavailable, "network.exec", 499))
	if st := m2.Status(code.Unavailable, mustReason("network.exe")); st.HTTP == 499 {
		t.Fatalf("unexpected match across segment boundary")
	}
}

func TestWildcard_OneSegment(t *testing.T) {
	m, err := New(
		WithHTTPPrefix(code.Timeout, "*.exec", 502),
		WithHTTPPrefix(code.Timeout, "network.exec", 504),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st := m.Status(code.Timeout, mustReason("network.exec")); st.HTTP != 504 {
		t.Fatalf("exact must beat wildcard; got %d", st.HTTP)
	}
	if st := m.Status(code.Timeout, mustReason("sql.exec")); st.HTTP != 502 {
		t.Fatalf("wildcard match failed; got %d, want 502", st.HTTP)
	}
	if st := m.Status(code.Timeout, mustReason("exec")); st.HTTP == 502 {
		t.Fatalf("wildcard must not match zero segments")
	}
}

func TestNormalization_In_Options(t *testing.T) {
	m, err := New(WithHTTPPrefix(code.NotFound, "  FileSystem/File-Get-Contents  ", 410))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st := m.Status(code.NotFound, mustReason("filesystem.file_get_contents")); st.HTTP != 410 {
		t.Fatalf("normalized prefix should match; got %d", st.HTTP)
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"bad prefix", WithHTTPPrefix(code.NotFound, "a..b", 404)},
		{"wildcard only", WithGRPCPrefix(code.NotFound, "*", codes.NotFound)},
		{"http out of range", WithHTTPOverride(code.NotFound, 42)},
		{"grpc out of range", WithGRPCDefault(code.NotFound, codes.Code(99))},
		{"bad code", WithHTTPDefault(code.Code("Not Found"), 404)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); err == nil {
				t.Fatalf("New must reject %s", tt.name)
			}
		})
	}
}

func TestFallback_UnknownCode(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	st := m.Status(code.Code("kernel_panic"), reason.Empty)
	if st.HTTP != http.StatusInternalServerError || st.GRPC != codes.Internal {
		t.Fatalf("fallback mismatch: %+v", st)
	}

	m2, err := New(WithFallback(apis.Status{HTTP: 502, GRPC: codes.Unknown}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st := m2.Status(code.Code("kernel_panic"), reason.Empty); st.HTTP != 502 || st.GRPC != codes.Unknown {
		t.Fatalf("custom fallback mismatch: %+v", st)
	}
}

func TestEmptyReason_UsesDefault(t *testing.T) {
	m, err := New(
		WithHTTPDefault(code.Canceled, 499),
		WithHTTPPrefix(code.Canceled, "database", 408),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if st := m.Status(code.Canceled, reason.Empty); st.HTTP != 499 {
		t.Fatalf("empty reason should use default; got %d, want 499", st.HTTP)
	}
}

func TestExplain_Sources_And_Pattern(t *testing.T) {
	m, err := New(WithPrefix(code.Unavailable, "database", apis.Status{HTTP: 502, GRPC: codes.Unavailable}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	exp := m.Explain(code.Unavailable, mustReason("database.connect"))
	for _, want := range []string{`source=prefix`, `pattern="database"`, "http:", "grpc:"} {
		if !strings.Contains(exp, want) {
			t.Fatalf("Explain must include %q:\n%s", want, exp)
		}
	}
}

func TestGRPCName_And_Parse(t *testing.T) {
	if got := GRPCName(codes.DeadlineExceeded); got != "DEADLINE_EXCEEDED" {
		t.Fatalf("GRPCName = %q", got)
	}
	if got := GRPCName(codes.OK); got != "OK" {
		t.Fatalf("GRPCName = %q", got)
	}
	for in, want := range map[string]codes.Code{
		"NOT_FOUND":        codes.NotFound,
		"not-found":        codes.NotFound,
		"DeadlineExceeded": codes.DeadlineExceeded,
		"CANCELLED":        codes.Canceled,
		"14":               codes.Unavailable,
	} {
		got, err := ParseGRPCCode(in)
		if err != nil || got != want {
			t.Fatalf("ParseGRPCCode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseGRPCCode("TEAPOT"); err == nil {
		t.Fatalf("unknown names must fail")
	}
}

func TestConcurrency_MapperStatus(t *testing.T) {
	m, err := New(
		WithHTTPPrefix(code.Unavailable, "database", 502),
		WithHTTPOverride(code.Canceled, 408),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 2000; j++ {
				_ = m.Status(code.Unavailable, mustReason("database.connect"))
				_ = m.Status(code.Canceled, reason.Empty)
				_ = m.Status(code.Invalid, mustReason("image.color_allocate"))
			}
		}()
	}
	wg.Wait()
}

func mustReason(s string) reason.Reason {
	r, err := reason.Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

func BenchmarkMapperStatus_Default(b *testing.B) {
	m := MustNew()
	r := mustReason("filesystem.chmod")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = m.Status(code.NotFound, r)
	}
}

func BenchmarkMapperStatus_PrefixHit(b *testing.B) {
	m := MustNew(WithPrefix(code.Unavailable, "database", apis.Status{HTTP: 502, GRPC: codes.Unavailable}))
	r := mustReason("database.connect")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = m.Status(code.Unavailable, r)
	}
}

func BenchmarkMapperStatus_Override(b *testing.B) {
	m := MustNew(WithOverride(code.Unavailable, apis.Status{HTTP: 418, GRPC: codes.Aborted}))
	r := mustReason("database.connect")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = m.Status(code.Unavailable, r)
	}
}

func TestMapper_InterfaceSatisfaction(t *testing.T) {
	var _ apis.Mapper = (*mapper)(nil)
}
