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

package curl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/lasterr"
)

var errTooManyRedirects = errors.New("too many redirects")

func (h *Handle) fail(n int, msg string, cause error) {
	h.cell.Report(lasterr.Context{
		Message: msg,
		Number:  n,
		Code:    Classify(n),
		Cause:   cause,
	})
}

func (h *Handle) usable() bool {
	if h.closed {
		h.cell.Report(lasterr.Context{Message: "curl handle is closed", Code: code.BadHandle})
		return false
	}
	return true
}

func checkURL(raw string) (*url.URL, int, string) {
	u, err := url.Parse(raw)
	if err != nil || raw == "" || u.Host == "" {
		return nil, EURLMalformat, Strerror(EURLMalformat)
	}
	switch u.Scheme {
	case "http", "https":
		return u, EOK, ""
	}
	return nil, EUnsupportedProtocol, fmt.Sprintf("Protocol %q not supported", u.Scheme)
}

func (h *Handle) init(reg *lasterr.Register, rawURL string, hasURL bool) *Handle {
	if hasURL {
		if strings.ContainsRune(rawURL, 0) {
			reg.Report(lasterr.Context{
				Message: Strerror(EURLMalformat),
				Number:  EURLMalformat,
				Code:    Classify(EURLMalformat),
			})
			return nil
		}
		h.set.url = rawURL
	}
	return h
}

func (h *Handle) setopt(opt Option, value any) bool {
	if !h.usable() {
		return false
	}
	bad := func() bool {
		h.fail(EBadFunctionArgument, fmt.Sprintf("option %d: unexpected value of type %T", opt, value), nil)
		return false
	}
	switch opt {
	case OptURL:
		s, ok := value.(string)
		if !ok {
			return bad()
		}
		h.set.url = s
	case OptCustomRequest:
		s, ok := value.(string)
		if !ok {
			return bad()
		}
		h.set.method = strings.ToUpper(s)
	case OptUserAgent:
		s, ok := value.(string)
		if !ok {
			return bad()
		}
		h.set.userAgent = s
	case OptHTTPHeader:
		lines, ok := value.([]string)
		if !ok {
			return bad()
		}
		hdr := make(http.Header, len(lines))
		for _, line := range lines {
			name, val, found := strings.Cut(line, ":")
			if !found || strings.TrimSpace(name) == "" {
				h.fail(EBadFunctionArgument, fmt.Sprintf("malformed header %q", line), nil)
				return false
			}
			hdr.Add(strings.TrimSpace(name), strings.TrimSpace(val))
		}
		h.set.header = hdr
	case OptPostFields:
		switch v := value.(type) {
		case string:
			h.set.body = []byte(v)
		case []byte:
			h.set.body = bytes.Clone(v)
		default:
			return bad()
		}
		h.set.hasBody = true
	case OptTimeout:
		switch v := value.(type) {
		case time.Duration:
			h.set.timeout = v
		case int:
			h.set.timeout = time.Duration(v) * time.Second
		default:
			return bad()
		}
		if h.set.timeout < 0 {
			return bad()
		}
	case OptFollowLocation:
		b, ok := value.(bool)
		if !ok {
			return bad()
		}
		h.set.follow = b
	case OptFailOnError:
		b, ok := value.(bool)
		if !ok {
			return bad()
		}
		h.set.failOnError = b
	case OptMaxRedirs:
		n, ok := value.(int)
		if !ok || n < 0 {
			return bad()
		}
		h.set.maxRedirs = n
	default:
		h.fail(EUnknownOption, fmt.Sprintf("unknown option %d", opt), nil)
		return false
	}
	return true
}

func (h *Handle) exec(ctx context.Context) []byte {
	if !h.usable() {
		return nil
	}
	h.info = Info{}
	set := h.set
	u, n, msg := checkURL(set.url)
	if n != EOK {
		h.fail(n, msg, nil)
		return nil
	}

	if set.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, set.timeout)
		defer cancel()
	}

	method := set.method
	var body io.Reader
	if set.hasBody {
		body = bytes.NewReader(set.body)
		if method == "" {
			method = http.MethodPost
		}
	}
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		h.fail(EBadFunctionArgument, err.Error(), err)
		return nil
	}
	req.Header = set.header.Clone()
	if set.userAgent != "" {
		req.Header.Set("User-Agent", set.userAgent)
	}

	redirects := 0
	client := *h.client
	client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if !set.follow {
			return http.ErrUseLastResponse
		}
		if len(via) > set.maxRedirs {
			return errTooManyRedirects
		}
		redirects = len(via)
		return nil
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		h.failTransfer(ctx, u, set.timeout, start, err)
		return nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		h.failTransfer(ctx, u, set.timeout, start, err)
		return nil
	}
	h.info = Info{
		EffectiveURL:  resp.Request.URL.String(),
		ResponseCode:  resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		TotalTime:     time.Since(start),
		RedirectCount: redirects,
		SizeDownload:  int64(len(data)),
	}
	if set.failOnError && resp.StatusCode >= 400 {
		h.fail(EHTTPReturnedError, fmt.Sprintf("The requested URL returned error: %d", resp.StatusCode), nil)
		return nil
	}
	if data == nil {
		data = []byte{}
	}
	return data
}

func (h *Handle) failTransfer(ctx context.Context, u *url.URL, timeout time.Duration, start time.Time, err error) {
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, errTooManyRedirects):
		h.fail(ETooManyRedirects, fmt.Sprintf("Maximum (%d) redirects followed", h.set.maxRedirs), err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded) && timeout > 0:
		h.fail(EOperationTimedout, fmt.Sprintf("Operation timed out after %d milliseconds", time.Since(start).Milliseconds()), err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		h.fail(EAbortedByCallback, "Operation was aborted", err)
	case errors.As(err, &dnsErr):
		h.fail(ECouldntResolveHost, "Could not resolve host: "+u.Hostname(), err)
	case errors.Is(err, syscall.ECONNREFUSED):
		h.fail(ECouldntConnect, fmt.Sprintf("Failed to connect to %s port %s: Connection refused", u.Hostname(), port(u)), err)
	default:
		h.fail(ERecvError, err.Error(), err)
	}
}

func port(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	if u.Scheme == "https" {
		return "443"
	}
	return "80"
}

func (h *Handle) getinfo(key InfoKey) any {
	if !h.usable() {
		return nil
	}
	switch key {
	case InfoEffectiveURL:
		if h.info.EffectiveURL == "" {
			return h.set.url
		}
		return h.info.EffectiveURL
	case InfoResponseCode:
		return h.info.ResponseCode
	case InfoContentType:
		return h.info.ContentType
	case InfoTotalTime:
		return h.info.TotalTime
	case InfoRedirectCount:
		return h.info.RedirectCount
	case InfoSizeDownload:
		return h.info.SizeDownload
	}
	h.fail(EBadFunctionArgument, fmt.Sprintf("unknown info key %d", key), nil)
	return nil
}

func (h *Handle) reset() {
	h.set = h.defaults.settings()
	h.info = Info{}
}

func (h *Handle) close() bool {
	if !h.usable() {
		return false
	}
	h.closed = true
	h.client.CloseIdleConnections()
	return true
}
