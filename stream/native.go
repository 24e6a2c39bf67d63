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

package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"slices"
	"strings"
	"syscall"
	"time"

	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/code"
	"dirpx.dev/safecall/errno"
	"dirpx.dev/safecall/lasterr"
)

// Native layer. Every function returns the stream domain's sentinel and
// records the failure in the register of the Env running the call.

func report(reg *lasterr.Register, op string, err error) {
	ctx := lasterr.FromError(err)
	if ctx.Number != 0 {
		ctx.Message = fmt.Sprintf("%s(): %s", op, errno.Message(ctx.Number))
	} else {
		ctx.Message = fmt.Sprintf("%s(): %v", op, err)
	}
	reg.Report(ctx)
}

func reportNo(reg *lasterr.Register, op string, n syscall.Errno, detail string) {
	msg := fmt.Sprintf("%s(): %s", op, errno.Message(int(n)))
	if detail != "" {
		msg = fmt.Sprintf("%s(): %s", op, detail)
	}
	reg.Report(lasterr.Context{Number: int(n), Message: msg})
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout())
}

func (s *Stream) armRead() error {
	if s.conn == nil {
		return nil
	}
	switch {
	case !s.blocking:
		return s.conn.SetReadDeadline(time.Now().Add(nonBlockingWindow))
	case s.timeout > 0:
		return s.conn.SetReadDeadline(time.Now().Add(s.timeout))
	default:
		return s.conn.SetReadDeadline(time.Time{})
	}
}

func (s *Stream) armWrite() error {
	if s.conn == nil {
		return nil
	}
	if s.blocking && s.timeout > 0 {
		return s.conn.SetWriteDeadline(time.Now().Add(s.timeout))
	}
	return s.conn.SetWriteDeadline(time.Time{})
}

// read returns at most length bytes. A short read is a success. End of
// stream, and an empty non-blocking read, yield an empty non-nil slice;
// only failures yield nil.
func (s *Stream) read(length int) []byte {
	if s.closed {
		reportNo(s.reg(), "fread", syscall.EBADF, "")
		return nil
	}
	if length <= 0 {
		reportNo(s.reg(), "fread", syscall.EINVAL, "length must be greater than 0")
		return nil
	}
	if err := s.armRead(); err != nil {
		report(s.reg(), "fread", err)
		return nil
	}
	buf := make([]byte, length)
	n, err := s.r.Read(buf)
	if n > 0 {
		return buf[:n]
	}
	switch {
	case err == nil:
		return buf[:0]
	case errors.Is(err, io.EOF):
		s.eof = true
		return buf[:0]
	case !s.blocking && isTimeout(err):
		return buf[:0]
	}
	report(s.reg(), "fread", err)
	return nil
}

func (s *Stream) write(data []byte) int {
	if s.closed {
		reportNo(s.reg(), "fwrite", syscall.EBADF, "")
		return -1
	}
	if err := s.armWrite(); err != nil {
		report(s.reg(), "fwrite", err)
		return -1
	}
	n, err := s.w.Write(data)
	if err != nil && n == 0 {
		report(s.reg(), "fwrite", err)
		return -1
	}
	return n
}

// filtered reports whether any attached filter applies to direction m.
func (s *Stream) filtered(m FilterMode) bool {
	return slices.ContainsFunc(s.filters, func(f *Filter) bool { return f.mode&m != 0 })
}

// skip advances s by off bytes, seeking when the base supports it.
func (s *Stream) skip(off int64) error {
	if off == 0 {
		return nil
	}
	if sk, ok := s.base.(io.Seeker); ok && !s.filtered(FilterRead) {
		_, err := sk.Seek(off, io.SeekCurrent)
		return err
	}
	_, err := io.CopyN(io.Discard, s.r, off)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// copyTo copies from s into dst. tail holds the supplied optional
// arguments: maximum length (-1 for all), then offset.
func (s *Stream) copyTo(dst *Stream, tail ...int64) int64 {
	if s.closed || dst == nil || dst.closed {
		reportNo(s.reg(), "stream_copy_to_stream", syscall.EBADF, "")
		return -1
	}
	maxLen := int64(-1)
	if len(tail) > 0 {
		maxLen = tail[0]
	}
	if len(tail) > 1 {
		if tail[1] < 0 {
			reportNo(s.reg(), "stream_copy_to_stream", syscall.EINVAL, "offset must be non-negative")
			return -1
		}
		if err := s.skip(tail[1]); err != nil {
			report(s.reg(), "stream_copy_to_stream", err)
			return -1
		}
	}
	if maxLen < -1 {
		reportNo(s.reg(), "stream_copy_to_stream", syscall.EINVAL, "length must be -1 or non-negative")
		return -1
	}
	if err := s.armRead(); err != nil {
		report(s.reg(), "stream_copy_to_stream", err)
		return -1
	}
	if err := dst.armWrite(); err != nil {
		report(s.reg(), "stream_copy_to_stream", err)
		return -1
	}
	var (
		n   int64
		err error
	)
	if maxLen >= 0 {
		n, err = io.CopyN(dst.w, s.r, maxLen)
	} else {
		n, err = io.Copy(dst.w, s.r)
	}
	if errors.Is(err, io.EOF) {
		s.eof, err = true, nil
	}
	if err != nil {
		report(s.reg(), "stream_copy_to_stream", err)
		return -1
	}
	return n
}

// getContents reads the rest of the stream. tail: maximum length (-1 for
// all), then offset.
func (s *Stream) getContents(tail ...int64) []byte {
	if s.closed {
		reportNo(s.reg(), "stream_get_contents", syscall.EBADF, "")
		return nil
	}
	maxLen := int64(-1)
	if len(tail) > 0 {
		maxLen = tail[0]
	}
	if maxLen < -1 {
		reportNo(s.reg(), "stream_get_contents", syscall.EINVAL, "length must be -1 or non-negative")
		return nil
	}
	if len(tail) > 1 {
		if tail[1] < 0 {
			reportNo(s.reg(), "stream_get_contents", syscall.EINVAL, "offset must be non-negative")
			return nil
		}
		if err := s.skip(tail[1]); err != nil {
			report(s.reg(), "stream_get_contents", err)
			return nil
		}
	}
	if err := s.armRead(); err != nil {
		report(s.reg(), "stream_get_contents", err)
		return nil
	}
	r := s.r
	if maxLen >= 0 {
		r = io.LimitReader(s.r, maxLen)
	}
	data, err := io.ReadAll(r)
	if err != nil && !(!s.blocking && isTimeout(err)) {
		report(s.reg(), "stream_get_contents", err)
		return nil
	}
	if maxLen < 0 || int64(len(data)) < maxLen {
		s.eof = true
	}
	if data == nil {
		data = []byte{}
	}
	return data
}

func (s *Stream) appendFilter(name string, mode call.Opt[FilterMode]) *Filter {
	if s.closed {
		reportNo(s.reg(), "stream_filter_append", syscall.EBADF, "")
		return nil
	}
	sp, ok := registry[name]
	if !ok {
		reportNo(s.reg(), "stream_filter_append", syscall.EINVAL,
			fmt.Sprintf("Unable to locate filter %q", name))
		return nil
	}
	m := mode.Or(sp.supports())
	if m == 0 || m&^FilterAll != 0 || m&^sp.supports() != 0 {
		reportNo(s.reg(), "stream_filter_append", syscall.EINVAL,
			fmt.Sprintf("Filter %q does not support mode %d", name, m))
		return nil
	}
	f := &Filter{s: s, name: name, mode: m}
	s.filters = append(s.filters, f)
	s.attach(f, sp)
	return f
}

func (s *Stream) removeFilter(f *Filter) bool {
	if f == nil || f.s != s || f.removed {
		reportNo(s.reg(), "stream_filter_remove", syscall.EINVAL, "Invalid filter resource")
		return false
	}
	f.removed = true
	if err := s.detach(f); err != nil {
		report(s.reg(), "stream_filter_remove", err)
		return false
	}
	return true
}

func (s *Stream) setBlocking(on bool) bool {
	if s.closed {
		reportNo(s.reg(), "stream_set_blocking", syscall.EBADF, "")
		return false
	}
	if s.conn == nil {
		reportNo(s.reg(), "stream_set_blocking", syscall.ENOTSUP, "")
		return false
	}
	s.blocking = on
	return true
}

func (s *Stream) setTimeout(seconds int, micro call.Opt[int]) bool {
	if s.closed {
		reportNo(s.reg(), "stream_set_timeout", syscall.EBADF, "")
		return false
	}
	if s.conn == nil {
		reportNo(s.reg(), "stream_set_timeout", syscall.ENOTSUP, "")
		return false
	}
	us := micro.Or(0)
	if seconds < 0 || us < 0 {
		reportNo(s.reg(), "stream_set_timeout", syscall.EINVAL, "")
		return false
	}
	s.timeout = time.Duration(seconds)*time.Second + time.Duration(us)*time.Microsecond
	return true
}

func (s *Stream) close() bool {
	if s.closed {
		reportNo(s.reg(), "fclose", syscall.EBADF, "")
		return false
	}
	s.closed = true
	ferr := s.flush()
	s.filters = nil
	if err := errors.Join(ferr, s.base.Close()); err != nil {
		report(s.reg(), "fclose", err)
		return false
	}
	return true
}

// parseAddress splits "scheme://target". A bare "host:port" is tcp.
func parseAddress(address string) (network, addr string, ok bool) {
	scheme, rest, found := strings.Cut(address, "://")
	if !found {
		return "tcp", address, true
	}
	switch scheme {
	case "tcp", "tcp4", "tcp6", "udp", "udp4", "udp6", "unix":
		return scheme, rest, true
	}
	return "", "", false
}

// sockErr records err and mirrors it into the caller's out-parameters.
func sockErr(reg *lasterr.Register, op string, err error, n syscall.Errno, errnoOut *int, errstrOut *string) {
	ctx := lasterr.Context{Number: int(n), Message: errno.Message(int(n))}
	if err != nil {
		ctx = lasterr.FromError(err)
		ctx.Message = err.Error()
		var dns *net.DNSError
		if errors.As(err, &dns) {
			ctx.Message = "getaddrinfo for " + dns.Name + " failed: " + dns.Err
			if dns.IsNotFound {
				ctx.Code = code.NotFound
			} else {
				ctx.Code = code.Unavailable
			}
		}
	}
	if errnoOut != nil {
		*errnoOut = ctx.Number
	}
	if errstrOut != nil {
		*errstrOut = ctx.Message
	}
	ctx.Message = fmt.Sprintf("%s(): Unable to connect (%s)", op, ctx.Message)
	reg.Report(ctx)
}

func clearOut(errnoOut *int, errstrOut *string) {
	if errnoOut != nil {
		*errnoOut = 0
	}
	if errstrOut != nil {
		*errstrOut = ""
	}
}

func socketClient(ctx context.Context, o options, address string, errnoOut *int, errstrOut *string, timeout call.Opt[time.Duration]) *Stream {
	reg := o.env.Register()
	clearOut(errnoOut, errstrOut)
	network, addr, ok := parseAddress(address)
	if !ok {
		sockErr(reg, "stream_socket_client", nil, syscall.EPROTONOSUPPORT, errnoOut, errstrOut)
		return nil
	}
	d := net.Dialer{Timeout: timeout.Or(defaultTimeout)}
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		sockErr(reg, "stream_socket_client", err, 0, errnoOut, errstrOut)
		return nil
	}
	return newStream(conn, o.child())
}

func socketServer(o options, address string, errnoOut *int, errstrOut *string) *Server {
	reg := o.env.Register()
	clearOut(errnoOut, errstrOut)
	network, addr, ok := parseAddress(address)
	if !ok || strings.HasPrefix(network, "udp") {
		sockErr(reg, "stream_socket_server", nil, syscall.EPROTONOSUPPORT, errnoOut, errstrOut)
		return nil
	}
	ln, err := net.Listen(network, addr)
	if err != nil {
		sockErr(reg, "stream_socket_server", err, 0, errnoOut, errstrOut)
		return nil
	}
	return &Server{ln: ln, o: o}
}

func (srv *Server) accept(timeout call.Opt[time.Duration]) *Stream {
	reg := srv.o.env.Register()
	if srv.closed {
		reportNo(reg, "stream_socket_accept", syscall.EBADF, "")
		return nil
	}
	if dl, ok := srv.ln.(interface{ SetDeadline(time.Time) error }); ok {
		if err := dl.SetDeadline(time.Now().Add(timeout.Or(defaultTimeout))); err != nil {
			report(reg, "stream_socket_accept", err)
			return nil
		}
	}
	conn, err := srv.ln.Accept()
	if err != nil {
		if isTimeout(err) {
			reportNo(reg, "stream_socket_accept", syscall.ETIMEDOUT, "Accept timed out")
			return nil
		}
		report(reg, "stream_socket_accept", err)
		return nil
	}
	return newStream(conn, srv.o.child())
}

func (srv *Server) close() bool {
	reg := srv.o.env.Register()
	if srv.closed {
		reportNo(reg, "fclose", syscall.EBADF, "")
		return false
	}
	srv.closed = true
	if err := srv.ln.Close(); err != nil {
		report(reg, "fclose", err)
		return false
	}
	return true
}
