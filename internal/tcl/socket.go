// internal/tcl/socket.go

package tcl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	apperr "ixexplorer/internal/error"
)

const (
	// DefaultSocketPort is the conventional TclServer listener port.
	DefaultSocketPort = 4555

	readChunkSize = 1 << 12
	pollInterval  = 10 * time.Millisecond
)

// Socket is the raw TCP transport to a TclServer listener.
type Socket struct {
	addr string
	mu   sync.Mutex
	conn net.Conn
}

// DialSocket opens a TCP connection to host:port.
func DialSocket(ctx context.Context, host string, port int, timeout time.Duration) (*Socket, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, apperr.New(apperr.ConnectionError, "connect to "+addr+" failed", err)
	}
	return &Socket{addr: addr, conn: conn}, nil
}

// Exchange sends one command and decodes its framed reply.
func (s *Socket) Exchange(command string, timeout time.Duration) (string, string, error) {
	raw, err := s.roundTrip(command, timeout)
	if err != nil {
		return "", "", err
	}
	reply, err := ParseReply(command, raw)
	if err != nil {
		return reply.Result, "", err
	}
	return reply.Result, reply.Output, nil
}

func (s *Socket) roundTrip(command string, timeout time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return "", apperr.Newf(apperr.ConnectionError, "socket to %s is closed", s.addr)
	}

	deadline := time.Now().Add(timeout)
	_ = s.conn.SetWriteDeadline(deadline)
	if _, err := s.conn.Write([]byte(command + terminator)); err != nil {
		return "", apperr.New(apperr.ConnectionError, "send to "+s.addr+" failed", err)
	}

	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(pollInterval))
		n, err := s.conn.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			if bytes.HasSuffix(buf.Bytes(), []byte(terminator)) {
				return buf.String(), nil
			}
		}
		if err != nil {
			var ne net.Error
			switch {
			case errors.As(err, &ne) && ne.Timeout():
			case errors.Is(err, io.EOF):
				return "", apperr.Newf(apperr.ConnectionError, "connection to %s closed by server", s.addr)
			default:
				return "", apperr.New(apperr.ConnectionError, "receive from "+s.addr+" failed", err)
			}
		}
		// The bound holds even while the server keeps sending partial data.
		if time.Now().After(deadline) {
			return "", apperr.Newf(apperr.ConnectionError, "no response from %s to %q within %s", s.addr, command, timeout)
		}
	}
}

// Close releases the connection. Calling it more than once is harmless.
func (s *Socket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
