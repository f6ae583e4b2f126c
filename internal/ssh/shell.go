// internal/ssh/shell.go

package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	apperr "ixexplorer/internal/error"

	"golang.org/x/crypto/ssh"
)

const (
	// DefaultPort is the port the Linux hosted Tcl server listens on. It also
	// selects the shell transport.
	DefaultPort = 8022
	// DefaultUser is the login of the vendor's Tcl shell account.
	DefaultUser = "ixtcl"
	// DefaultPrompt terminates every reply of the interactive Tcl shell.
	DefaultPrompt = "\r\n% % "

	invalidMarker = "Invalid"
	selfTestWord  = "ixexplorer-selftest"
)

// SessionState is the state of the shell session.
type SessionState int

const (
	StateDisconnected SessionState = iota
	StateConnecting
	StateConnected
	StateError
)

// Config holds what is needed to open a shell on the Tcl server host.
type Config struct {
	Host           string
	Port           int
	User           string
	KeyPath        string
	Passphrase     []byte
	KnownHostsPath string
	Prompt         string
	Timeout        time.Duration
	KeepAlive      time.Duration
}

func (c *Config) addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Shell is an interactive Tcl shell reached over SSH.
type Shell struct {
	client    *ssh.Client
	session   *ssh.Session
	stdin     io.WriteCloser
	output    chan []byte
	prompt    string
	keepAlive time.Duration

	ioMutex    sync.Mutex
	pending    bytes.Buffer
	state      SessionState
	lastError  error
	stopChan   chan struct{}
	stateMutex sync.RWMutex
}

// DialShell connects, authenticates with the configured RSA key and starts
// an interactive shell.
func DialShell(ctx context.Context, cfg Config) (*Shell, error) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.User == "" {
		cfg.User = DefaultUser
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}

	auth, err := keyAuth(cfg.KeyPath, cfg.Passphrase)
	if err != nil {
		return nil, err
	}
	hostKeyCallback, err := HostKeyCallback(cfg.KnownHostsPath)
	if err != nil {
		return nil, err
	}
	clientConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: hostKeyCallback,
		Timeout:         cfg.Timeout,
	}

	dialer := net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", cfg.addr())
	if err != nil {
		return nil, apperr.New(apperr.ConnectionError, "failed to dial "+cfg.addr(), err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, cfg.addr(), clientConfig)
	if err != nil {
		conn.Close()
		return nil, apperr.New(apperr.ConnectionError, "ssh handshake with "+cfg.addr()+" failed", err)
	}
	client := ssh.NewClient(c, chans, reqs)

	s, err := newShell(client, cfg)
	if err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

func newShell(client *ssh.Client, cfg Config) (*Shell, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, apperr.New(apperr.ConnectionError, "failed to create session", err)
	}

	modes := ssh.TerminalModes{
		ssh.ECHO:          1,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("dumb", 40, 512, modes); err != nil {
		session.Close()
		return nil, apperr.New(apperr.ConnectionError, "failed to request pty", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, apperr.New(apperr.ConnectionError, "failed to open stdin", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, apperr.New(apperr.ConnectionError, "failed to open stdout", err)
	}
	if err := session.Shell(); err != nil {
		session.Close()
		return nil, apperr.New(apperr.ConnectionError, "failed to start shell", err)
	}

	s := &Shell{
		client:    client,
		session:   session,
		stdin:     stdin,
		output:    make(chan []byte, 64),
		prompt:    cfg.Prompt,
		keepAlive: cfg.KeepAlive,
		state:     StateConnected,
		stopChan:  make(chan struct{}),
	}
	go s.readLoop(stdout)
	if s.keepAlive > 0 {
		go s.keepAliveLoop()
	}
	return s, nil
}

// readLoop forwards shell output to the output channel until EOF.
func (s *Shell) readLoop(r io.Reader) {
	defer close(s.output)
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case s.output <- chunk:
			case <-s.stopChan:
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.setError(fmt.Errorf("read from shell: %w", err))
			}
			return
		}
	}
}

// Exchange sends one command line and returns its output with the echoed
// command and the trailing prompt removed. Output containing "Invalid" is
// reported as *apperr.TclError.
func (s *Shell) Exchange(command string, timeout time.Duration) (string, string, error) {
	s.ioMutex.Lock()
	defer s.ioMutex.Unlock()

	s.discardPending()
	if err := s.write(command); err != nil {
		return "", "", err
	}
	raw, found, err := s.collect(timeout)
	if err != nil {
		return "", "", err
	}
	if !found {
		return "", "", apperr.Newf(apperr.ConnectionError, "no prompt after %q within %s", command, timeout)
	}
	result := cleanReply(command, raw, s.prompt)
	if strings.Contains(result, invalidMarker) {
		return result, "", &apperr.TclError{Command: command, Result: result}
	}
	return result, "", nil
}

// SelfTest checks that the configured prompt terminates replies on this
// server build.
func (s *Shell) SelfTest(timeout time.Duration) error {
	s.ioMutex.Lock()
	defer s.ioMutex.Unlock()

	s.discardPending()
	command := "puts " + selfTestWord
	if err := s.write(command); err != nil {
		return err
	}
	raw, found, err := s.collect(timeout)
	if err != nil {
		return err
	}
	if !found {
		return apperr.Newf(apperr.FramingError, "prompt %q not seen, output ended with %q", s.prompt, tail(raw, 32))
	}
	if got := cleanReply(command, raw, s.prompt); !strings.Contains(got, selfTestWord) {
		return apperr.Newf(apperr.FramingError, "self test reply %q does not contain %q", got, selfTestWord)
	}
	return nil
}

func (s *Shell) write(command string) error {
	if s.GetState() != StateConnected {
		return apperr.Newf(apperr.ConnectionError, "shell is not connected")
	}
	if _, err := s.stdin.Write([]byte(command + "\r\n")); err != nil {
		s.setError(err)
		return apperr.New(apperr.ConnectionError, "failed to send command", err)
	}
	return nil
}

// collect accumulates output until it ends with the prompt or the timeout
// expires. found is false on timeout.
func (s *Shell) collect(timeout time.Duration) (string, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case chunk, ok := <-s.output:
			if !ok {
				return s.pending.String(), false, apperr.Newf(apperr.ConnectionError, "shell closed by server")
			}
			s.pending.Write(chunk)
			if strings.HasSuffix(s.pending.String(), s.prompt) {
				out := s.pending.String()
				s.pending.Reset()
				return out, true, nil
			}
		case <-timer.C:
			out := s.pending.String()
			s.pending.Reset()
			return out, false, nil
		case <-s.stopChan:
			return "", false, apperr.Newf(apperr.ConnectionError, "shell closed")
		}
	}
}

// discardPending drops output that arrived outside of an exchange, such as
// the login banner.
func (s *Shell) discardPending() {
	s.pending.Reset()
	for {
		select {
		case _, ok := <-s.output:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

// cleanReply strips the prompt, the echoed command line and prompt remnants.
func cleanReply(command, raw, prompt string) string {
	out := strings.TrimSuffix(raw, prompt)
	if idx := strings.Index(out, command); idx >= 0 && strings.TrimSpace(out[:idx]) == "" {
		out = out[idx+len(command):]
	}
	out = strings.TrimLeft(out, "\r\n")
	for {
		trimmed := strings.TrimRight(out, "\r\n")
		idx := strings.LastIndexAny(trimmed, "\r\n")
		if !isPromptRemnant(trimmed[idx+1:], prompt) {
			return trimmed
		}
		out = trimmed[:idx+1]
	}
}

// isPromptRemnant reports whether a line holds nothing but prompt text:
// the configured prompt or "% " fragments.
func isPromptRemnant(line, prompt string) bool {
	if line == "" {
		return false
	}
	if p := strings.TrimLeft(prompt, "\r\n"); p != "" && line == p {
		return true
	}
	return strings.Contains(line, "% ") && strings.Trim(line, "% ") == ""
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// keepAliveLoop sends keepalive requests while the shell is open.
func (s *Shell) keepAliveLoop() {
	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _, err := s.client.SendRequest("keepalive@openssh.com", true, nil)
			if err != nil {
				s.setError(fmt.Errorf("keepalive failed: %w", err))
				s.Close()
				return
			}
		case <-s.stopChan:
			return
		}
	}
}

// Client returns the underlying SSH client, for file transfers.
func (s *Shell) Client() *ssh.Client {
	return s.client
}

// Close closes the shell and the SSH connection. It is idempotent.
func (s *Shell) Close() error {
	s.stateMutex.Lock()
	select {
	case <-s.stopChan:
		s.stateMutex.Unlock()
		return nil
	default:
		close(s.stopChan)
	}
	s.stateMutex.Unlock()

	var errs []string
	if s.session != nil {
		if err := s.session.Close(); err != nil && !errors.Is(err, io.EOF) {
			errs = append(errs, fmt.Sprintf("session close error: %v", err))
		}
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			errs = append(errs, fmt.Sprintf("client close error: %v", err))
		}
	}

	s.setState(StateDisconnected)

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (s *Shell) setState(state SessionState) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()
	s.state = state
}

func (s *Shell) setError(err error) {
	s.stateMutex.Lock()
	defer s.stateMutex.Unlock()
	s.lastError = err
	s.state = StateError
}

// GetState returns the current session state.
func (s *Shell) GetState() SessionState {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.state
}

// GetLastError returns the last asynchronous error, if any.
func (s *Shell) GetLastError() error {
	s.stateMutex.RLock()
	defer s.stateMutex.RUnlock()
	return s.lastError
}
