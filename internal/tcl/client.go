// internal/tcl/client.go

package tcl

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	apperr "ixexplorer/internal/error"
	"ixexplorer/internal/ssh"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultTimeout bounds the wait for a complete reply.
	DefaultTimeout = 16 * time.Second
	// DefaultSlowTimeout is used for commands known to block for long,
	// such as waiting for transmit to finish.
	DefaultSlowTimeout = 10 * time.Minute
	// DefaultHalScript is sourced by the shell transport before the HAL
	// package can be required.
	DefaultHalScript = "/opt/ixia/ixos/current/IxiaWish.tcl"

	errorMarker = "Error:"
)

// Transport sends one command and returns its result and auxiliary output.
type Transport interface {
	Exchange(command string, timeout time.Duration) (result, output string, err error)
	Close() error
}

// State is the connection state of a Client.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ServerKind tells which transport a Client speaks.
type ServerKind int

const (
	// ServerWindows is a TclServer socket listener.
	ServerWindows ServerKind = iota
	// ServerLinux is an interactive Tcl shell reached over SSH.
	ServerLinux
)

func (k ServerKind) String() string {
	if k == ServerLinux {
		return "ssh"
	}
	return "socket"
}

// Client owns the single connection to a remote Tcl interpreter.
type Client struct {
	host        string
	port        int
	user        string
	rsaID       string
	passphrase  []byte
	knownHosts  string
	halScript   string
	prompt      string
	timeout     time.Duration
	slowTimeout time.Duration
	keepAlive   time.Duration

	mu        sync.Mutex
	state     State
	transport Transport
	injected  bool
	shell     *ssh.Shell
	script    io.Writer
	log       *log.Entry
}

// Option configures a Client.
type Option func(c *Client)

// WithTimeout sets the per-command reply timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithSlowTimeout sets the timeout used by CallSlow.
func WithSlowTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.slowTimeout = d
	}
}

// WithRSAKey sets the identity used by the shell transport.
func WithRSAKey(path string, passphrase []byte) Option {
	return func(c *Client) {
		c.rsaID = path
		c.passphrase = passphrase
	}
}

// WithUser overrides the shell transport login.
func WithUser(user string) Option {
	return func(c *Client) {
		if user != "" {
			c.user = user
		}
	}
}

// WithKnownHosts enables host key verification for the shell transport.
func WithKnownHosts(path string) Option {
	return func(c *Client) {
		c.knownHosts = path
	}
}

// WithHalScript overrides the bootstrap script sourced over SSH.
func WithHalScript(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.halScript = path
		}
	}
}

// WithPrompt overrides the shell prompt that terminates replies.
func WithPrompt(prompt string) Option {
	return func(c *Client) {
		if prompt != "" {
			c.prompt = prompt
		}
	}
}

// WithKeepAlive enables SSH keepalives at the given interval.
func WithKeepAlive(d time.Duration) Option {
	return func(c *Client) {
		c.keepAlive = d
	}
}

// WithScriptLog copies every command sent to w, one per line, so the
// session can be replayed in a Tcl shell.
func WithScriptLog(w io.Writer) Option {
	return func(c *Client) {
		c.script = w
	}
}

// WithLogger sets the base logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.log = log.NewEntry(l).WithFields(c.log.Data)
	}
}

// WithTransport makes Connect use t instead of dialing.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
		c.injected = true
	}
}

// NewClient returns a disconnected Client for host:port. Port 8022 selects
// the SSH shell transport, any other port the socket transport.
func NewClient(host string, port int, opts ...Option) *Client {
	if port == 0 {
		port = DefaultSocketPort
	}
	c := &Client{
		host:        host,
		port:        port,
		user:        ssh.DefaultUser,
		halScript:   DefaultHalScript,
		prompt:      ssh.DefaultPrompt,
		timeout:     DefaultTimeout,
		slowTimeout: DefaultSlowTimeout,
	}
	c.log = log.WithFields(log.Fields{
		"host":    host,
		"port":    port,
		"session": uuid.New().String(),
	})
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.WithField("transport", c.Kind().String())
	return c
}

// Kind returns the transport kind selected by the port.
func (c *Client) Kind() ServerKind {
	if c.port == ssh.DefaultPort {
		return ServerLinux
	}
	return ServerWindows
}

// Host returns the server address.
func (c *Client) Host() string {
	return c.host
}

// State returns the connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Shell returns the SSH shell when connected over SSH, nil otherwise.
func (c *Client) Shell() *ssh.Shell {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shell
}

// Connect opens the transport and runs the bootstrap sequence. Any failure
// leaves the client disconnected.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateConnected:
		c.mu.Unlock()
		return nil
	case StateConnecting:
		c.mu.Unlock()
		return apperr.Newf(apperr.ConnectionError, "connection to %s:%d already in progress", c.host, c.port)
	}
	c.state = StateConnecting
	c.mu.Unlock()

	c.log.Infof("opening connection to %s:%d", c.host, c.port)
	t, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}

	c.mu.Lock()
	c.transport = t
	c.state = StateConnected
	c.mu.Unlock()

	if err := c.bootstrap(); err != nil {
		c.Close()
		return apperr.New(apperr.ConnectionError, "bootstrap failed", err)
	}
	return nil
}

func (c *Client) dial(ctx context.Context) (Transport, error) {
	if c.injected {
		return c.transport, nil
	}
	if c.Kind() == ServerWindows {
		return DialSocket(ctx, c.host, c.port, c.timeout)
	}
	shell, err := ssh.DialShell(ctx, ssh.Config{
		Host:           c.host,
		Port:           c.port,
		User:           c.user,
		KeyPath:        c.rsaID,
		Passphrase:     c.passphrase,
		KnownHostsPath: c.knownHosts,
		Prompt:         c.prompt,
		Timeout:        c.timeout,
		KeepAlive:      c.keepAlive,
	})
	if err != nil {
		return nil, err
	}
	if err := shell.SelfTest(c.timeout); err != nil {
		shell.Close()
		return nil, err
	}
	c.mu.Lock()
	c.shell = shell
	c.mu.Unlock()
	return shell, nil
}

func (c *Client) bootstrap() error {
	if c.Kind() == ServerLinux {
		if _, err := c.Call("source %s", c.halScript); err != nil {
			return err
		}
	}
	rc, err := c.Call("package req IxTclHal")
	if err != nil {
		return err
	}
	if _, err := c.Call("enableEvents true"); err != nil {
		return err
	}
	c.log.Infof("IxTclHal %s loaded", rc)
	return nil
}

// Call formats the command and returns its result. When no arguments are
// given the format string is sent verbatim.
func (c *Client) Call(format string, args ...any) (string, error) {
	return c.call(c.timeout, format, args...)
}

// CallSlow is Call with the slow command timeout.
func (c *Client) CallSlow(format string, args ...any) (string, error) {
	return c.call(c.slowTimeout, format, args...)
}

// CallRC is Call for commands returning a numeric return code, where
// anything but "0" is a failure.
func (c *Client) CallRC(format string, args ...any) error {
	command := format
	if len(args) > 0 {
		command = fmt.Sprintf(format, args...)
	}
	rc, err := c.call(c.timeout, command)
	if err != nil {
		return err
	}
	if strings.TrimSpace(rc) != "0" {
		return &apperr.TclError{Command: command, Result: rc}
	}
	return nil
}

func (c *Client) call(timeout time.Duration, format string, args ...any) (string, error) {
	command := format
	if len(args) > 0 {
		command = fmt.Sprintf(format, args...)
	}

	c.mu.Lock()
	t := c.transport
	connected := c.state == StateConnected
	c.mu.Unlock()
	if !connected || t == nil {
		return "", apperr.Newf(apperr.ConnectionError, "client is not connected")
	}

	c.log.Debugf("sending %s", command)
	if c.script != nil {
		fmt.Fprintln(c.script, command)
	}
	result, output, err := t.Exchange(command, timeout)
	if err != nil {
		c.log.WithError(err).Debugf("%s failed", command)
		return result, err
	}
	c.log.Debugf("result=%q output=%q", result, output)
	if strings.Contains(output, errorMarker) {
		return result, &apperr.TclError{Command: command, Result: output}
	}
	return result, nil
}

// HalVersion returns the major and minor IxTclHal version.
func (c *Client) HalVersion() (string, string, error) {
	rsp, err := c.Call("version cget -ixTclHALVersion")
	if err != nil {
		return "", "", err
	}
	parts := strings.Split(strings.TrimSpace(rsp), ".")
	if len(parts) < 2 {
		return "", "", apperr.Newf(apperr.FramingError, "unexpected HAL version %q", rsp)
	}
	return parts[0], parts[1], nil
}

// Close releases the transport. It is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	t := c.transport
	wasConnected := c.state != StateDisconnected
	// A closed injected transport is never reused; the next Connect dials.
	c.transport = nil
	c.injected = false
	c.shell = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if !wasConnected || t == nil {
		return nil
	}
	c.log.Info("closing connection")
	return t.Close()
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}
