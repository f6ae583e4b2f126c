// internal/ixe/app.go
//
// Package ixe models the IxExplorer object tree (session, chassis, cards,
// ports, streams and statistics) on top of the ixapi proxy layer.

package ixe

import (
	"context"
	"time"

	apperr "ixexplorer/internal/error"
	"ixexplorer/internal/ixapi"
	"ixexplorer/internal/ssh"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultSettleTime is waited after traffic start and stop so the
	// hardware reaches a steady state.
	DefaultSettleTime = 2 * time.Second
	// DefaultUploadDir receives configuration files on Linux servers.
	DefaultUploadDir = "/tmp/ixexplorer"
)

// Client is the connection the object tree talks through.
type Client interface {
	ixapi.Caller
	CallSlow(format string, args ...any) (string, error)
	Connect(ctx context.Context) error
	Close() error
	Host() string
}

// shellClient is implemented by clients that may run over SSH.
type shellClient interface {
	Shell() *ssh.Shell
}

// FileTransfer moves configuration files to and from a Linux server.
type FileTransfer interface {
	Upload(localPath, remotePath string) (int64, error)
	Download(ctx context.Context, remotePath, localPath string) error
}

// App is the root of one IxExplorer connection.
type App struct {
	client    Client
	api       *ixapi.Session
	Session   *Session
	settle    time.Duration
	uploadDir string
	sleep     func(time.Duration)
	transfer  FileTransfer
	log       *log.Entry
}

// Option configures an App.
type Option func(a *App)

// WithSettleTime overrides DefaultSettleTime. Zero disables the wait.
func WithSettleTime(d time.Duration) Option {
	return func(a *App) {
		a.settle = d
	}
}

// WithUploadDir overrides DefaultUploadDir.
func WithUploadDir(dir string) Option {
	return func(a *App) {
		if dir != "" {
			a.uploadDir = dir
		}
	}
}

// WithFileTransfer sets the transfer used for configuration files, which
// marks the server as a Linux server. By default the SSH shell's connection
// is used when there is one.
func WithFileTransfer(t FileTransfer) Option {
	return func(a *App) {
		a.transfer = t
	}
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(a *App) {
		a.log = log.NewEntry(l)
	}
}

// New returns an App for client. Nothing is sent until Connect.
func New(client Client, opts ...Option) *App {
	a := &App{
		client:    client,
		api:       ixapi.NewSession(client),
		settle:    DefaultSettleTime,
		uploadDir: DefaultUploadDir,
		sleep:     time.Sleep,
		log:       log.NewEntry(log.StandardLogger()),
	}
	for _, o := range opts {
		o(a)
	}
	a.log = a.log.WithField("host", client.Host())
	a.Session = newSession(a)
	return a
}

// API returns the proxy session shared by every object of the tree.
func (a *App) API() *ixapi.Session {
	return a.api
}

// Connect opens the connection, logs in as user and adds the server host
// as chassis 1.
func (a *App) Connect(ctx context.Context, user string) (*Chassis, error) {
	if err := a.client.Connect(ctx); err != nil {
		return nil, err
	}
	if err := a.Session.Login(user); err != nil {
		a.client.Close()
		return nil, err
	}
	chassis, err := a.AddChassis(a.client.Host(), 1)
	if err != nil {
		a.client.Close()
		return nil, err
	}
	return chassis, nil
}

// Disconnect removes every chassis, logs out and closes the connection.
func (a *App) Disconnect() error {
	var first error
	for _, c := range a.Chassis() {
		if err := c.Disconnect(); err != nil && first == nil {
			first = err
		}
	}
	if err := a.Session.Logout(); err != nil && first == nil {
		first = err
	}
	if err := a.client.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// AddChassis connects a chassis by host and assigns it id.
func (a *App) AddChassis(host string, id int) (*Chassis, error) {
	c := newChassis(a, host)
	if err := c.connect(id); err != nil {
		c.Detach()
		return nil, err
	}
	return c, nil
}

// Chassis returns the connected chassis in the order they were added.
func (a *App) Chassis() []*Chassis {
	var out []*Chassis
	for _, o := range a.Session.ChildrenOf(chassisSchema.Command) {
		out = append(out, &Chassis{Object: o, app: a})
	}
	return out
}

// Discover walks every chassis down to its ports.
func (a *App) Discover() error {
	for _, c := range a.Chassis() {
		if err := c.Discover(); err != nil {
			return err
		}
	}
	return nil
}

// Refresh reloads every chassis and forgets every fetched object.
func (a *App) Refresh() error {
	for _, c := range a.Chassis() {
		if err := c.Refresh(); err != nil {
			return err
		}
	}
	a.Session.ResetCurrent()
	return nil
}

func (a *App) settleDown() {
	if a.settle > 0 {
		a.sleep(a.settle)
	}
}

// files returns the file transfer of a Linux server, nil when files are
// read by the server from the caller's own paths.
func (a *App) files() FileTransfer {
	if a.transfer != nil {
		return a.transfer
	}
	if sc, ok := a.client.(shellClient); ok {
		if shell := sc.Shell(); shell != nil {
			return ssh.NewTransfer(shell.Client())
		}
	}
	return nil
}

func checkRC(command, rc string) error {
	if rc != "0" {
		return &apperr.TclError{Command: command, Result: rc}
	}
	return nil
}
