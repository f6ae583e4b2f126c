package tcl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	apperr "ixexplorer/internal/error"

	"github.com/google/go-cmp/cmp"
	log "github.com/sirupsen/logrus"
)

// scriptedTransport answers from a table and records every command.
type scriptedTransport struct {
	replies  map[string]scriptedReply
	commands []string
	closed   int
}

type scriptedReply struct {
	result string
	output string
	err    error
}

func (s *scriptedTransport) Exchange(command string, _ time.Duration) (string, string, error) {
	s.commands = append(s.commands, command)
	r := s.replies[command]
	return r.result, r.output, r.err
}

func (s *scriptedTransport) Close() error {
	s.closed++
	return nil
}

func quietLogger() *log.Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return l
}

func TestConnectSocketBootstrap(t *testing.T) {
	srv := newFakeServer(t, func(command string) string {
		if command == "version cget -ixTclHALVersion" {
			return "9.10.2000.310\r\n"
		}
		return "00\r\n"
	})

	var script bytes.Buffer
	c := NewClient("127.0.0.1", srv.port(), WithLogger(quietLogger()), WithScriptLog(&script))
	if c.Kind() != ServerWindows {
		t.Fatalf("Kind() = %v, want socket", c.Kind())
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer c.Close()

	major, minor, err := c.HalVersion()
	if err != nil || major != "9" || minor != "10" {
		t.Errorf("HalVersion() = (%q, %q, %v)", major, minor, err)
	}

	want := []string{"package req IxTclHal", "enableEvents true", "version cget -ixTclHALVersion"}
	if diff := cmp.Diff(want, srv.received()); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
	if got := script.String(); got != "package req IxTclHal\nenableEvents true\nversion cget -ixTclHALVersion\n" {
		t.Errorf("script log = %q", got)
	}
}

func TestConnectShellSourcesHalScript(t *testing.T) {
	tr := &scriptedTransport{}
	c := NewClient("ixvm", 8022, WithTransport(tr), WithLogger(quietLogger()), WithHalScript("/opt/hal/Wish.tcl"))
	if c.Kind() != ServerLinux {
		t.Fatalf("Kind() = %v, want ssh", c.Kind())
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	want := []string{"source /opt/hal/Wish.tcl", "package req IxTclHal", "enableEvents true"}
	if diff := cmp.Diff(want, tr.commands); diff != "" {
		t.Errorf("bootstrap mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectBootstrapFailureCloses(t *testing.T) {
	tr := &scriptedTransport{replies: map[string]scriptedReply{
		"package req IxTclHal": {err: &apperr.TclError{Command: "package req IxTclHal", Result: "can't find package IxTclHal"}},
	}}
	c := NewClient("chassis", 4555, WithTransport(tr), WithLogger(quietLogger()))

	err := c.Connect(context.Background())
	if !apperr.IsType(err, apperr.ConnectionError) {
		t.Fatalf("Connect() error = %v, want ConnectionError", err)
	}
	if _, ok := apperr.AsTclError(err); !ok {
		t.Errorf("Connect() error %v does not carry the TclError", err)
	}
	if c.State() != StateDisconnected || tr.closed != 1 {
		t.Errorf("state = %v, closed = %d", c.State(), tr.closed)
	}
}

func TestCallErrorOutput(t *testing.T) {
	tr := &scriptedTransport{replies: map[string]scriptedReply{
		"port write 1 1 1": {result: "0", output: "Error: stream 2 exceeds line rate"},
		"port get 1 1 1":   {result: "0", output: "warning only"},
	}}
	c := NewClient("chassis", 4555, WithTransport(tr), WithLogger(quietLogger()))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	_, err := c.Call("port write %s", "1 1 1")
	tclErr, ok := apperr.AsTclError(err)
	if !ok || tclErr.Result != "Error: stream 2 exceeds line rate" {
		t.Errorf("Call(write) error = %v, want TclError with vendor text", err)
	}
	if _, err := c.Call("port get 1 1 1"); err != nil {
		t.Errorf("Call(get) error = %v", err)
	}
}

func TestCallVerbatimWithoutArgs(t *testing.T) {
	tr := &scriptedTransport{}
	c := NewClient("chassis", 4555, WithTransport(tr), WithLogger(quietLogger()))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	command := "puts 100%"
	c.Call(command)
	if got := tr.commands[len(tr.commands)-1]; got != command {
		t.Errorf("sent %q", got)
	}
}

func TestCallRC(t *testing.T) {
	tr := &scriptedTransport{replies: map[string]scriptedReply{
		"ixPortTakeOwnership 1 1 1":       {result: "0"},
		"ixPortTakeOwnership 1 1 2":       {result: "1"},
		"ixPortTakeOwnership 1 1 3 force": {err: errors.New("boom")},
	}}
	c := NewClient("chassis", 4555, WithTransport(tr), WithLogger(quietLogger()))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := c.CallRC("ixPortTakeOwnership %s", "1 1 1"); err != nil {
		t.Errorf("CallRC(rc=0) error = %v", err)
	}
	err := c.CallRC("ixPortTakeOwnership %s", "1 1 2")
	if tclErr, ok := apperr.AsTclError(err); !ok || tclErr.Result != "1" {
		t.Errorf("CallRC(rc=1) error = %v, want TclError", err)
	}
	if err := c.CallRC("ixPortTakeOwnership 1 1 3 force"); err == nil {
		t.Error("CallRC() expected transport error")
	}
}

func TestCallWhenDisconnected(t *testing.T) {
	c := NewClient("chassis", 4555, WithLogger(quietLogger()))
	if _, err := c.Call("version cget -ixTclHALVersion"); !apperr.IsType(err, apperr.ConnectionError) {
		t.Errorf("Call() error = %v, want ConnectionError", err)
	}
}

func TestClientCloseTwice(t *testing.T) {
	tr := &scriptedTransport{}
	c := NewClient("chassis", 4555, WithTransport(tr), WithLogger(quietLogger()))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := c.Close(); err != nil {
			t.Fatalf("Close() #%d error = %v", i+1, err)
		}
		if c.State() != StateDisconnected {
			t.Errorf("State() after Close() #%d = %v", i+1, c.State())
		}
	}
	if tr.closed != 1 {
		t.Errorf("transport closed %d times, want 1", tr.closed)
	}
}

func TestConnectWhileConnecting(t *testing.T) {
	tr := &scriptedTransport{}
	c := NewClient("chassis", 4555, WithTransport(tr), WithLogger(quietLogger()))
	c.setState(StateConnecting)

	if err := c.Connect(context.Background()); !apperr.IsType(err, apperr.ConnectionError) {
		t.Fatalf("Connect() error = %v, want ConnectionError", err)
	}
	if len(tr.commands) != 0 {
		t.Errorf("second Connect() sent %v", tr.commands)
	}
}

func TestReconnectDoesNotReuseClosedTransport(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	tr := &scriptedTransport{}
	c := NewClient("127.0.0.1", port, WithTransport(tr), WithLogger(quietLogger()), WithTimeout(time.Second))
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	sent := len(tr.commands)

	if err := c.Connect(context.Background()); err == nil {
		t.Fatal("Connect() after Close() reused the closed transport")
	}
	if len(tr.commands) != sent {
		t.Errorf("closed transport received %v", tr.commands[sent:])
	}
	if c.State() != StateDisconnected {
		t.Errorf("State() = %v, want %v", c.State(), StateDisconnected)
	}
}
