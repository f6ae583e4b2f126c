package ssh

import (
	"bytes"
	"strings"
	"testing"
	"time"

	apperr "ixexplorer/internal/error"
)

// replyWriter records what was sent and answers each write with the queued
// server output, as the remote shell would.
type replyWriter struct {
	bytes.Buffer
	shell  *Shell
	chunks []string
}

func (w *replyWriter) Write(p []byte) (int, error) {
	n, err := w.Buffer.Write(p)
	for _, c := range w.chunks {
		w.shell.output <- []byte(c)
	}
	w.chunks = nil
	return n, err
}

func (*replyWriter) Close() error { return nil }

// fakeShell returns a Shell that answers the next command with chunks.
func fakeShell(chunks ...string) (*Shell, *replyWriter) {
	s := &Shell{
		output:   make(chan []byte, len(chunks)+1),
		prompt:   DefaultPrompt,
		state:    StateConnected,
		stopChan: make(chan struct{}),
	}
	stdin := &replyWriter{shell: s, chunks: chunks}
	s.stdin = stdin
	return s, stdin
}

func TestCleanReply(t *testing.T) {
	tests := []struct {
		name    string
		command string
		raw     string
		want    string
	}{
		{"result", "chassis cget -id", "chassis cget -id\r\n\r\n1\r\n% % ", "1"},
		{"empty result", "enableEvents true", "enableEvents true\r\n\r\n% % ", ""},
		{"no echo", "version cget -ixTclHALVersion", "9.10.2000.31\r\n% % ", "9.10.2000.31"},
		{"multi line", "puts a\\nb", "puts a\\nb\r\n\r\na\r\nb\r\n% % ", "a\r\nb"},
		{"percent result", "stream cget -percentPacketRate", "stream cget -percentPacketRate\r\n50%\r\n% % ", "50%"},
		{"trailing space", "stream cget -name", "stream cget -name\r\na \r\n% % ", "a "},
		{"prompt fragment line", "port write 1 1 1", "port write 1 1 1\r\n0\r\n% \r\n% % ", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanReply(tt.command, tt.raw, DefaultPrompt); got != tt.want {
				t.Errorf("cleanReply() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExchangeAcrossChunks(t *testing.T) {
	s, stdin := fakeShell("port get 1 1 1\r\n", "\r\n0\r", "\n% % ")

	result, output, err := s.Exchange("port get 1 1 1", time.Second)
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if result != "0" || output != "" {
		t.Errorf("Exchange() = (%q, %q), want (\"0\", \"\")", result, output)
	}
	if got := stdin.String(); got != "port get 1 1 1\r\n" {
		t.Errorf("sent %q", got)
	}
}

func TestExchangeInvalidIsTclError(t *testing.T) {
	s, _ := fakeShell("port cget -bogus\r\n\r\nInvalid option -bogus\r\n% % ")

	_, _, err := s.Exchange("port cget -bogus", time.Second)
	tclErr, ok := apperr.AsTclError(err)
	if !ok {
		t.Fatalf("Exchange() error = %v, want TclError", err)
	}
	if !strings.Contains(tclErr.Result, "Invalid option -bogus") {
		t.Errorf("Result = %q", tclErr.Result)
	}
}

func TestExchangeTimeout(t *testing.T) {
	s, _ := fakeShell("partial output without prompt")

	_, _, err := s.Exchange("ixCheckTransmitDone ixPortList", 30*time.Millisecond)
	if !apperr.IsType(err, apperr.ConnectionError) {
		t.Fatalf("Exchange() error = %v, want ConnectionError", err)
	}
}

func TestSelfTestReportsTail(t *testing.T) {
	s, _ := fakeShell("puts ixexplorer-selftest\r\nixexplorer-selftest\r\ntclsh> ")

	err := s.SelfTest(30 * time.Millisecond)
	if !apperr.IsType(err, apperr.FramingError) {
		t.Fatalf("SelfTest() error = %v, want FramingError", err)
	}
	if !strings.Contains(err.Error(), "tclsh> ") {
		t.Errorf("error %q does not show the observed tail", err)
	}
}

func TestSelfTestPasses(t *testing.T) {
	s, _ := fakeShell("puts ixexplorer-selftest\r\n\r\nixexplorer-selftest\r\n% % ")

	if err := s.SelfTest(time.Second); err != nil {
		t.Fatalf("SelfTest() error = %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s, _ := fakeShell()
	for i := 0; i < 2; i++ {
		if err := s.Close(); err != nil {
			t.Fatalf("Close() #%d error = %v", i+1, err)
		}
		if s.GetState() != StateDisconnected {
			t.Errorf("state after Close() #%d = %v", i+1, s.GetState())
		}
	}
}
