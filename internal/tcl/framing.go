// internal/tcl/framing.go

package tcl

import (
	"strings"

	apperr "ixexplorer/internal/error"
)

const (
	terminator    = "\r\n"
	statusOK      = '0'
	statusError   = '1'
	outputDivider = '\r'
)

// textResultCommands lists commands whose result is free text. Their replies
// are never split into output and result, whatever the text looks like.
var textResultCommands = []string{
	"streamRegion generateWarningList",
	"join",
	"port getFeature",
	"port isValidFeature",
	"version cget",
}

// Reply is one decoded socket reply.
type Reply struct {
	Result    string
	Output    string
	HasOutput bool
}

// ParseReply decodes a socket transport reply of the form
//
//	[<output>\r]<result><status>\r\n
//
// where status is exactly one byte, '0' for success and '1' for failure.
// A failure is returned as *apperr.TclError carrying the result text.
func ParseReply(command, reply string) (Reply, error) {
	if !strings.HasSuffix(reply, terminator) {
		return Reply{}, apperr.Newf(apperr.FramingError, "reply to %q has no terminator: %q", command, reply)
	}
	body := reply[:len(reply)-len(terminator)]
	if body == "" {
		return Reply{}, apperr.Newf(apperr.FramingError, "reply to %q has no status byte", command)
	}
	status := body[len(body)-1]
	text := body[:len(body)-1]

	switch status {
	case statusError:
		if r := splitOutput(command, text); r.HasOutput {
			return Reply{}, apperr.Newf(apperr.FramingError, "error reply to %q carries output %q", command, r.Output)
		}
		return Reply{Result: text}, &apperr.TclError{Command: command, Result: text}
	case statusOK:
		return splitOutput(command, text), nil
	default:
		return Reply{}, apperr.Newf(apperr.FramingError, "reply to %q has unexpected status byte %q", command, status)
	}
}

// splitOutput separates output from the result: the text after the last
// '\r' is the result only when it is all digits.
func splitOutput(command, text string) Reply {
	if isTextResult(command) {
		return Reply{Result: text}
	}
	idx := strings.LastIndexByte(text, outputDivider)
	if idx < 0 || !isDigits(text[idx+1:]) {
		return Reply{Result: text}
	}
	return Reply{Result: text[idx+1:], Output: text[:idx], HasOutput: true}
}

func isTextResult(command string) bool {
	for _, prefix := range textResultCommands {
		if command == prefix || strings.HasPrefix(command, prefix+" ") {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
