package tcl

import (
	"testing"

	apperr "ixexplorer/internal/error"

	"github.com/google/go-cmp/cmp"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name    string
		command string
		reply   string
		want    Reply
		tclErr  bool
	}{
		{
			name:    "result only",
			command: "chassis cget -maxCardCount",
			reply:   "160\r\n",
			want:    Reply{Result: "16"},
		},
		{
			name:    "empty result",
			command: "enableEvents true",
			reply:   "0\r\n",
			want:    Reply{},
		},
		{
			name:    "output and numeric result",
			command: "port write 1 1 1",
			reply:   "Port 1 1 1 written\r00\r\n",
			want:    Reply{Result: "0", Output: "Port 1 1 1 written", HasOutput: true},
		},
		{
			name:    "non numeric tail is not split",
			command: "port cget -typeName",
			reply:   "line one\rpacketGroup10\r\n",
			want:    Reply{Result: "line one\rpacketGroup1"},
		},
		{
			name:    "warning list is never split",
			command: "streamRegion generateWarningList 1 1 1",
			reply:   "warning a\r12\r\n",
			want:    Reply{Result: "warning a\r12"},
		},
		{
			name:    "join is never split",
			command: "join {a b} LiStSeP",
			reply:   "x\r10\r\n",
			want:    Reply{Result: "x\r1"},
		},
		{
			name:    "error status",
			command: "port get 9 9 9",
			reply:   "invalid port 9 9 91\r\n",
			want:    Reply{Result: "invalid port 9 9 9"},
			tclErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseReply(tt.command, tt.reply)
			if tt.tclErr {
				tclErr, ok := apperr.AsTclError(err)
				if !ok {
					t.Fatalf("ParseReply() error = %v, want TclError", err)
				}
				if tclErr.Result != tt.want.Result {
					t.Errorf("TclError.Result = %q, want %q", tclErr.Result, tt.want.Result)
				}
			} else if err != nil {
				t.Fatalf("ParseReply() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseReply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseReplyFramingErrors(t *testing.T) {
	for _, reply := range []string{"", "0", "abc\n", "\r\n", "result2\r\n", "diag text\r51\r\n"} {
		_, err := ParseReply("cmd", reply)
		if !apperr.IsType(err, apperr.FramingError) {
			t.Errorf("ParseReply(%q) error = %v, want FramingError", reply, err)
		}
	}
}

func TestIsTextResult(t *testing.T) {
	tests := map[string]bool{
		"join":                                   true,
		"join {a} LiStSeP":                       true,
		"joinx 1":                                false,
		"port getFeature 1 1 1 ethernetLineRate": true,
		"port get 1 1 1":                         false,
		"version cget -ixTclHALVersion":          true,
	}
	for command, want := range tests {
		if got := isTextResult(command); got != want {
			t.Errorf("isTextResult(%q) = %v, want %v", command, got, want)
		}
	}
}
